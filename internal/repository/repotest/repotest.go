// Package repotest holds a behavioural test suite every repository.Store
// backend must pass.
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlot/carlot/internal/model"
	"github.com/carlot/carlot/internal/repository"
)

// Factory returns a fresh, empty store. Cleanup is registered on t.
type Factory func(t *testing.T) repository.Store

// Run executes the full suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateUserAssignsID", func(t *testing.T) { testCreateUserAssignsID(t, newStore(t)) })
	t.Run("DuplicateUsername", func(t *testing.T) { testDuplicateUsername(t, newStore(t)) })
	t.Run("ConcurrentDuplicateUsername", func(t *testing.T) { testConcurrentDuplicateUsername(t, newStore(t)) })
	t.Run("ConcurrentReadWrite", func(t *testing.T) { testConcurrentReadWrite(t, newStore(t)) })
	t.Run("UserNotFound", func(t *testing.T) { testUserNotFound(t, newStore(t)) })
	t.Run("CarLifecycle", func(t *testing.T) { testCarLifecycle(t, newStore(t)) })
	t.Run("ListOrderAndOwnerFilter", func(t *testing.T) { testListOrderAndOwnerFilter(t, newStore(t)) })
	t.Run("CarNotFound", func(t *testing.T) { testCarNotFound(t, newStore(t)) })
	t.Run("UpdateKeepsOwner", func(t *testing.T) { testUpdateKeepsOwner(t, newStore(t)) })
	t.Run("Ping", func(t *testing.T) { require.NoError(t, newStore(t).Ping(context.Background())) })
}

func createUser(t *testing.T, s repository.Store, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, PasswordHash: "$2a$10$hash"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func createCar(t *testing.T, s repository.Store, ownerID, title string) *model.Car {
	t.Helper()
	c := &model.Car{
		OwnerID:     ownerID,
		Title:       title,
		Description: title + " description",
		Images:      []string{"https://img.example/" + title + ".jpg"},
		Tags:        []string{"tag-" + title},
	}
	require.NoError(t, s.CreateCar(context.Background(), c))
	return c
}

func testCreateUserAssignsID(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := createUser(t, s, "john_doe")

	assert.True(t, repository.ValidID(u.ID), "expected ULID id, got %q", u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "john_doe", byID.Username)
	assert.Equal(t, "$2a$10$hash", byID.PasswordHash)
	assert.False(t, byID.IsAdmin)

	byName, err := s.GetUserByUsername(ctx, "john_doe")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
}

func testDuplicateUsername(t *testing.T, s repository.Store) {
	ctx := context.Background()
	first := createUser(t, s, "a")

	dup := &model.User{Username: "a", PasswordHash: "other", IsAdmin: true}
	err := s.CreateUser(ctx, dup)
	require.ErrorIs(t, err, repository.ErrDuplicate)

	stored, err := s.GetUserByUsername(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "$2a$10$hash", stored.PasswordHash)
	assert.False(t, stored.IsAdmin)
}

func testConcurrentDuplicateUsername(t *testing.T, s repository.Store) {
	const workers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CreateUser(context.Background(), &model.User{Username: "race", PasswordHash: "h"})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded, "exactly one concurrent registration should win")
}

func testConcurrentReadWrite(t *testing.T, s repository.Store) {
	const (
		workers = 8
		rounds  = 50
	)
	owner := createUser(t, s, "busy")

	var wg sync.WaitGroup
	errs := make(chan error, 2*workers*rounds)
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				errs <- s.CreateCar(context.Background(), &model.Car{OwnerID: owner.ID, Title: "t", Images: []string{}, Tags: []string{}})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				_, err := s.ListCars(context.Background())
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	cars, err := s.ListCarsByOwner(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Len(t, cars, workers*rounds)
}

func testUserNotFound(t *testing.T, s repository.Store) {
	ctx := context.Background()

	_, err := s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = s.GetUserByID(ctx, repository.NewID())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testCarLifecycle(t *testing.T, s repository.Store) {
	ctx := context.Background()
	owner := createUser(t, s, "owner")
	car := createCar(t, s, owner.ID, "civic")

	require.True(t, repository.ValidID(car.ID))
	require.False(t, car.CreatedAt.IsZero())

	got, err := s.GetCar(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, "civic", got.Title)
	assert.Equal(t, []string{"https://img.example/civic.jpg"}, got.Images)
	assert.Equal(t, []string{"tag-civic"}, got.Tags)
	assert.WithinDuration(t, car.CreatedAt, got.CreatedAt, time.Millisecond)

	got.Title = "accord"
	got.Images = []string{"1", "2"}
	require.NoError(t, s.UpdateCar(ctx, got))

	updated, err := s.GetCar(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, "accord", updated.Title)
	assert.Equal(t, []string{"1", "2"}, updated.Images)

	require.NoError(t, s.DeleteCar(ctx, car.ID))

	_, err = s.GetCar(ctx, car.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.DeleteCar(ctx, car.ID), repository.ErrNotFound)
}

func testListOrderAndOwnerFilter(t *testing.T, s repository.Store) {
	ctx := context.Background()
	a := createUser(t, s, "a")
	b := createUser(t, s, "b")

	a1 := createCar(t, s, a.ID, "a1")
	b1 := createCar(t, s, b.ID, "b1")
	a2 := createCar(t, s, a.ID, "a2")

	all, err := s.ListCars(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{a1.ID, b1.ID, a2.ID}, ids(all))

	own, err := s.ListCarsByOwner(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a1.ID, a2.ID}, ids(own))

	none, err := s.ListCarsByOwner(ctx, repository.NewID())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testCarNotFound(t *testing.T, s repository.Store) {
	ctx := context.Background()

	for _, id := range []string{repository.NewID(), "not-an-id", ""} {
		_, err := s.GetCar(ctx, id)
		assert.ErrorIs(t, err, repository.ErrNotFound, "GetCar(%q)", id)
		assert.ErrorIs(t, s.DeleteCar(ctx, id), repository.ErrNotFound, "DeleteCar(%q)", id)
		assert.ErrorIs(t, s.UpdateCar(ctx, &model.Car{ID: id, Title: "x"}), repository.ErrNotFound, "UpdateCar(%q)", id)
	}
}

func testUpdateKeepsOwner(t *testing.T, s repository.Store) {
	ctx := context.Background()
	owner := createUser(t, s, "owner")
	thief := createUser(t, s, "thief")
	car := createCar(t, s, owner.ID, "civic")

	hijack := car.Clone()
	hijack.OwnerID = thief.ID
	hijack.CreatedAt = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateCar(ctx, hijack))

	got, err := s.GetCar(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.WithinDuration(t, car.CreatedAt, got.CreatedAt, time.Millisecond)
}

func ids(cars []*model.Car) []string {
	out := make([]string, len(cars))
	for i, c := range cars {
		out[i] = c.ID
	}
	return out
}
