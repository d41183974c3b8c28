package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlot/carlot/internal/metrics"
	"github.com/carlot/carlot/internal/model"
	"github.com/carlot/carlot/internal/repository"
	"github.com/carlot/carlot/internal/repository/memory"
	"github.com/carlot/carlot/internal/testutil"
)

type carFixture struct {
	svc   *CarService
	store *memory.Store
	rec   *metrics.InMemoryRecorder
	alice *model.User
	bob   *model.User
}

func newCarFixture(t *testing.T) *carFixture {
	t.Helper()
	store := memory.New()
	rec := metrics.NewInMemory()
	return &carFixture{
		svc:   NewCarService(store, testutil.DiscardLogger(), rec),
		store: store,
		rec:   rec,
		alice: testutil.NewTestUser(t, store, "alice"),
		bob:   testutil.NewTestUser(t, store, "bob"),
	}
}

func validInput() CreateCarInput {
	return CreateCarInput{
		Title:       "Civic",
		Description: "Blue hatchback",
		Images:      testutil.Images(2),
		Tags:        []string{"honda"},
	}
}

func TestCreate(t *testing.T) {
	f := newCarFixture(t)

	car, err := f.svc.Create(context.Background(), f.alice.ID, validInput())
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, car.OwnerID)
	assert.NotEmpty(t, car.ID)
	assert.False(t, car.CreatedAt.IsZero())
	assert.Equal(t, uint64(1), f.rec.Snapshot().CarsCreated)
}

func TestCreate_DefaultsTags(t *testing.T) {
	f := newCarFixture(t)
	in := validInput()
	in.Tags = nil

	car, err := f.svc.Create(context.Background(), f.alice.ID, in)
	require.NoError(t, err)
	assert.NotNil(t, car.Tags)
	assert.Empty(t, car.Tags)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CreateCarInput)
		wantField string
		tooMany   bool
	}{
		{"eleven images", func(in *CreateCarInput) { in.Images = testutil.Images(11) }, "images", true},
		{"no images", func(in *CreateCarInput) { in.Images = nil }, "images", true},
		{"empty images", func(in *CreateCarInput) { in.Images = []string{} }, "images", true},
		{"no title", func(in *CreateCarInput) { in.Title = "" }, "title", false},
		{"no description", func(in *CreateCarInput) { in.Description = "" }, "description", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCarFixture(t)
			in := validInput()
			tt.mutate(&in)

			_, err := f.svc.Create(context.Background(), f.alice.ID, in)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.tooMany, errors.Is(err, ErrTooManyImages))

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)

			all, err := f.store.ListCars(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all, "nothing should be persisted")
		})
	}
}

func TestCreate_TenImagesAllowed(t *testing.T) {
	f := newCarFixture(t)
	in := validInput()
	in.Images = testutil.Images(model.MaxCarImages)

	_, err := f.svc.Create(context.Background(), f.alice.ID, in)
	require.NoError(t, err)
}

func TestListOwnAndAll(t *testing.T) {
	f := newCarFixture(t)
	ctx := context.Background()

	a1, err := f.svc.Create(ctx, f.alice.ID, validInput())
	require.NoError(t, err)
	b1, err := f.svc.Create(ctx, f.bob.ID, validInput())
	require.NoError(t, err)

	own, err := f.svc.ListOwn(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, a1.ID, own[0].ID)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a1.ID, all[0].ID)
	assert.Equal(t, b1.ID, all[1].ID)
}

func TestGet(t *testing.T) {
	f := newCarFixture(t)
	ctx := context.Background()
	car := testutil.NewTestCar(t, f.store, f.alice.ID, "civic")

	got, err := f.svc.Get(ctx, f.alice.ID, car.ID)
	require.NoError(t, err)
	assert.Equal(t, car.ID, got.ID)

	_, err = f.svc.Get(ctx, f.bob.ID, car.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.svc.Get(ctx, f.alice.ID, repository.NewID())
	assert.ErrorIs(t, err, ErrCarNotFound)

	_, err = f.svc.Get(ctx, f.alice.ID, "malformed")
	assert.ErrorIs(t, err, ErrCarNotFound)

	assert.Equal(t, uint64(1), f.rec.Snapshot().OwnershipDenied)
}

func TestUpdate(t *testing.T) {
	f := newCarFixture(t)
	ctx := context.Background()
	car := testutil.NewTestCar(t, f.store, f.alice.ID, "civic")

	updated, err := f.svc.Update(ctx, f.alice.ID, car.ID, model.CarPatch{Title: "", Description: "Red"})
	require.NoError(t, err)
	assert.Equal(t, "civic", updated.Title, "empty title keeps the stored value")
	assert.Equal(t, "Red", updated.Description)
	assert.Equal(t, car.Images, updated.Images)
	assert.Equal(t, f.alice.ID, updated.OwnerID)
	assert.Equal(t, car.CreatedAt, updated.CreatedAt)

	stored, err := f.store.GetCar(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, "Red", stored.Description)
	assert.Equal(t, uint64(1), f.rec.Snapshot().CarsUpdated)
}

func TestUpdate_Denied(t *testing.T) {
	f := newCarFixture(t)
	ctx := context.Background()
	car := testutil.NewTestCar(t, f.store, f.alice.ID, "civic")

	_, err := f.svc.Update(ctx, f.bob.ID, car.ID, model.CarPatch{Title: "stolen"})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.svc.Update(ctx, f.alice.ID, repository.NewID(), model.CarPatch{Title: "x"})
	assert.ErrorIs(t, err, ErrCarNotFound)

	// guard runs before the image cap
	_, err = f.svc.Update(ctx, f.bob.ID, car.ID, model.CarPatch{Images: testutil.Images(11)})
	assert.ErrorIs(t, err, ErrNotOwner)

	stored, err := f.store.GetCar(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, "civic", stored.Title)
}

func TestUpdate_TooManyImages(t *testing.T) {
	f := newCarFixture(t)
	ctx := context.Background()
	car := testutil.NewTestCar(t, f.store, f.alice.ID, "civic")

	_, err := f.svc.Update(ctx, f.alice.ID, car.ID, model.CarPatch{Title: "new", Images: testutil.Images(11)})
	require.ErrorIs(t, err, ErrTooManyImages)

	stored, err := f.store.GetCar(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, "civic", stored.Title, "rejected update must not persist")
	assert.Len(t, stored.Images, 1)
}

func TestDelete(t *testing.T) {
	f := newCarFixture(t)
	ctx := context.Background()
	car := testutil.NewTestCar(t, f.store, f.alice.ID, "civic")

	assert.ErrorIs(t, f.svc.Delete(ctx, f.alice.ID, repository.NewID()), ErrCarNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.bob.ID, car.ID), ErrNotOwner)

	require.NoError(t, f.svc.Delete(ctx, f.alice.ID, car.ID))

	_, err := f.svc.Get(ctx, f.alice.ID, car.ID)
	assert.ErrorIs(t, err, ErrCarNotFound)
	assert.Equal(t, uint64(1), f.rec.Snapshot().CarsDeleted)
}
