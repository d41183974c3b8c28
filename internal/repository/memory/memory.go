// Package memory provides an in-memory repository.Store for tests and
// single-process development. Data is lost when the process exits.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/carlot/carlot/internal/model"
	"github.com/carlot/carlot/internal/repository"
)

// Store keeps documents in maps guarded by a single RWMutex.
type Store struct {
	mu    sync.RWMutex
	users map[string]*model.User
	// username -> id
	usernames map[string]string
	cars      map[string]*model.Car
	// car ids in insertion order
	carOrder []string
}

// Ensure Store implements repository.Store at compile time.
var _ repository.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:     make(map[string]*model.User),
		usernames: make(map[string]string),
		cars:      make(map[string]*model.Car),
	}
}

// CreateUser inserts a user, assigning ID and CreatedAt.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usernames[user.Username]; exists {
		return repository.ErrDuplicate
	}

	user.ID = repository.NewID()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	stored := *user
	s.users[user.ID] = &stored
	s.usernames[user.Username] = user.ID
	return nil
}

// GetUserByID returns a copy of the user.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// GetUserByUsername returns a copy of the user.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

// CreateCar inserts a car, assigning ID and CreatedAt.
func (s *Store) CreateCar(ctx context.Context, car *model.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	car.ID = repository.NewID()
	if car.CreatedAt.IsZero() {
		car.CreatedAt = time.Now().UTC()
	}

	s.cars[car.ID] = car.Clone()
	s.carOrder = append(s.carOrder, car.ID)
	return nil
}

// GetCar returns a copy of the car.
func (s *Store) GetCar(ctx context.Context, id string) (*model.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cars[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c.Clone(), nil
}

// ListCars returns every car in insertion order.
func (s *Store) ListCars(ctx context.Context) ([]*model.Car, error) {
	return s.list(func(*model.Car) bool { return true }), nil
}

// ListCarsByOwner returns the owner's cars in insertion order.
func (s *Store) ListCarsByOwner(ctx context.Context, ownerID string) ([]*model.Car, error) {
	return s.list(func(c *model.Car) bool { return c.OwnerID == ownerID }), nil
}

func (s *Store) list(keep func(*model.Car) bool) []*model.Car {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Car, 0, len(s.carOrder))
	for _, id := range s.carOrder {
		if c := s.cars[id]; keep(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// UpdateCar replaces the mutable fields of an existing car.
func (s *Store) UpdateCar(ctx context.Context, car *model.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.cars[car.ID]
	if !ok {
		return repository.ErrNotFound
	}

	updated := car.Clone()
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	s.cars[car.ID] = updated
	return nil
}

// DeleteCar removes a car.
func (s *Store) DeleteCar(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cars[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.cars, id)
	for i, cid := range s.carOrder {
		if cid == id {
			s.carOrder = append(s.carOrder[:i], s.carOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
