// Package repository defines the document-store contract the services
// depend on. Backends live in sub-packages.
package repository

import (
	"context"
	"errors"

	"github.com/carlot/carlot/internal/model"
)

// Common errors returned by every backend.
var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository stores identities. Backends assign the ID and enforce
// username uniqueness: a duplicate insert returns ErrDuplicate and leaves
// the stored data unchanged.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// CarRepository stores listings. List operations return documents in
// insertion order. Lookups of unknown or malformed ids return ErrNotFound.
type CarRepository interface {
	CreateCar(ctx context.Context, car *model.Car) error
	GetCar(ctx context.Context, id string) (*model.Car, error)
	ListCars(ctx context.Context) ([]*model.Car, error)
	ListCarsByOwner(ctx context.Context, ownerID string) ([]*model.Car, error)
	UpdateCar(ctx context.Context, car *model.Car) error
	DeleteCar(ctx context.Context, id string) error
}

// Store is a complete backend.
type Store interface {
	UserRepository
	CarRepository
	Ping(ctx context.Context) error
	Close() error
}
