package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/carlot/carlot/internal/model"
	"github.com/carlot/carlot/internal/repository"
)

var carColumns = []string{"id", "owner_id", "title", "description", "images", "tags", "created_at"}

// CreateCar inserts a new car. ID and CreatedAt are assigned here.
func (s *Store) CreateCar(ctx context.Context, car *model.Car) error {
	id := repository.NewID()
	createdAt := time.Now().UTC()

	query, args, err := s.builder.
		Insert("cars").
		Columns(carColumns...).
		Values(
			id,
			car.OwnerID,
			car.Title,
			car.Description,
			pq.Array(nonNil(car.Images)),
			pq.Array(nonNil(car.Tags)),
			createdAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build car insert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}

	car.ID = id
	car.CreatedAt = createdAt
	return nil
}

// GetCar retrieves a car by its ID.
func (s *Store) GetCar(ctx context.Context, id string) (*model.Car, error) {
	if !repository.ValidID(id) {
		return nil, repository.ErrNotFound
	}

	query, args, err := s.builder.
		Select(carColumns...).
		From("cars").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build car query: %w", err)
	}

	car, err := scanCar(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get car: %w", err)
	}

	return car, nil
}

// ListCars returns every car in insertion order.
func (s *Store) ListCars(ctx context.Context) ([]*model.Car, error) {
	return s.listCars(ctx, nil)
}

// ListCarsByOwner returns the owner's cars in insertion order.
func (s *Store) ListCarsByOwner(ctx context.Context, ownerID string) ([]*model.Car, error) {
	return s.listCars(ctx, squirrel.Eq{"owner_id": ownerID})
}

func (s *Store) listCars(ctx context.Context, where squirrel.Sqlizer) ([]*model.Car, error) {
	q := s.builder.
		Select(carColumns...).
		From("cars").
		OrderBy("seq")
	if where != nil {
		q = q.Where(where)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build car list query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	defer rows.Close()

	cars := []*model.Car{}
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, car)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cars: %w", err)
	}

	return cars, nil
}

// UpdateCar overwrites the mutable fields. Owner and creation time are never written.
func (s *Store) UpdateCar(ctx context.Context, car *model.Car) error {
	if !repository.ValidID(car.ID) {
		return repository.ErrNotFound
	}

	query, args, err := s.builder.
		Update("cars").
		Set("title", car.Title).
		Set("description", car.Description).
		Set("images", pq.Array(nonNil(car.Images))).
		Set("tags", pq.Array(nonNil(car.Tags))).
		Where(squirrel.Eq{"id": car.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build car update: %w", err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update car: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteCar removes a car.
func (s *Store) DeleteCar(ctx context.Context, id string) error {
	if !repository.ValidID(id) {
		return repository.ErrNotFound
	}

	query, args, err := s.builder.
		Delete("cars").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build car delete: %w", err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// scanCar scans a row into a Car.
func scanCar(row pgx.Row) (*model.Car, error) {
	var car model.Car
	var images, tags []string

	err := row.Scan(
		&car.ID,
		&car.OwnerID,
		&car.Title,
		&car.Description,
		pq.Array(&images),
		pq.Array(&tags),
		&car.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	car.Images = nonNil(images)
	car.Tags = nonNil(tags)
	return &car, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
