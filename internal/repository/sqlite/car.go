package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/carlot/carlot/internal/model"
	"github.com/carlot/carlot/internal/repository"
)

var carColumns = []string{"id", "owner_id", "title", "description", "images", "tags", "created_at"}

// CreateCar inserts a car, assigning ID and CreatedAt.
func (s *Store) CreateCar(ctx context.Context, car *model.Car) error {
	images, err := encodeList(car.Images)
	if err != nil {
		return err
	}
	tags, err := encodeList(car.Tags)
	if err != nil {
		return err
	}

	id := repository.NewID()
	createdAt := time.Now().UTC()

	query, args, err := s.builder.
		Insert("cars").
		Columns(carColumns...).
		Values(id, car.OwnerID, car.Title, car.Description, images, tags, toUnix(createdAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert car: %w", err)
	}

	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert car: %w", err)
	}

	car.ID = id
	car.CreatedAt = createdAt
	return nil
}

// GetCar looks a car up by id.
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
		return nil, fmt.Errorf("build select car: %w", err)
	}

	car, err := scanCar(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("query car: %w", err)
	}

	return car, nil
}

// ListCars returns all cars in insertion order.
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
		return nil, fmt.Errorf("build list cars: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cars: %w", err)
	}
	defer rows.Close()

	cars := []*model.Car{}
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		cars = append(cars, car)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cars: %w", err)
	}

	return cars, nil
}

// UpdateCar writes title, description, images and tags.
func (s *Store) UpdateCar(ctx context.Context, car *model.Car) error {
	if !repository.ValidID(car.ID) {
		return repository.ErrNotFound
	}

	images, err := encodeList(car.Images)
	if err != nil {
		return err
	}
	tags, err := encodeList(car.Tags)
	if err != nil {
		return err
	}

	query, args, err := s.builder.
		Update("cars").
		Set("title", car.Title).
		Set("description", car.Description).
		Set("images", images).
		Set("tags", tags).
		Where(squirrel.Eq{"id": car.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update car: %w", err)
	}

	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	return s.execOne(ctx, "update car", query, args)
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
		return fmt.Errorf("build delete car: %w", err)
	}

	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	return s.execOne(ctx, "delete car", query, args)
}

// execOne runs a statement that must touch exactly one row.
func (s *Store) execOne(ctx context.Context, op, query string, args []any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCar(row scanner) (*model.Car, error) {
	var (
		car          model.Car
		images, tags string
		createdAt    int64
	)

	if err := row.Scan(&car.ID, &car.OwnerID, &car.Title, &car.Description, &images, &tags, &createdAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(images), &car.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &car.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	car.CreatedAt = fromUnix(createdAt)

	return &car, nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}
