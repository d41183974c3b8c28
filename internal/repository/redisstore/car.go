package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carlot/carlot/internal/model"
	"github.com/carlot/carlot/internal/repository"
)

// CreateCar stores the document and appends it to the global and owner indexes.
func (s *Store) CreateCar(ctx context.Context, car *model.Car) error {
	doc := car.Clone()
	doc.ID = repository.NewID()
	doc.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal car: %w", err)
	}

	seq, err := s.client.Incr(ctx, s.carSeqKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate car sequence: %w", err)
	}
	member := redis.Z{Score: float64(seq), Member: doc.ID}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.carKey(doc.ID), data, 0)
		pipe.ZAdd(ctx, s.carsKey(), member)
		pipe.ZAdd(ctx, s.ownerCarsKey(doc.OwnerID), member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store car: %w", err)
	}

	car.ID = doc.ID
	car.CreatedAt = doc.CreatedAt
	return nil
}

// GetCar retrieves a car document.
func (s *Store) GetCar(ctx context.Context, id string) (*model.Car, error) {
	if !repository.ValidID(id) {
		return nil, repository.ErrNotFound
	}

	data, err := s.client.Get(ctx, s.carKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get car: %w", err)
	}

	return decodeCar(data)
}

// ListCars returns every car in insertion order.
func (s *Store) ListCars(ctx context.Context) ([]*model.Car, error) {
	return s.listCars(ctx, s.carsKey())
}

// ListCarsByOwner returns the owner's cars in insertion order.
func (s *Store) ListCarsByOwner(ctx context.Context, ownerID string) ([]*model.Car, error) {
	return s.listCars(ctx, s.ownerCarsKey(ownerID))
}

func (s *Store) listCars(ctx context.Context, indexKey string) ([]*model.Car, error) {
	ids, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read car index: %w", err)
	}

	cars := []*model.Car{}
	if len(ids) == 0 {
		return cars, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.carKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load cars: %w", err)
	}

	for _, v := range values {
		// index entries can briefly outlive a concurrent delete
		str, ok := v.(string)
		if !ok {
			continue
		}
		car, err := decodeCar([]byte(str))
		if err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}

	return cars, nil
}

// UpdateCar rewrites title, description, images and tags on the stored
// document. Owner and creation time come from the stored copy.
func (s *Store) UpdateCar(ctx context.Context, car *model.Car) error {
	stored, err := s.GetCar(ctx, car.ID)
	if err != nil {
		return err
	}

	stored.Title = car.Title
	stored.Description = car.Description
	stored.Images = car.Images
	stored.Tags = car.Tags

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal car: %w", err)
	}

	err = s.client.SetArgs(ctx, s.carKey(car.ID), data, redis.SetArgs{Mode: "XX"}).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to update car: %w", err)
	}

	return nil
}

// DeleteCar removes the document and its index entries.
func (s *Store) DeleteCar(ctx context.Context, id string) error {
	stored, err := s.GetCar(ctx, id)
	if err != nil {
		return err
	}

	var deleted *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, s.carKey(id))
		pipe.ZRem(ctx, s.carsKey(), id)
		pipe.ZRem(ctx, s.ownerCarsKey(stored.OwnerID), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
	}
	if deleted.Val() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func decodeCar(data []byte) (*model.Car, error) {
	var car model.Car
	if err := json.Unmarshal(data, &car); err != nil {
		return nil, fmt.Errorf("failed to unmarshal car: %w", err)
	}
	return &car, nil
}
