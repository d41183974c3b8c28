package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carlot/carlot/internal/metrics"
	"github.com/carlot/carlot/internal/model"
	"github.com/carlot/carlot/internal/repository"
)

const tooManyImagesMessage = "You can only upload up to 10 images."

// CarService handles listing business logic.
type CarService struct {
	cars    repository.CarRepository
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewCarService creates a new CarService.
func NewCarService(cars repository.CarRepository, logger *slog.Logger, recorder metrics.Recorder) *CarService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CarService{
		cars:    cars,
		logger:  logger,
		metrics: recorder,
	}
}

// CreateCarInput defines input for creating a car.
type CreateCarInput struct {
	Title       string
	Description string
	Images      []string
	Tags        []string
}

// Create stores a new listing owned by the caller.
func (s *CarService) Create(ctx context.Context, callerID string, input CreateCarInput) (*model.Car, error) {
	if len(input.Images) == 0 || len(input.Images) > model.MaxCarImages {
		return nil, &ValidationError{Field: "images", Message: tooManyImagesMessage, Err: ErrTooManyImages}
	}
	if input.Title == "" {
		return nil, invalid("title", "title is required")
	}
	if input.Description == "" {
		return nil, invalid("description", "description is required")
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	car := &model.Car{
		OwnerID:     callerID,
		Title:       input.Title,
		Description: input.Description,
		Images:      input.Images,
		Tags:        tags,
	}
	if err := s.cars.CreateCar(ctx, car); err != nil {
		return nil, fmt.Errorf("failed to create car: %w", err)
	}

	s.metrics.IncCarCreated()
	s.logger.Info("car_created",
		slog.String("car_id", car.ID),
		slog.String("owner_id", car.OwnerID),
		slog.Int("images", len(car.Images)),
	)

	return car, nil
}

// ListAll returns every car in insertion order.
func (s *CarService) ListAll(ctx context.Context) ([]*model.Car, error) {
	cars, err := s.cars.ListCars(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	return cars, nil
}

// ListOwn returns the caller's cars in insertion order.
func (s *CarService) ListOwn(ctx context.Context, callerID string) ([]*model.Car, error) {
	cars, err := s.cars.ListCarsByOwner(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	return cars, nil
}

// Get returns a car the caller owns.
func (s *CarService) Get(ctx context.Context, callerID, id string) (*model.Car, error) {
	return s.loadOwned(ctx, "get", callerID, id)
}

// Update applies a partial update to a car the caller owns. Empty fields in
// the patch keep the stored values.
func (s *CarService) Update(ctx context.Context, callerID, id string, patch model.CarPatch) (*model.Car, error) {
	car, err := s.loadOwned(ctx, "update", callerID, id)
	if err != nil {
		return nil, err
	}

	if len(patch.Images) > model.MaxCarImages {
		return nil, &ValidationError{Field: "images", Message: tooManyImagesMessage, Err: ErrTooManyImages}
	}

	car.Apply(patch)

	if err := s.cars.UpdateCar(ctx, car); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, fmt.Errorf("failed to update car: %w", err)
	}

	s.metrics.IncCarUpdated()
	s.logger.Info("car_updated",
		slog.String("car_id", car.ID),
		slog.String("owner_id", car.OwnerID),
	)

	return car, nil
}

// Delete removes a car the caller owns.
func (s *CarService) Delete(ctx context.Context, callerID, id string) error {
	if _, err := s.loadOwned(ctx, "delete", callerID, id); err != nil {
		return err
	}

	if err := s.cars.DeleteCar(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCarNotFound
		}
		return fmt.Errorf("failed to delete car: %w", err)
	}

	s.metrics.IncCarDeleted()
	s.logger.Info("car_deleted",
		slog.String("car_id", id),
		slog.String("owner_id", callerID),
	)

	return nil
}

// loadOwned fetches a car and runs the ownership guard on it.
func (s *CarService) loadOwned(ctx context.Context, op, callerID, id string) (*model.Car, error) {
	car, err := s.cars.GetCar(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get car: %w", err)
	}

	if err := authorizeOwner(car, callerID); err != nil {
		if errors.Is(err, ErrNotOwner) {
			s.metrics.IncOwnershipDenied(op)
			s.logger.Warn("ownership_denied",
				slog.String("operation", op),
				slog.String("car_id", id),
				slog.String("caller_id", callerID),
			)
		}
		return nil, err
	}

	return car, nil
}
