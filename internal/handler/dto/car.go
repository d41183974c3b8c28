package dto

import (
	"github.com/carlot/carlot/internal/model"
	"github.com/carlot/carlot/internal/service"
)

// CarRequest is the body of POST /api/cars/create and PUT /api/cars/{id}.
// Owner and timestamps are never read from the body.
type CarRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Tags        []string `json:"tags"`
}

// ToCreateInput converts the request into service input.
func (r CarRequest) ToCreateInput() service.CreateCarInput {
	return service.CreateCarInput{
		Title:       r.Title,
		Description: r.Description,
		Images:      r.Images,
		Tags:        r.Tags,
	}
}

// ToPatch converts the request into a partial update.
func (r CarRequest) ToPatch() model.CarPatch {
	return model.CarPatch{
		Title:       r.Title,
		Description: r.Description,
		Images:      r.Images,
		Tags:        r.Tags,
	}
}

// CarDeletedResponse is returned after a successful delete.
type CarDeletedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// CarList never encodes as null.
func CarList(cars []*model.Car) []*model.Car {
	if cars == nil {
		return []*model.Car{}
	}
	return cars
}
