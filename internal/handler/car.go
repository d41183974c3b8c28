package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carlot/carlot/internal/auth"
	"github.com/carlot/carlot/internal/handler/dto"
	"github.com/carlot/carlot/internal/service"
)

// Denial messages differ per route and are part of the public contract.
const (
	msgGetDenied    = "Car not found or unauthorized"
	msgUpdateDenied = "Not authorized to update this car"
	msgDeleteDenied = "Not authorized to delete this car"
	msgCarNotFound  = "Car not found"
	msgCarDeleted   = "Car deleted successfully"
)

// CarHandler handles HTTP requests for car listings.
type CarHandler struct {
	svc  *service.CarService
	errs errorResponder
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(svc *service.CarService, logger *slog.Logger, exposeErrors bool) *CarHandler {
	return &CarHandler{
		svc:  svc,
		errs: errorResponder{logger: logger, detail: exposeErrors},
	}
}

// Create handles POST /api/cars/create.
func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CarRequest
	if !readJSON(w, r, &req) {
		return
	}

	car, err := h.svc.Create(r.Context(), callerID(r), req.ToCreateInput())
	if err != nil {
		if !h.writeValidation(w, err) {
			h.errs.internal(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, car)
}

// ListAll handles GET /api/cars/all. It needs no token.
func (h *CarHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	cars, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.errs.internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CarList(cars))
}

// ListOwn handles GET /api/cars.
func (h *CarHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	cars, err := h.svc.ListOwn(r.Context(), callerID(r))
	if err != nil {
		h.errs.internal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CarList(cars))
}

// Get handles GET /api/cars/{id}.
// A missing car is 404 and a foreign car is 403, both with the same message.
func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	car, err := h.svc.Get(r.Context(), callerID(r), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCarNotFound):
			writeMessage(w, http.StatusNotFound, msgGetDenied)
		case errors.Is(err, service.ErrNotOwner):
			writeMessage(w, http.StatusForbidden, msgGetDenied)
		default:
			h.errs.internal(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, car)
}

// Update handles PUT /api/cars/{id}.
// Missing and foreign cars are both 403.
func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.CarRequest
	if !readJSON(w, r, &req) {
		return
	}

	car, err := h.svc.Update(r.Context(), callerID(r), chi.URLParam(r, "id"), req.ToPatch())
	if err != nil {
		if errors.Is(err, service.ErrCarNotFound) || errors.Is(err, service.ErrNotOwner) {
			writeMessage(w, http.StatusForbidden, msgUpdateDenied)
			return
		}
		if !h.writeValidation(w, err) {
			h.errs.internal(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, car)
}

// Delete handles DELETE /api/cars/{id}.
func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), callerID(r), id); err != nil {
		switch {
		case errors.Is(err, service.ErrCarNotFound):
			writeMessage(w, http.StatusNotFound, msgCarNotFound)
		case errors.Is(err, service.ErrNotOwner):
			writeMessage(w, http.StatusForbidden, msgDeleteDenied)
		default:
			h.errs.internal(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.CarDeletedResponse{Message: msgCarDeleted, ID: id})
}

// writeValidation answers 400 for validation errors and reports whether it did.
func (h *CarHandler) writeValidation(w http.ResponseWriter, err error) bool {
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	writeMessage(w, http.StatusBadRequest, verr.Message)
	return true
}

// callerID reads the verified user id. Routes using it sit behind the auth gate.
func callerID(r *http.Request) string {
	return auth.MustClaimsFromContext(r.Context()).UserID
}
