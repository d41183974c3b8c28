package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carlot/carlot/internal/auth"
	"github.com/carlot/carlot/internal/handler/dto"
	"github.com/carlot/carlot/internal/model"
	"github.com/carlot/carlot/internal/repository"
	"github.com/carlot/carlot/internal/repository/memory"
	"github.com/carlot/carlot/internal/service"
	"github.com/carlot/carlot/internal/testutil"
)

// asCaller stands in for the auth gate: the caller id comes from a test header.
func asCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := &model.Claims{UserID: r.Header.Get("X-Test-Caller")}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
	})
}

func newCarRouter(cars repository.CarRepository) http.Handler {
	logger := testutil.DiscardLogger()
	h := NewCarHandler(service.NewCarService(cars, logger, nil), logger, false)

	r := chi.NewRouter()
	r.Get("/api/cars/all", h.ListAll)
	r.Group(func(r chi.Router) {
		r.Use(asCaller)
		r.Post("/api/cars/create", h.Create)
		r.Get("/api/cars", h.ListOwn)
		r.Get("/api/cars/{id}", h.Get)
		r.Put("/api/cars/{id}", h.Update)
		r.Delete("/api/cars/{id}", h.Delete)
	})
	return r
}

func serveAs(t *testing.T, h http.Handler, method, path, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()
	// DoJSON only sets Authorization; wrap to inject the caller header.
	return testutil.DoJSON(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Set("X-Test-Caller", caller)
		h.ServeHTTP(w, r)
	}), method, path, "", body)
}

func TestCarHandler_Create(t *testing.T) {
	store := memory.New()
	router := newCarRouter(store)

	tests := []struct {
		name    string
		body    any
		code    int
		message string
	}{
		{
			name: "valid",
			body: dto.CarRequest{Title: "T", Description: "D", Images: []string{"u1"}, Tags: []string{"x"}},
			code: http.StatusCreated,
		},
		{
			name:    "eleven images",
			body:    dto.CarRequest{Title: "T", Description: "D", Images: testutil.Images(11)},
			code:    http.StatusBadRequest,
			message: "You can only upload up to 10 images.",
		},
		{
			name:    "no images",
			body:    dto.CarRequest{Title: "T", Description: "D"},
			code:    http.StatusBadRequest,
			message: "You can only upload up to 10 images.",
		},
		{
			name:    "missing title",
			body:    dto.CarRequest{Description: "D", Images: []string{"u1"}},
			code:    http.StatusBadRequest,
			message: "title is required",
		},
		{
			name:    "not json",
			body:    "{",
			code:    http.StatusBadRequest,
			message: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveAs(t, router, http.MethodPost, "/api/cars/create", "owner-a", tt.body)
			if rec.Code != tt.code {
				t.Fatalf("expected status %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
			if tt.message != "" {
				var resp dto.MessageResponse
				testutil.DecodeJSON(t, rec, &resp)
				if resp.Message != tt.message {
					t.Errorf("expected message %q, got %q", tt.message, resp.Message)
				}
			}
		})
	}

	cars, err := store.ListCars(context.Background())
	if err != nil {
		t.Fatalf("ListCars: %v", err)
	}
	if len(cars) != 1 {
		t.Fatalf("only the valid request should persist, got %d cars", len(cars))
	}
	if cars[0].OwnerID != "owner-a" {
		t.Errorf("owner should be the caller, got %q", cars[0].OwnerID)
	}
}

func TestCarHandler_OwnerIgnoredInBody(t *testing.T) {
	router := newCarRouter(memory.New())

	body := map[string]any{
		"title": "T", "description": "D", "images": []string{"u1"}, "owner": "someone-else",
	}
	rec := serveAs(t, router, http.MethodPost, "/api/cars/create", "owner-a", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var car model.Car
	testutil.DecodeJSON(t, rec, &car)
	if car.OwnerID != "owner-a" {
		t.Errorf("owner = %q, want caller", car.OwnerID)
	}
}

func TestCarHandler_DenialStatusPerRoute(t *testing.T) {
	store := memory.New()
	router := newCarRouter(store)
	owner := testutil.NewTestUser(t, store, "owner")
	car := testutil.NewTestCar(t, store, owner.ID, "civic")
	missing := repository.NewID()

	update := dto.CarRequest{Title: "changed"}

	tests := []struct {
		name    string
		method  string
		id      string
		body    any
		code    int
		message string
	}{
		{"get missing", http.MethodGet, missing, nil, http.StatusNotFound, "Car not found or unauthorized"},
		{"get foreign", http.MethodGet, car.ID, nil, http.StatusForbidden, "Car not found or unauthorized"},
		{"update missing", http.MethodPut, missing, update, http.StatusForbidden, "Not authorized to update this car"},
		{"update foreign", http.MethodPut, car.ID, update, http.StatusForbidden, "Not authorized to update this car"},
		{"delete missing", http.MethodDelete, missing, nil, http.StatusNotFound, "Car not found"},
		{"delete foreign", http.MethodDelete, car.ID, nil, http.StatusForbidden, "Not authorized to delete this car"},
		{"malformed id", http.MethodGet, "not-an-id", nil, http.StatusNotFound, "Car not found or unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveAs(t, router, tt.method, "/api/cars/"+tt.id, "intruder", tt.body)
			if rec.Code != tt.code {
				t.Fatalf("expected status %d, got %d", tt.code, rec.Code)
			}
			var resp dto.MessageResponse
			testutil.DecodeJSON(t, rec, &resp)
			if resp.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, resp.Message)
			}
		})
	}

	got, err := store.GetCar(context.Background(), car.ID)
	if err != nil {
		t.Fatalf("car should survive foreign requests: %v", err)
	}
	if got.Title != "civic" {
		t.Errorf("foreign update leaked through: title %q", got.Title)
	}
}

func TestCarHandler_UpdateGuardRunsBeforeImageCap(t *testing.T) {
	store := memory.New()
	router := newCarRouter(store)
	car := testutil.NewTestCar(t, store, "owner-a", "civic")

	body := dto.CarRequest{Images: testutil.Images(11)}

	rec := serveAs(t, router, http.MethodPut, "/api/cars/"+car.ID, "intruder", body)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign caller expected 403, got %d", rec.Code)
	}

	rec = serveAs(t, router, http.MethodPut, "/api/cars/"+car.ID, "owner-a", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("owner expected 400, got %d", rec.Code)
	}
}

func TestCarHandler_UpdateTruthyOverwrite(t *testing.T) {
	store := memory.New()
	router := newCarRouter(store)
	car := testutil.NewTestCar(t, store, "owner-a", "civic")

	rec := serveAs(t, router, http.MethodPut, "/api/cars/"+car.ID, "owner-a",
		map[string]any{"title": "", "description": "repainted"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got model.Car
	testutil.DecodeJSON(t, rec, &got)
	if got.Title != "civic" {
		t.Errorf("empty title should keep stored value, got %q", got.Title)
	}
	if got.Description != "repainted" {
		t.Errorf("description not updated: %q", got.Description)
	}
	if got.OwnerID != "owner-a" || !got.CreatedAt.Equal(car.CreatedAt) {
		t.Errorf("owner or createdAt changed: %+v", got)
	}
}

func TestCarHandler_DeleteThenGet(t *testing.T) {
	store := memory.New()
	router := newCarRouter(store)
	car := testutil.NewTestCar(t, store, "owner-a", "civic")

	rec := serveAs(t, router, http.MethodDelete, "/api/cars/"+car.ID, "owner-a", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.CarDeletedResponse
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Message != "Car deleted successfully" || resp.ID != car.ID {
		t.Errorf("unexpected delete body: %+v", resp)
	}

	rec = serveAs(t, router, http.MethodGet, "/api/cars/"+car.ID, "owner-a", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete expected 404, got %d", rec.Code)
	}
}

func TestCarHandler_Lists(t *testing.T) {
	store := memory.New()
	router := newCarRouter(store)
	testutil.NewTestCar(t, store, "owner-a", "a1")
	testutil.NewTestCar(t, store, "owner-b", "b1")
	testutil.NewTestCar(t, store, "owner-a", "a2")

	var all []model.Car
	rec := serveAs(t, router, http.MethodGet, "/api/cars/all", "", nil)
	testutil.DecodeJSON(t, rec, &all)
	if len(all) != 3 {
		t.Fatalf("expected 3 public cars, got %d", len(all))
	}

	var own []model.Car
	rec = serveAs(t, router, http.MethodGet, "/api/cars", "owner-a", nil)
	testutil.DecodeJSON(t, rec, &own)
	if len(own) != 2 || own[0].Title != "a1" || own[1].Title != "a2" {
		t.Errorf("unexpected own list: %+v", own)
	}

	rec = serveAs(t, router, http.MethodGet, "/api/cars", "nobody", nil)
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("empty list should encode as [], got %q", body)
	}
}

type brokenCars struct {
	*memory.Store
}

func (brokenCars) ListCars(ctx context.Context) ([]*model.Car, error) {
	return nil, errors.New("store offline")
}

func TestCarHandler_StoreFailure(t *testing.T) {
	router := newCarRouter(brokenCars{memory.New()})

	rec := serveAs(t, router, http.MethodGet, "/api/cars/all", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Message != "Server error" || resp.Error != "" {
		t.Errorf("unexpected 500 body: %+v", resp)
	}
}
