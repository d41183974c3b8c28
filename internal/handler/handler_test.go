package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/carlot/carlot/internal/handler/dto"
	"github.com/carlot/carlot/internal/testutil"
)

func TestHandler_Hello(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Hello(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response dto.MessageResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Message != "Request was successful!" {
		t.Errorf("unexpected message: %s", response.Message)
	}
}

func TestHandler_Fallbacks(t *testing.T) {
	h := New()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		code    int
		message string
	}{
		{"not found", h.NotFound, http.StatusNotFound, "resource not found"},
		{"method not allowed", h.MethodNotAllowed, http.StatusMethodNotAllowed, "method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodPost, "/nonexistent", nil))

			if rec.Code != tt.code {
				t.Errorf("expected status %d, got %d", tt.code, rec.Code)
			}

			var response dto.MessageResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Message != tt.message {
				t.Errorf("unexpected message: %s", response.Message)
			}
		})
	}
}

func TestErrorResponder_Detail(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		name      string
		detail    bool
		wantError string
	}{
		{"production hides cause", false, ""},
		{"development exposes cause", true, cause.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := errorResponder{logger: testutil.DiscardLogger(), detail: tt.detail}

			rec := httptest.NewRecorder()
			e.internal(rec, httptest.NewRequest(http.MethodGet, "/api/cars", nil), cause)

			if rec.Code != http.StatusInternalServerError {
				t.Errorf("expected status 500, got %d", rec.Code)
			}

			var response dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Message != "Server error" {
				t.Errorf("unexpected message: %s", response.Message)
			}
			if response.Error != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, response.Error)
			}
		})
	}
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		limit   int64
		ok      bool
		code    int
		message string
	}{
		{"valid", `{"username":"a"}`, 1 << 10, true, http.StatusOK, ""},
		{"malformed", `{"username":`, 1 << 10, false, http.StatusBadRequest, "Invalid request body"},
		{"past limit", `{"username":"` + strings.Repeat("a", 64) + `"}`, 16, false, http.StatusRequestEntityTooLarge, "Request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body))
			// a chunked body carries no length for the middleware to reject early
			req.ContentLength = -1
			req.Body = http.MaxBytesReader(rec, req.Body, tt.limit)

			var creds dto.CredentialsRequest
			if got := readJSON(rec, req, &creds); got != tt.ok {
				t.Fatalf("readJSON() = %v, want %v", got, tt.ok)
			}
			if tt.ok {
				if creds.Username != "a" {
					t.Errorf("unexpected username: %s", creds.Username)
				}
				return
			}

			if rec.Code != tt.code {
				t.Errorf("expected status %d, got %d", tt.code, rec.Code)
			}
			var response dto.MessageResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Message != tt.message {
				t.Errorf("unexpected message: %s", response.Message)
			}
		})
	}
}
