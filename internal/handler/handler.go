// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/carlot/carlot/internal/handler/dto"
)

const serverErrorMessage = "Server error"

// Handler serves the small endpoints that have no service behind them.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello confirms that the bearer token was accepted.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Request was successful!")
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.MessageResponse{Message: message})
}

// errorResponder writes 500 replies. The underlying error is only echoed
// back to the client when detail is set.
type errorResponder struct {
	logger *slog.Logger
	detail bool
}

func (e errorResponder) internal(w http.ResponseWriter, r *http.Request, err error) {
	e.logger.Error("internal_error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)

	resp := dto.ErrorResponse{Message: serverErrorMessage}
	if e.detail {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

// readJSON decodes the request body into v. On failure it answers 413 when
// the body ran past the size limit and 400 otherwise, and returns false.
func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	writeMessage(w, http.StatusBadRequest, "Invalid request body")
	return false
}
