// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/carlot/carlot/internal/model"
	"github.com/carlot/carlot/internal/repository"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret-do-not-use"

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser stores a user with a placeholder hash.
func NewTestUser(t testing.TB, store repository.UserRepository, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, PasswordHash: "$2a$10$placeholder"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return user
}

// NewTestCar stores a car with sensible defaults owned by ownerID.
func NewTestCar(t testing.TB, store repository.CarRepository, ownerID, title string) *model.Car {
	t.Helper()
	car := &model.Car{
		OwnerID:     ownerID,
		Title:       title,
		Description: title + " for sale",
		Images:      []string{"https://img.example.com/" + title + ".jpg"},
		Tags:        []string{},
	}
	if err := store.CreateCar(context.Background(), car); err != nil {
		t.Fatalf("create car %q: %v", title, err)
	}
	return car
}

// Images returns n distinct image references.
func Images(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("https://img.example.com/%d.jpg", i)
	}
	return out
}

// UniqueName generates a unique name for tests.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// ============================================================================
// HTTP helpers
// ============================================================================

// DoJSON sends body (if non-nil) as JSON to h and returns the recorder.
// A non-empty token is sent as "Bearer <token>".
func DoJSON(t testing.TB, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// DecodeJSON unmarshals the recorder body into v.
func DecodeJSON(t testing.TB, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
