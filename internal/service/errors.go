// Package service provides business logic for the application.
package service

import "errors"

// Service errors.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrCarNotFound     = errors.New("car not found")
	ErrNotOwner        = errors.New("caller does not own this car")
	ErrTooManyImages   = errors.New("too many images")
)

// ValidationError describes a rejected input field. It matches ErrValidation
// and, when set, the more specific Err.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
