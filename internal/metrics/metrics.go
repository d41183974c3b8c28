// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login outcomes passed to IncLogin.
const (
	LoginSuccess     = "success"
	LoginUnknownUser = "unknown_user"
	LoginBadPassword = "bad_password"
)

// Auth gate rejection reasons passed to IncAuthRejected.
const (
	RejectMissingHeader = "missing_header"
	RejectMalformed     = "malformed"
	RejectInvalidToken  = "invalid_token"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// HTTP metrics; route is the matched pattern, never the raw path
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)

	// Identity metrics
	IncUserRegistered()
	IncLogin(outcome string)
	IncAuthRejected(reason string)

	// Listing metrics
	IncCarCreated()
	IncCarUpdated()
	IncCarDeleted()
	IncOwnershipDenied(operation string)
}
