package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveHTTPRequest is a no-op.
func (n *NoopRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(outcome string) {}

// IncAuthRejected is a no-op.
func (n *NoopRecorder) IncAuthRejected(reason string) {}

// IncCarCreated is a no-op.
func (n *NoopRecorder) IncCarCreated() {}

// IncCarUpdated is a no-op.
func (n *NoopRecorder) IncCarUpdated() {}

// IncCarDeleted is a no-op.
func (n *NoopRecorder) IncCarDeleted() {}

// IncOwnershipDenied is a no-op.
func (n *NoopRecorder) IncOwnershipDenied(operation string) {}
