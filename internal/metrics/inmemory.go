package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	HTTPRequests        uint64
	HTTPDurationTotalNs int64
	UsersRegistered     uint64
	LoginsSucceeded     uint64
	LoginsFailed        uint64
	AuthRejected        uint64
	CarsCreated         uint64
	CarsUpdated         uint64
	CarsDeleted         uint64
	OwnershipDenied     uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	httpRequests        uint64
	httpDurationTotalNs int64
	usersRegistered     uint64
	loginsSucceeded     uint64
	loginsFailed        uint64
	authRejected        uint64
	carsCreated         uint64
	carsUpdated         uint64
	carsDeleted         uint64
	ownershipDenied     uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		HTTPRequests:        atomic.LoadUint64(&m.httpRequests),
		HTTPDurationTotalNs: atomic.LoadInt64(&m.httpDurationTotalNs),
		UsersRegistered:     atomic.LoadUint64(&m.usersRegistered),
		LoginsSucceeded:     atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:        atomic.LoadUint64(&m.loginsFailed),
		AuthRejected:        atomic.LoadUint64(&m.authRejected),
		CarsCreated:         atomic.LoadUint64(&m.carsCreated),
		CarsUpdated:         atomic.LoadUint64(&m.carsUpdated),
		CarsDeleted:         atomic.LoadUint64(&m.carsDeleted),
		OwnershipDenied:     atomic.LoadUint64(&m.ownershipDenied),
	}
}

// ObserveHTTPRequest counts a served request and its duration.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
	atomic.AddInt64(&m.httpDurationTotalNs, duration.Nanoseconds())
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLogin increments the success or failure counter.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	if outcome == LoginSuccess {
		atomic.AddUint64(&m.loginsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncAuthRejected increments the auth gate rejection counter.
func (m *InMemoryRecorder) IncAuthRejected(reason string) {
	atomic.AddUint64(&m.authRejected, 1)
}

// IncCarCreated increments car created counter.
func (m *InMemoryRecorder) IncCarCreated() {
	atomic.AddUint64(&m.carsCreated, 1)
}

// IncCarUpdated increments car updated counter.
func (m *InMemoryRecorder) IncCarUpdated() {
	atomic.AddUint64(&m.carsUpdated, 1)
}

// IncCarDeleted increments car deleted counter.
func (m *InMemoryRecorder) IncCarDeleted() {
	atomic.AddUint64(&m.carsDeleted, 1)
}

// IncOwnershipDenied increments the ownership denial counter.
func (m *InMemoryRecorder) IncOwnershipDenied(operation string) {
	atomic.AddUint64(&m.ownershipDenied, 1)
}
