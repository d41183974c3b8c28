package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestBuckets covers typical API latencies from 5ms to 5s.
var RequestBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// PrometheusRecorder exports events as Prometheus collectors.
type PrometheusRecorder struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	usersRegistered prometheus.Counter
	logins          *prometheus.CounterVec
	authRejected    *prometheus.CounterVec
	carOperations   *prometheus.CounterVec
	ownershipDenied *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carlot_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "carlot_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: RequestBuckets,
			},
			[]string{"method", "route"},
		),
		usersRegistered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "carlot_users_registered_total",
				Help: "Registered users",
			},
		),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carlot_logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		authRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carlot_auth_rejected_total",
				Help: "Requests rejected by the bearer token gate",
			},
			[]string{"reason"},
		),
		carOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carlot_car_operations_total",
				Help: "Successful car mutations",
			},
			[]string{"operation"},
		),
		ownershipDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carlot_ownership_denied_total",
				Help: "Operations refused because the caller is not the owner",
			},
			[]string{"operation"},
		),
	}

	reg.MustRegister(
		r.requestsTotal,
		r.requestDuration,
		r.usersRegistered,
		r.logins,
		r.authRejected,
		r.carOperations,
		r.ownershipDenied,
	)

	return r
}

// ObserveHTTPRequest records a served request.
func (r *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	r.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncUserRegistered counts a registration.
func (r *PrometheusRecorder) IncUserRegistered() {
	r.usersRegistered.Inc()
}

// IncLogin counts a login attempt.
func (r *PrometheusRecorder) IncLogin(outcome string) {
	r.logins.WithLabelValues(outcome).Inc()
}

// IncAuthRejected counts a gate rejection.
func (r *PrometheusRecorder) IncAuthRejected(reason string) {
	r.authRejected.WithLabelValues(reason).Inc()
}

// IncCarCreated counts a created car.
func (r *PrometheusRecorder) IncCarCreated() {
	r.carOperations.WithLabelValues("create").Inc()
}

// IncCarUpdated counts an updated car.
func (r *PrometheusRecorder) IncCarUpdated() {
	r.carOperations.WithLabelValues("update").Inc()
}

// IncCarDeleted counts a deleted car.
func (r *PrometheusRecorder) IncCarDeleted() {
	r.carOperations.WithLabelValues("delete").Inc()
}

// IncOwnershipDenied counts an ownership refusal.
func (r *PrometheusRecorder) IncOwnershipDenied(operation string) {
	r.ownershipDenied.WithLabelValues(operation).Inc()
}
