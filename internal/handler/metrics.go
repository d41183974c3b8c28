package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes collected metrics in Prometheus exposition format.
type MetricsHandler struct {
	gatherer prometheus.Gatherer
	inner    http.Handler
}

// NewMetricsHandler creates a new MetricsHandler over gatherer.
// A nil gatherer answers 503.
func NewMetricsHandler(gatherer prometheus.Gatherer) *MetricsHandler {
	h := &MetricsHandler{gatherer: gatherer}
	if gatherer != nil {
		h.inner = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
			ErrorHandling: promhttp.ContinueOnError,
		})
	}
	return h
}

// Metrics handles GET /metrics.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.inner == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	h.inner.ServeHTTP(w, r)
}
