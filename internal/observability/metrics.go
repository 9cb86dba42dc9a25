package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects front end and backend-client metrics.
type Metrics struct {
	registry *prometheus.Registry

	// BackendRequests counts backend calls.
	// Labels: endpoint, outcome (ok|http_error|transport_error)
	BackendRequests *prometheus.CounterVec

	// BackendDuration measures backend call latency in seconds.
	// Labels: endpoint
	BackendDuration *prometheus.HistogramVec

	// HTTPRequests counts requests served by the front end.
	// Labels: method, route, status_code
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration measures front end request latency in seconds.
	// Labels: method, route
	HTTPDuration *prometheus.HistogramVec

	// RejectedSubmits counts actions refused because they were already in flight.
	// Labels: action
	RejectedSubmits *prometheus.CounterVec

	// AlignedRows records the row count of the latest aligned comparison.
	AlignedRows prometheus.Gauge
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		BackendRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ragdesk_backend_requests_total",
				Help: "Backend requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		BackendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ragdesk_backend_request_duration_seconds",
				Help:    "Backend request latency in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"endpoint"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ragdesk_http_requests_total",
				Help: "Front end HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ragdesk_http_request_duration_seconds",
				Help:    "Front end HTTP request latency in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"method", "route"},
		),
		RejectedSubmits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ragdesk_rejected_submits_total",
				Help: "Submissions refused while the same action was in flight",
			},
			[]string{"action"},
		),
		AlignedRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ragdesk_aligned_rows",
			Help: "Rows in the latest aligned comparison",
		}),
	}
}

// ObserveRequest records one backend call.
func (m *Metrics) ObserveRequest(endpoint string, code int, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case err != nil && code == 0:
		outcome = "transport_error"
	case code < 200 || code >= 300:
		outcome = "http_error"
	}
	m.BackendRequests.WithLabelValues(endpoint, outcome).Inc()
	m.BackendDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RejectedSubmit records a refused submission.
func (m *Metrics) RejectedSubmit(action string) {
	if m == nil {
		return
	}
	m.RejectedSubmits.WithLabelValues(action).Inc()
}

// SetAlignedRows records the size of the latest comparison.
func (m *Metrics) SetAlignedRows(n int) {
	if m == nil {
		return
	}
	m.AlignedRows.Set(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying registry for inspection.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
