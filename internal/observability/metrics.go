package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for both the API and the ingest
// worker. Each instance owns its registry so tests can build many.
// All methods are no-ops on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec

	ingestRecords   *prometheus.CounterVec
	ingestDropped   *prometheus.CounterVec
	ingestBatches   *prometheus.CounterVec
	ingestBatchTime prometheus.Histogram
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "movementpass_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "movementpass_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "movementpass_http_errors_total",
			Help: "HTTP error responses by route, method and error code",
		}, []string{"route", "method", "code"}),
		ingestRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "movementpass_ingest_records_total",
			Help: "Stream records by outcome", // received, duplicate, loaded
		}, []string{"outcome"}),
		ingestDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "movementpass_ingest_dropped_total",
			Help: "Stream records dropped by the reducer, by stage",
		}, []string{"stage"}),
		ingestBatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "movementpass_ingest_batches_total",
			Help: "Processed stream batches by result",
		}, []string{"result"}),
		ingestBatchTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "movementpass_ingest_batch_duration_seconds",
			Help:    "Time from first fetched record to committed offsets",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// Registry exposes the gatherer for the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest counts a finished request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordIngested adds n records under outcome.
func (m *Metrics) RecordIngested(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ingestRecords.WithLabelValues(outcome).Add(float64(n))
}

// RecordDropped counts one record discarded at stage.
func (m *Metrics) RecordDropped(stage string) {
	if m == nil {
		return
	}
	m.ingestDropped.WithLabelValues(stage).Inc()
}

// RecordBatch counts a batch and how long it took.
func (m *Metrics) RecordBatch(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ingestBatches.WithLabelValues(result).Inc()
	m.ingestBatchTime.Observe(duration.Seconds())
}
