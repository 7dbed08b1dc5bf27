package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Binding label values.
const (
	BindingFramed = "framed"
	BindingHTTP   = "http"
)

// Metrics holds the collectors of a Thing host.
type Metrics struct {
	registry *prometheus.Registry

	BlocksServed    *prometheus.CounterVec
	BytesServed     *prometheus.CounterVec
	Failures        *prometheus.CounterVec
	RenderDuration  prometheus.Histogram
	DocumentSize    prometheus.Gauge
	ActiveTransfers prometheus.Gauge
	Interactions    *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		BlocksServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wot",
				Subsystem: "td",
				Name:      "blocks_served_total",
				Help:      "Thing Description blocks served",
			},
			[]string{"binding"},
		),
		BytesServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wot",
				Subsystem: "td",
				Name:      "bytes_served_total",
				Help:      "Thing Description bytes served",
			},
			[]string{"binding"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wot",
				Subsystem: "td",
				Name:      "failures_total",
				Help:      "Failed Thing Description retrievals by reason",
			},
			[]string{"binding", "reason"},
		),
		RenderDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "wot",
				Subsystem: "td",
				Name:      "render_duration_seconds",
				Help:      "Time spent rendering one block or document",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
		DocumentSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "wot",
				Subsystem: "td",
				Name:      "document_size_bytes",
				Help:      "Size of the most recently rendered Thing Description",
			},
		),
		ActiveTransfers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "wot",
				Subsystem: "td",
				Name:      "active_transfers",
				Help:      "Block-wise transfers in progress",
			},
		),
		Interactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wot",
				Subsystem: "thing",
				Name:      "interactions_total",
				Help:      "Affordance interactions by operation and status",
			},
			[]string{"binding", "operation", "status"},
		),
	}

	m.registry.MustRegister(
		m.BlocksServed,
		m.BytesServed,
		m.Failures,
		m.RenderDuration,
		m.DocumentSize,
		m.ActiveTransfers,
		m.Interactions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveBlock records one served block. A nil receiver is a no-op so
// callers need not check whether metrics are enabled.
func (m *Metrics) ObserveBlock(binding string, n int, size int64, took time.Duration) {
	if m == nil {
		return
	}
	m.BlocksServed.WithLabelValues(binding).Inc()
	m.BytesServed.WithLabelValues(binding).Add(float64(n))
	m.DocumentSize.Set(float64(size))
	m.RenderDuration.Observe(took.Seconds())
}

// ObserveFailure records a failed retrieval.
func (m *Metrics) ObserveFailure(binding, reason string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(binding, reason).Inc()
}

// ObserveInteraction records a property or action interaction.
func (m *Metrics) ObserveInteraction(binding, operation, status string) {
	if m == nil {
		return
	}
	m.Interactions.WithLabelValues(binding, operation, status).Inc()
}

// SetActiveTransfers updates the transfer gauge.
func (m *Metrics) SetActiveTransfers(n int) {
	if m == nil {
		return
	}
	m.ActiveTransfers.Set(float64(n))
}
