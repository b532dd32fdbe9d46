// Package metrics provides Prometheus metrics for the score checker.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcome labels.
const (
	StatusOK       = "ok"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// Profile build outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Manager owns the checker's metrics. A nil Manager records nothing and
// exports an empty registry.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	profilesBuilt   *prometheus.CounterVec
}

// NewManager creates a Manager registering on its own registry unless one is
// supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "intralism",
		subsystem:        "score_checker",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)
	m.requests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "requests_total",
		Help:      "Requests made to the ranking site by page kind and outcome",
	}, []string{"kind", "status"})

	m.requestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "request_duration_seconds",
		Help:      "Latency of requests to the ranking site",
		Buckets:   m.histogramBuckets,
	}, []string{"kind"})

	m.profilesBuilt = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profiles_built_total",
		Help:      "Player profile builds by outcome",
	}, []string{"outcome"})

	return m
}

// ObserveRequest records one request to the ranking site.
func (m *Manager) ObserveRequest(kind, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(kind, status).Inc()
	m.requestDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveProfile records the outcome of one profile build.
func (m *Manager) ObserveProfile(err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.profilesBuilt.WithLabelValues(outcome).Inc()
}

// Gatherer exposes the registry for scraping or export.
func (m *Manager) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// WriteTextfile writes the current metrics in text exposition format, for
// pickup by a node exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Gatherer()); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}
