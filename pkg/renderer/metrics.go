package renderer

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the renderer's Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "purcmc").
	Namespace string

	// Subsystem is the metrics subsystem (default: "renderer").
	Subsystem string

	// ConstLabels are constant labels added to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration. Default:
	// prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registerer metrics are added to.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures a MetricsConfig.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels applied to every metric.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithMetricsRegistry sets the Prometheus registerer.
func WithMetricsRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "purcmc",
		Subsystem: "renderer",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the renderer's Prometheus instruments: endpoints
// connected, operations dispatched by status code, ownership
// suppress/reload events, and sweep evictions (SPEC_FULL.md §6.2).
type Metrics struct {
	endpointsConnected prometheus.Gauge
	dispatchTotal      *prometheus.CounterVec
	dispatchDuration   *prometheus.HistogramVec
	ownershipEvents    *prometheus.CounterVec
	sweepEvictions     prometheus.Counter
}

// NewMetrics registers a fresh set of renderer metrics and returns a
// collector to pass to WithMetrics. Each call registers new collectors;
// callers that build more than one Renderer in the same process should
// share one Metrics value or use distinct ConstLabels/registries.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		endpointsConnected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "endpoints_connected",
			Help:        "Number of endpoints currently connected to this renderer.",
			ConstLabels: cfg.ConstLabels,
		}),
		dispatchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "dispatch_total",
			Help:        "Total requests dispatched, by operation and response status code.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"operation", "status"}),
		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Time spent in Dispatcher.Dispatch, by operation.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"operation"}),
		ownershipEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "ownership_events_total",
			Help:        "suppressPage/reloadPage events delivered to a different session's endpoint.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"event"}),
		sweepEvictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "sweep_evictions_total",
			Help:        "Endpoints removed by the liveness sweeper for exceeding NO_RESPONDING_TIME.",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// EndpointConnected records a new endpoint registration.
func (m *Metrics) EndpointConnected() {
	m.endpointsConnected.Inc()
}

// EndpointDisconnected records an endpoint's removal, for any cause.
func (m *Metrics) EndpointDisconnected() {
	m.endpointsConnected.Dec()
}

// RecordDispatch records one Dispatch call's outcome and latency.
func (m *Metrics) RecordDispatch(operation string, statusCode int, d time.Duration) {
	status := strconv.Itoa(statusCode)
	m.dispatchTotal.WithLabelValues(operation, status).Inc()
	m.dispatchDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordOwnershipEvent records a cross-session suppressPage/reloadPage
// delivery.
func (m *Metrics) RecordOwnershipEvent(eventName string) {
	m.ownershipEvents.WithLabelValues(eventName).Inc()
}

// SweepEviction records one endpoint removed for exceeding
// NO_RESPONDING_TIME.
func (m *Metrics) SweepEviction() {
	m.sweepEvictions.Inc()
}

var (
	globalMetrics   *Metrics
	globalMetricsMu sync.Mutex
)

// SetGlobalMetrics installs m as the package-level default, so callers
// that construct a Renderer without WithMetrics can still observe
// aggregate counters via the Record* package functions below. Mirrors
// the teacher's global-singleton metrics pattern.
func SetGlobalMetrics(m *Metrics) {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	globalMetrics = m
}

// RecordDispatch is the package-level equivalent of (*Metrics).RecordDispatch,
// a no-op if no global Metrics has been installed.
func RecordDispatch(operation string, statusCode int, d time.Duration) {
	globalMetricsMu.Lock()
	m := globalMetrics
	globalMetricsMu.Unlock()
	if m != nil {
		m.RecordDispatch(operation, statusCode, d)
	}
}
