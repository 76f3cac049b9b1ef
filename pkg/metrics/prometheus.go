// Package metrics provides Prometheus metrics for the rankindex query service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Query service
	queriesTotal *prometheus.CounterVec
	queryErrors  *prometheus.CounterVec

	// Dataset lifecycle
	datasetRefreshTotal    prometheus.Counter
	datasetRefreshErrors   prometheus.Counter
	datasetRefreshDuration prometheus.Histogram
	datasetLastRefreshUnix prometheus.Gauge
	datasetAgeSeconds      prometheus.Gauge
	datasetIndustries      prometheus.Gauge
	datasetSnapshots       prometheus.Gauge
	datasetEntries         prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rankindex",
		subsystem:        "api",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metric families.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.queriesTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "queries_total",
			Help:      "Total number of query-service operations by name",
		},
		[]string{"operation"},
	)

	m.queryErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "query_errors_total",
			Help:      "Total number of typed query failures by operation and kind",
		},
		[]string{"operation", "kind"},
	)

	m.datasetRefreshTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_refresh_total",
		Help:      "Total number of successful dataset refreshes",
	})

	m.datasetRefreshErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_refresh_errors_total",
		Help:      "Total number of failed dataset refresh attempts",
	})

	m.datasetRefreshDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_refresh_duration_milliseconds",
		Help:      "Dataset fetch+index duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.datasetLastRefreshUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_last_refresh_unix",
		Help:      "Unix timestamp of the last successful dataset refresh",
	})

	m.datasetAgeSeconds = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_age_seconds",
		Help:      "Seconds since the last successful dataset refresh",
	})

	m.datasetIndustries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_industries",
		Help:      "Number of industries in the active dataset",
	})

	m.datasetSnapshots = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_snapshots",
		Help:      "Number of (industry, period) ranking snapshots in the active dataset",
	})

	m.datasetEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_entries",
		Help:      "Number of ranked company entries in the active dataset",
	})
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// GetManager returns the global metrics manager.
func GetManager() *Manager {
	return globalManager
}

// RecordHTTPRequest increments the request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes the request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordQuery counts one query-service operation invocation.
func RecordQuery(operation string) {
	if !globalManager.enabled {
		return
	}
	globalManager.queriesTotal.WithLabelValues(operation).Inc()
}

// RecordQueryError counts one typed query failure.
func RecordQueryError(operation, kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.queryErrors.WithLabelValues(operation, kind).Inc()
}

// RecordDatasetRefresh records a successful refresh and its duration.
func RecordDatasetRefresh(duration time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.datasetRefreshTotal.Inc()
	globalManager.datasetRefreshDuration.Observe(float64(duration.Milliseconds()))
	globalManager.datasetLastRefreshUnix.Set(float64(time.Now().Unix()))
}

// RecordDatasetRefreshError records a failed refresh attempt.
func RecordDatasetRefreshError() {
	if !globalManager.enabled {
		return
	}
	globalManager.datasetRefreshErrors.Inc()
}

// UpdateDatasetAge sets the seconds elapsed since the last successful refresh.
func UpdateDatasetAge(seconds float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.datasetAgeSeconds.Set(seconds)
}

// UpdateDatasetStats sets the gauges describing the active dataset.
func UpdateDatasetStats(industries, snapshots, entries int) {
	if !globalManager.enabled {
		return
	}
	globalManager.datasetIndustries.Set(float64(industries))
	globalManager.datasetSnapshots.Set(float64(snapshots))
	globalManager.datasetEntries.Set(float64(entries))
}
