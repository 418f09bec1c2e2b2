// Package metrics provides Prometheus metrics for the OlyBars pulse engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pulse engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Admission metrics - the gate is the hot write path
	checkinsAdmitted  prometheus.Counter
	checkinsRejected  *prometheus.CounterVec
	admissionLatency  prometheus.Histogram
	admissionFailures prometheus.Counter

	// Pulse metrics - recompute volume and cost
	pulseRecomputes      prometheus.Counter
	pulseRecomputeErrors prometheus.Counter
	pulseLatency         prometheus.Histogram

	// Feed metrics
	feedRenders       *prometheus.CounterVec
	feedRenderLatency prometheus.Histogram
	buzzWindowRenders prometheus.Counter

	// Refresh queue metrics
	refreshQueueSize     prometheus.Gauge
	refreshQueueCapacity prometheus.Gauge
	refreshEnqueues      prometheus.Counter
	refreshDequeues      prometheus.Counter
	refreshEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount  prometheus.Gauge
	workerErrors prometheus.Counter

	// Scale indicators
	trackedVenues prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "olybars",
		subsystem:        "pulse",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.checkinsAdmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "checkins_admitted_total",
		Help:      "Total number of check-ins admitted by the eligibility gate",
	})

	m.checkinsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "checkins_rejected_total",
			Help:      "Total number of check-ins rejected, by rule",
		},
		[]string{"reason"},
	)

	m.admissionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "admission_latency_milliseconds",
		Help:      "Histogram of eligibility gate decision latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.admissionFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "admission_failures_total",
		Help:      "Total number of admissions that failed on store errors (not rule rejections)",
	})

	m.pulseRecomputes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recomputes_total",
		Help:      "Total number of pulse recomputes",
	})

	m.pulseRecomputeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_errors_total",
		Help:      "Total number of failed pulse recomputes (previous score kept)",
	})

	m.pulseLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_latency_milliseconds",
		Help:      "Histogram of pulse recompute latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.feedRenders = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "feed_renders_total",
			Help:      "Total number of feed rankings produced, by mode",
		},
		[]string{"mode"},
	)

	m.feedRenderLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_render_latency_milliseconds",
		Help:      "Histogram of feed ranking latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.buzzWindowRenders = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "buzz_window_renders_total",
		Help:      "Total number of buzz-window selections served",
	})

	m.refreshQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_size",
		Help:      "Current size of the pulse refresh queue",
	})

	m.refreshQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_capacity",
		Help:      "Configured capacity of the pulse refresh queue",
	})

	m.refreshEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_enqueues_total",
		Help:      "Total number of venues enqueued for pulse refresh",
	})

	m.refreshDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_dequeues_total",
		Help:      "Total number of refresh requests consumed by workers",
	})

	m.refreshEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_enqueue_errors_total",
		Help:      "Total number of refresh enqueue failures (backpressure or closed queue)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of refresh workers",
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of refresh worker errors",
	})

	m.trackedVenues = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_venues",
		Help:      "Total number of venues tracked by the engine",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
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

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// Package-level record functions delegating to the global manager.

// RecordCheckinAdmitted increments the admitted check-in counter.
func RecordCheckinAdmitted() {
	globalManager.checkinsAdmitted.Inc()
}

// RecordCheckinRejected increments the rejected check-in counter for a rule.
func RecordCheckinRejected(reason string) {
	globalManager.checkinsRejected.WithLabelValues(reason).Inc()
}

// RecordAdmissionLatency records how long a gate decision took.
func RecordAdmissionLatency(latencyMs float64) {
	globalManager.admissionLatency.Observe(latencyMs)
}

// RecordAdmissionFailure increments the infrastructure-failure counter.
func RecordAdmissionFailure() {
	globalManager.admissionFailures.Inc()
}

// RecordPulseRecompute increments the recompute counter.
func RecordPulseRecompute() {
	globalManager.pulseRecomputes.Inc()
}

// RecordPulseRecomputeError increments the recompute error counter.
func RecordPulseRecomputeError() {
	globalManager.pulseRecomputeErrors.Inc()
}

// RecordPulseLatency records recompute latency.
func RecordPulseLatency(latencyMs float64) {
	globalManager.pulseLatency.Observe(latencyMs)
}

// RecordFeedRender increments the feed render counter for a mode.
func RecordFeedRender(mode string) {
	globalManager.feedRenders.WithLabelValues(mode).Inc()
}

// RecordFeedRenderLatency records feed ranking latency.
func RecordFeedRenderLatency(latencyMs float64) {
	globalManager.feedRenderLatency.Observe(latencyMs)
}

// RecordBuzzWindowRender increments the buzz-window counter.
func RecordBuzzWindowRender() {
	globalManager.buzzWindowRenders.Inc()
}

// UpdateRefreshQueueSize sets the refresh queue size gauge.
func UpdateRefreshQueueSize(size int) {
	globalManager.refreshQueueSize.Set(float64(size))
}

// UpdateRefreshQueueCapacity sets the refresh queue capacity gauge.
func UpdateRefreshQueueCapacity(capacity int) {
	globalManager.refreshQueueCapacity.Set(float64(capacity))
}

// RecordRefreshEnqueue increments the enqueue counter.
func RecordRefreshEnqueue() {
	globalManager.refreshEnqueues.Inc()
}

// RecordRefreshDequeue increments the dequeue counter.
func RecordRefreshDequeue() {
	globalManager.refreshDequeues.Inc()
}

// RecordRefreshEnqueueError increments the enqueue error counter.
func RecordRefreshEnqueueError() {
	globalManager.refreshEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the worker count gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateTrackedVenues sets the tracked venue gauge.
func UpdateTrackedVenues(count int) {
	globalManager.trackedVenues.Set(float64(count))
}

// RecordHTTPRequest increments HTTP request counters.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry for serving /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
