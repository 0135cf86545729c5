// Package metrics provides Prometheus metrics for the Larry ledger service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ledger metrics
	samplesLogged    prometheus.Counter
	sampleRejections *prometheus.CounterVec
	awardsApplied    prometheus.Counter
	awardsSkipped    *prometheus.CounterVec
	squadAssignments prometheus.Counter
	trackedUsers     prometheus.Gauge

	// Persistence metrics
	saves        prometheus.Counter
	saveFailures prometheus.Counter

	// Interaction metrics
	interactionsDuplicate prometheus.Counter

	// Announcement pipeline metrics
	announceQueueSize     prometheus.Gauge
	announceQueueCapacity prometheus.Gauge
	announcesEnqueued     prometheus.Counter
	announcesDropped      prometheus.Counter
	announcesDelivered    prometheus.Counter
	announceFailures      prometheus.Counter
	dispatchWorkers       prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

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
		namespace:        "larry",
		subsystem:        "ledger",
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

	m.samplesLogged = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_logged_total",
		Help:      "Total number of accepted sample observations",
	})

	m.sampleRejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sample_rejections_total",
		Help:      "Total number of rejected sample observations by reason",
	}, []string{"reason"})

	m.awardsApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "awards_applied_total",
		Help:      "Total number of applied award slots",
	})

	m.awardsSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "awards_skipped_total",
		Help:      "Total number of skipped award slots by reason",
	}, []string{"reason"})

	m.squadAssignments = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "squad_assignments_total",
		Help:      "Total number of squad assignment changes",
	})

	m.trackedUsers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_users",
		Help:      "Number of member records in the ledger",
	})

	m.saves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "document_saves_total",
		Help:      "Total number of successful ledger document saves",
	})

	m.saveFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "document_save_failures_total",
		Help:      "Total number of failed ledger document saves (memory and disk diverge)",
	})

	m.interactionsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interactions_duplicate_total",
		Help:      "Total number of duplicate gateway interactions detected",
	})

	m.announceQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "announce_queue_size",
		Help:      "Current number of queued announcements",
	})

	m.announceQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "announce_queue_capacity",
		Help:      "Configured announcement queue capacity",
	})

	m.announcesEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "announces_enqueued_total",
		Help:      "Total number of announcements enqueued for dispatch",
	})

	m.announcesDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "announces_dropped_total",
		Help:      "Total number of announcements dropped on a full queue",
	})

	m.announcesDelivered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "announces_delivered_total",
		Help:      "Total number of announcements delivered by dispatch workers",
	})

	m.announceFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "announce_failures_total",
		Help:      "Total number of announcement delivery failures",
	})

	m.dispatchWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatch_workers",
		Help:      "Number of running dispatch workers",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.httpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_errors_total",
		Help:      "Total number of HTTP error responses by endpoint and type",
	}, []string{"endpoint", "type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Current heap memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Histogram of garbage collection pause times in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// RecordSampleLogged increments the accepted sample observation counter.
func RecordSampleLogged() {
	globalManager.samplesLogged.Inc()
}

// RecordSampleRejection increments the sample rejection counter for reason.
func RecordSampleRejection(reason string) {
	globalManager.sampleRejections.WithLabelValues(reason).Inc()
}

// RecordAwardApplied increments the applied award slot counter.
func RecordAwardApplied() {
	globalManager.awardsApplied.Inc()
}

// RecordAwardSkipped increments the skipped award slot counter for reason.
func RecordAwardSkipped(reason string) {
	globalManager.awardsSkipped.WithLabelValues(reason).Inc()
}

// RecordSquadAssignment increments the squad assignment counter.
func RecordSquadAssignment() {
	globalManager.squadAssignments.Inc()
}

// UpdateTrackedUsers sets the tracked member record gauge.
func UpdateTrackedUsers(count int) {
	globalManager.trackedUsers.Set(float64(count))
}

// RecordSave increments the successful save counter.
func RecordSave() {
	globalManager.saves.Inc()
}

// RecordSaveFailure increments the failed save counter.
func RecordSaveFailure() {
	globalManager.saveFailures.Inc()
}

// RecordInteractionDuplicate increments the duplicate interaction counter.
func RecordInteractionDuplicate() {
	globalManager.interactionsDuplicate.Inc()
}

// UpdateAnnounceQueueSize sets the current announcement queue size.
func UpdateAnnounceQueueSize(size int) {
	globalManager.announceQueueSize.Set(float64(size))
}

// UpdateAnnounceQueueCapacity sets the announcement queue capacity gauge.
func UpdateAnnounceQueueCapacity(capacity int) {
	globalManager.announceQueueCapacity.Set(float64(capacity))
}

// RecordAnnounceEnqueued increments the enqueued announcement counter.
func RecordAnnounceEnqueued() {
	globalManager.announcesEnqueued.Inc()
}

// RecordAnnounceDropped increments the dropped announcement counter.
func RecordAnnounceDropped() {
	globalManager.announcesDropped.Inc()
}

// RecordAnnounceDelivered increments the delivered announcement counter.
func RecordAnnounceDelivered() {
	globalManager.announcesDelivered.Inc()
}

// RecordAnnounceFailure increments the announcement delivery failure counter.
func RecordAnnounceFailure() {
	globalManager.announceFailures.Inc()
}

// UpdateDispatchWorkers sets the running dispatch worker gauge.
func UpdateDispatchWorkers(count int) {
	globalManager.dispatchWorkers.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// RecordHTTPError records an HTTP error response.
func RecordHTTPError(endpoint, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records a garbage collection pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used for scraping.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
