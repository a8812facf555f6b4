// Package metrics provides Prometheus metrics for the artmap service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Upstream knowledge-graph queries
	sparqlRequests *prometheus.CounterVec
	sparqlLatency  *prometheus.HistogramVec
	sparqlRecords  prometheus.Histogram

	// Result cache
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	cacheStores  prometheus.Counter
	cacheEntries prometheus.Gauge

	// Prefetch queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge
	workerLatency      prometheus.Histogram
	workerErrors       prometheus.Counter

	// Map and panel
	markerSyncs      prometheus.Counter
	markersRendered  prometheus.Gauge
	markersSkipped   prometheus.Counter
	panelShows       prometheus.Counter
	enrichments      *prometheus.CounterVec
	enrichLatency    prometheus.Histogram
	enrichDiscarded  prometheus.Counter
	thumbnailResults *prometheus.CounterVec
	activeSessions   prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "artmap",
		subsystem:        "viewer",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.sparqlRequests = m.counterVec("sparql_requests_total", "SPARQL queries issued, by origin and outcome", "origin", "outcome")
	m.sparqlLatency = m.histogramVec("sparql_latency_milliseconds", "SPARQL round-trip latency in milliseconds", "origin")
	m.sparqlRecords = m.histogram("sparql_records", "Painter records returned per SPARQL query", []float64{0, 1, 5, 10, 25, 50, 100})

	m.cacheHits = m.counter("cache_hits_total", "Refreshes served from the movement cache")
	m.cacheMisses = m.counter("cache_misses_total", "Refreshes that needed an on-demand fetch")
	m.cacheStores = m.counter("cache_stores_total", "Result sets written to the movement cache")
	m.cacheEntries = m.gauge("cache_entries", "Movements currently cached")

	m.queueSize = m.gauge("prefetch_queue_size", "Prefetch jobs waiting in the queue")
	m.queueCapacity = m.gauge("prefetch_queue_capacity", "Capacity of the prefetch queue")
	m.queueEnqueued = m.counter("prefetch_enqueued_total", "Prefetch jobs accepted by the queue")
	m.queueDequeued = m.counter("prefetch_dequeued_total", "Prefetch jobs handed to workers")
	m.queueEnqueueErrors = m.counter("prefetch_enqueue_errors_total", "Prefetch jobs rejected by the queue")
	m.workerCount = m.gauge("prefetch_workers", "Prefetch workers running")
	m.workerLatency = m.histogram("prefetch_job_latency_milliseconds", "Time to complete one prefetch job", m.histogramBuckets)
	m.workerErrors = m.counter("prefetch_errors_total", "Prefetch jobs that failed")

	m.markerSyncs = m.counter("marker_syncs_total", "Marker synchronizations performed")
	m.markersRendered = m.gauge("markers_rendered", "Markers rendered by the most recent synchronization")
	m.markersSkipped = m.counter("markers_skipped_total", "Records skipped for lacking coordinates")
	m.panelShows = m.counter("panel_shows_total", "Detail panels populated from a marker click")
	m.enrichments = m.counterVec("enrichments_total", "Summary lookups by outcome", "outcome")
	m.enrichLatency = m.histogram("enrichment_latency_milliseconds", "Summary lookup latency in milliseconds", m.histogramBuckets)
	m.enrichDiscarded = m.counter("enrichments_discarded_total", "Summary results dropped because the panel moved on")
	m.thumbnailResults = m.counterVec("thumbnails_total", "Image resolutions by result", "result")
	m.activeSessions = m.gauge("sessions_active", "Open viewer sessions")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint, method and type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds", []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10})
}

// Upstream query metrics.

// RecordSPARQLRequest counts a SPARQL query; origin is "prefetch" or "on_demand".
func RecordSPARQLRequest(origin, outcome string) {
	globalManager.sparqlRequests.WithLabelValues(origin, outcome).Inc()
}

// RecordSPARQLLatency records the round-trip time of a SPARQL query.
func RecordSPARQLLatency(origin string, latencyMs float64) {
	globalManager.sparqlLatency.WithLabelValues(origin).Observe(latencyMs)
}

// RecordSPARQLRecords records how many painters a query returned.
func RecordSPARQLRecords(n int) {
	globalManager.sparqlRecords.Observe(float64(n))
}

// Cache metrics.

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() { globalManager.cacheHits.Inc() }

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() { globalManager.cacheMisses.Inc() }

// RecordCacheStore increments the store counter.
func RecordCacheStore() { globalManager.cacheStores.Inc() }

// UpdateCacheEntries sets the number of cached movements.
func UpdateCacheEntries(n int) { globalManager.cacheEntries.Set(float64(n)) }

// Prefetch queue and worker metrics.

// UpdateQueueSize sets the number of waiting prefetch jobs.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the number of running prefetch workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerLatency records how long one prefetch job took.
func RecordWorkerLatency(latencyMs float64) { globalManager.workerLatency.Observe(latencyMs) }

// RecordWorkerError increments the prefetch failure counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// Map and panel metrics.

// RecordMarkerSync records one synchronization and the markers it rendered.
func RecordMarkerSync(rendered, skipped int) {
	globalManager.markerSyncs.Inc()
	globalManager.markersRendered.Set(float64(rendered))
	globalManager.markersSkipped.Add(float64(skipped))
}

// RecordPanelShow increments the panel population counter.
func RecordPanelShow() { globalManager.panelShows.Inc() }

// RecordEnrichment counts a summary lookup by outcome.
func RecordEnrichment(outcome string, latencyMs float64) {
	globalManager.enrichments.WithLabelValues(outcome).Inc()
	globalManager.enrichLatency.Observe(latencyMs)
}

// RecordEnrichmentDiscarded counts a stale summary result that was ignored.
func RecordEnrichmentDiscarded() { globalManager.enrichDiscarded.Inc() }

// RecordThumbnail counts an image resolution: "thumbnail", "original", "placeholder" or "fallback".
func RecordThumbnail(result string) { globalManager.thumbnailResults.WithLabelValues(result).Inc() }

// UpdateActiveSessions sets the number of open sessions.
func UpdateActiveSessions(n int) { globalManager.activeSessions.Set(float64(n)) }

// HTTP metrics.

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
