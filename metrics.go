package zenobjects

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the record request
// lifecycle and the read cache. It is safe for concurrent use.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheSize   *prometheus.GaugeVec

	invalidationsTotal     *prometheus.CounterVec
	coalescedSearchesTotal *prometheus.CounterVec

	errorsTotal *prometheus.CounterVec

	registry prometheus.Registerer
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	mc := &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "zenobjects_requests_total",
				Help: "Total number of record API requests made",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zenobjects_request_duration_seconds",
				Help:    "Duration of record API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "zenobjects_requests_in_flight",
				Help: "Number of record API requests currently in flight",
			},
			[]string{"method", "endpoint"},
		),
		cacheHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "zenobjects_cache_hits_total",
				Help: "Total number of search cache hits",
			},
			[]string{"resource"},
		),
		cacheMisses: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "zenobjects_cache_misses_total",
				Help: "Total number of search cache misses",
			},
			[]string{"resource"},
		),
		cacheSize: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "zenobjects_cache_size",
				Help: "Current number of entries in the search cache",
			},
			[]string{"name"},
		),
		invalidationsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "zenobjects_invalidations_total",
				Help: "Total number of tag-scoped cache invalidations",
			},
			[]string{"resource"},
		),
		coalescedSearchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "zenobjects_coalesced_searches_total",
				Help: "Total number of searches that shared another caller's fetch",
			},
			[]string{"resource"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "zenobjects_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type", "method", "endpoint"},
		),
		registry: registry,
	}

	return mc
}

// RecordRequest records request count and duration.
func (mc *MetricsCollector) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	statusCodeStr := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(method, statusCodeStr, endpoint).Inc()
	mc.requestDuration.WithLabelValues(method, statusCodeStr, endpoint).Observe(duration.Seconds())
}

// RecordRequestStart increments in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Inc()
}

// RecordRequestEnd decrements in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Dec()
}

// RecordCacheHit increments cache hit counter.
func (mc *MetricsCollector) RecordCacheHit(resource string) {
	if mc == nil {
		return
	}

	mc.cacheHits.WithLabelValues(resource).Inc()
}

// RecordCacheMiss increments cache miss counter.
func (mc *MetricsCollector) RecordCacheMiss(resource string) {
	if mc == nil {
		return
	}

	mc.cacheMisses.WithLabelValues(resource).Inc()
}

// RecordCacheSize sets cache size gauge.
func (mc *MetricsCollector) RecordCacheSize(name string, size int) {
	if mc == nil {
		return
	}

	mc.cacheSize.WithLabelValues(name).Set(float64(size))
}

// RecordInvalidation increments tag invalidation counter.
func (mc *MetricsCollector) RecordInvalidation(resource string) {
	if mc == nil {
		return
	}

	mc.invalidationsTotal.WithLabelValues(resource).Inc()
}

// RecordCoalescedSearch increments the coalesced search counter.
func (mc *MetricsCollector) RecordCoalescedSearch(resource string) {
	if mc == nil {
		return
	}

	mc.coalescedSearchesTotal.WithLabelValues(resource).Inc()
}

// RecordError increments error counter by type.
func (mc *MetricsCollector) RecordError(errorType, method, endpoint string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(errorType, method, endpoint).Inc()
}

// Registerer exposes the underlying prometheus registerer.
func (mc *MetricsCollector) Registerer() prometheus.Registerer {
	return mc.registry
}
