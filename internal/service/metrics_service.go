package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tawhid3482/geniustutors-console/internal/models"
)

// MetricsService owns the Prometheus registry and keeps a few plain counters
// for the JSON ops snapshot.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	refreshTotal    *prometheus.CounterVec
	staleTotal      *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	cacheWrite      prometheus.Histogram
	dbQueryDuration *prometheus.HistogramVec
	activeViews     prometheus.Gauge
	auditEvents     *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	backendCount         uint64
	backendDurationTotal uint64
	staleCount           uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
	viewCount            int64
}

// NewMetricsService registers the console collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Duration of calls to the tutoring backend",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "resource", "status"}),
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collection_refresh_total",
			Help: "Collection fetches applied, by trigger and outcome",
		}, []string{"collection", "trigger", "outcome"}),
		staleTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collection_stale_responses_total",
			Help: "Fetch responses discarded because a newer request was issued",
		}, []string{"collection"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache set operations",
			Buckets: prometheus.DefBuckets,
		}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		activeViews: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "views_active",
			Help: "Open list view sessions",
		}),
		auditEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_events_total",
			Help: "Audit events by outcome",
		}, []string{"outcome"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal, m.backendDuration, m.refreshTotal, m.staleTotal,
		m.cacheHits, m.cacheMisses, m.cacheWrite, m.dbQueryDuration,
		m.activeViews, m.auditEvents, goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records inbound request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveBackendRequest implements backend.Observer.
func (m *MetricsService) ObserveBackendRequest(method, resource string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(method, resource, strconv.Itoa(status)).Observe(duration.Seconds())
	atomic.AddUint64(&m.backendCount, 1)
	atomic.AddUint64(&m.backendDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveRefresh implements collection.Observer.
func (m *MetricsService) ObserveRefresh(collection, trigger string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.refreshTotal.WithLabelValues(collection, trigger, outcome).Inc()
}

// ObserveStaleResponse implements collection.Observer.
func (m *MetricsService) ObserveStaleResponse(collection string) {
	if m == nil {
		return
	}
	m.staleTotal.WithLabelValues(collection).Inc()
	atomic.AddUint64(&m.staleCount, 1)
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheMisses.Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// ViewOpened and ViewClosed track the number of live view sessions.
func (m *MetricsService) ViewOpened() {
	if m == nil {
		return
	}
	m.activeViews.Inc()
	atomic.AddInt64(&m.viewCount, 1)
}

func (m *MetricsService) ViewClosed() {
	if m == nil {
		return
	}
	m.activeViews.Dec()
	atomic.AddInt64(&m.viewCount, -1)
}

// RecordAudit counts audit writes by outcome.
func (m *MetricsService) RecordAudit(outcome string) {
	if m == nil {
		return
	}
	m.auditEvents.WithLabelValues(outcome).Inc()
}

// Snapshot returns aggregated counters for the ops endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	backend := atomic.LoadUint64(&m.backendCount)
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)

	snap := models.SystemMetrics{
		RequestsTotal:  requests,
		BackendCalls:   backend,
		StaleResponses: atomic.LoadUint64(&m.staleCount),
		ActiveViews:    atomic.LoadInt64(&m.viewCount),
		Goroutines:     runtime.NumGoroutine(),
		GeneratedAt:    time.Now().UTC(),
	}
	if requests > 0 {
		snap.AverageRequestDurationMs = float64(atomic.LoadUint64(&m.requestDurationTotal)) / float64(requests) / float64(time.Millisecond)
	}
	if backend > 0 {
		snap.AverageBackendDurationMs = float64(atomic.LoadUint64(&m.backendDurationTotal)) / float64(backend) / float64(time.Millisecond)
	}
	if hits+misses > 0 {
		snap.CacheHitRatio = float64(hits) / float64(hits+misses)
	}
	return snap
}
