package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/classsync-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic and timetable operations.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	storeDuration   *prometheus.HistogramVec
	storeFailures   *prometheus.CounterVec
	reservations    *prometheus.CounterVec
	importRows      *prometheus.CounterVec
	broadcasts      *prometheus.CounterVec
	subscribers     *prometheus.GaugeVec
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapshot_cache_latency_seconds",
		Help:    "Latency for snapshot cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapshot_cache_write_seconds",
		Help:    "Latency for snapshot cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_cache_hits_total",
		Help: "Total snapshot cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_cache_misses_total",
		Help: "Total snapshot cache misses",
	})

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booking_store_operation_seconds",
		Help:    "Duration of booking store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "collection"})

	storeFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_store_failures_total",
		Help: "Booking store operations that failed",
	}, []string{"operation", "collection"})

	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_requests_total",
		Help: "Extra reservation requests by outcome",
	}, []string{"outcome"})

	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Imported CSV rows by result",
	}, []string{"result"})

	broadcasts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_broadcasts_total",
		Help: "Snapshots pushed to local subscribers",
	}, []string{"collection"})

	subscribers := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "snapshot_subscribers",
		Help: "Open live subscriptions per collection",
	}, []string{"collection"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHits, cacheMisses,
		storeDuration, storeFailures, reservations, importRows, broadcasts, subscribers, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		storeDuration:   storeDuration,
		storeFailures:   storeFailures,
		reservations:    reservations,
		importRows:      importRows,
		broadcasts:      broadcasts,
		subscribers:     subscribers,
	}
}

// Registry exposes the underlying registry for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a snapshot cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}

// ObserveCacheWrite tracks the duration of snapshot cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveStoreOperation records the timing and outcome of a booking store call.
func (m *MetricsService) ObserveStoreOperation(operation string, collection models.Collection, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(operation, string(collection)).Observe(duration.Seconds())
	if err != nil {
		m.storeFailures.WithLabelValues(operation, string(collection)).Inc()
	}
}

// RecordReservation counts a reservation request by outcome.
func (m *MetricsService) RecordReservation(outcome string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(outcome).Inc()
}

// RecordImportRows counts imported rows by result.
func (m *MetricsService) RecordImportRows(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.importRows.WithLabelValues(result).Add(float64(n))
}

// RecordBroadcast counts snapshots delivered to local subscribers.
func (m *MetricsService) RecordBroadcast(collection models.Collection, receivers int) {
	if m == nil || receivers <= 0 {
		return
	}
	m.broadcasts.WithLabelValues(string(collection)).Add(float64(receivers))
}

// AddSubscribers adjusts the open subscription gauge.
func (m *MetricsService) AddSubscribers(collection models.Collection, delta int) {
	if m == nil {
		return
	}
	m.subscribers.WithLabelValues(string(collection)).Add(float64(delta))
}
