package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	availability    prometheus.Histogram
	activeBookings  prometheus.Gauge
	exportOutcomes  *prometheus.CounterVec
}

// NewMetricsService registers the collectors.
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

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	availability := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_availability_seconds",
		Help:    "Time spent computing available scheduling instants",
		Buckets: prometheus.DefBuckets,
	})

	activeBookings := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "active_bookings",
		Help: "Number of bicycles currently on loan",
	})

	exportOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agenda_exports_total",
		Help: "Agenda export jobs by outcome",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses, availability, activeBookings, exportOutcomes, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		availability:    availability,
		activeBookings:  activeBookings,
		exportOutcomes:  exportOutcomes,
	}
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

// RecordCacheOperation counts cache hits and misses.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveAvailability records how long one availability computation took.
func (m *MetricsService) ObserveAvailability(duration time.Duration) {
	if m == nil {
		return
	}
	m.availability.Observe(duration.Seconds())
}

// SetActiveBookings updates the open loan gauge.
func (m *MetricsService) SetActiveBookings(count int) {
	if m == nil {
		return
	}
	m.activeBookings.Set(float64(count))
}

// RecordExportOutcome counts one finished export job.
func (m *MetricsService) RecordExportOutcome(status string) {
	if m == nil {
		return
	}
	m.exportOutcomes.WithLabelValues(status).Inc()
}
