package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Validation outcomes reported by the verifier.
const (
	ValidationOutcomeOK          = "ok"
	ValidationOutcomeNotFound    = "not_found"
	ValidationOutcomeMalformed   = "malformed"
	ValidationOutcomeUnavailable = "unavailable"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer,
// the catalog cache and the registration and gate workflow.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	registrations   *prometheus.CounterVec
	validations     *prometheus.CounterVec
	decisions       *prometheus.CounterVec
	ticketRenders   *prometheus.CounterVec
	ticketBacklog   prometheus.Gauge
}

// NewMetricsService registers collectors on a private registry.
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
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache set operations",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gardenia_registrations_total",
			Help: "Registrations stored, by event",
		}, []string{"event"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gardenia_credential_validations_total",
			Help: "Credential validations by outcome",
		}, []string{"outcome"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gardenia_entry_decisions_total",
			Help: "Entry decisions recorded, by action",
		}, []string{"action"}),
		ticketRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gardenia_ticket_renders_total",
			Help: "Ticket render attempts by result",
		}, []string{"result"}),
		ticketBacklog: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gardenia_ticket_queue_depth",
			Help: "Ticket render jobs waiting in the queue",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency, m.cacheWrite, m.cacheLookups,
		m.dbQueryDuration,
		m.registrations, m.validations, m.decisions, m.ticketRenders, m.ticketBacklog,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Registry exposes the underlying registry, mainly for tests.
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
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

// IncRegistration counts a stored registration.
func (m *MetricsService) IncRegistration(eventID string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(eventID).Inc()
}

// IncValidation counts a verifier outcome.
func (m *MetricsService) IncValidation(outcome string) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(outcome).Inc()
}

// IncDecision counts a recorded entry decision.
func (m *MetricsService) IncDecision(action string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(action).Inc()
}

// IncTicketRender counts a render attempt.
func (m *MetricsService) IncTicketRender(result string) {
	if m == nil {
		return
	}
	m.ticketRenders.WithLabelValues(result).Inc()
}

// SetTicketBacklog publishes the current ticket queue depth.
func (m *MetricsService) SetTicketBacklog(depth int) {
	if m == nil {
		return
	}
	m.ticketBacklog.Set(float64(depth))
}
