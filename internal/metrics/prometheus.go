package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the scrape pipeline and HTTP metrics
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	fetchAttempts  *prometheus.CounterVec
	scrapes        *prometheus.CounterVec
	scrapeDuration *prometheus.HistogramVec
	rowsRecorded   *prometheus.CounterVec

	cacheLookups *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a Manager with its own registry unless one is given
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fisresults",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.fetchAttempts = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "fetch",
		Name:      "attempts_total",
		Help:      "Page fetch attempts by outcome.",
	}, []string{"outcome"})

	m.scrapes = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "scrape",
		Name:      "total",
		Help:      "Completed scrapes by outcome.",
	}, []string{"outcome"})

	m.scrapeDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "scrape",
		Name:      "duration_seconds",
		Help:      "Scrape duration including retries.",
		Buckets:   m.histogramBuckets,
	}, []string{"outcome"})

	m.rowsRecorded = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "normalize",
		Name:      "rows_total",
		Help:      "Normalized rows by result: record, skipped or anomaly.",
	}, []string{"result"})

	m.cacheLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Result cache lookups by result: hit or miss.",
	}, []string{"result"})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served.",
	}, []string{"route", "method", "status"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration.",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})
}

// Registry returns the registry holding the metrics
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// FetchAttempt records one fetch attempt
func (m *Manager) FetchAttempt(outcome string) {
	m.fetchAttempts.WithLabelValues(outcome).Inc()
}

// ScrapeFinished records a completed scrape
func (m *Manager) ScrapeFinished(outcome string, duration time.Duration) {
	m.scrapes.WithLabelValues(outcome).Inc()
	m.scrapeDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RowsNormalized records the row counts of one normalized table
func (m *Manager) RowsNormalized(records, skipped, anomalies int) {
	m.rowsRecorded.WithLabelValues("record").Add(float64(records))
	m.rowsRecorded.WithLabelValues("skipped").Add(float64(skipped))
	m.rowsRecorded.WithLabelValues("anomaly").Add(float64(anomalies))
}

// CacheLookup records a result cache hit or miss
func (m *Manager) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records one served request
func (m *Manager) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}
