// Package metrics provides Prometheus metrics for the docs service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Search metrics
	SearchesTotal *prometheus.CounterVec
	SearchResults *prometheus.HistogramVec

	// Content metrics
	ReloadsTotal   *prometheus.CounterVec
	ReloadDuration prometheus.Histogram
	Documents      prometheus.Gauge
	LoadProblems   prometheus.Gauge

	// Navigation sessions
	SessionsActive prometheus.Gauge

	StartTime time.Time
}

// NewMetrics creates all metrics on a private registry so several instances
// can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	m := &Metrics{registry: reg, StartTime: time.Now()}

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tkdocs_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)
	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tkdocs_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	m.SearchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tkdocs_searches_total",
			Help: "Total number of searches by mode",
		},
		[]string{"mode"},
	)
	m.SearchResults = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tkdocs_search_results",
			Help:    "Number of matches per search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"mode"},
	)

	m.ReloadsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tkdocs_content_reloads_total",
			Help: "Total number of content loads by status",
		},
		[]string{"status"},
	)
	m.ReloadDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tkdocs_content_reload_duration_seconds",
			Help:    "Duration of content loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	m.Documents = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "tkdocs_documents",
			Help: "Number of documents in the current index",
		},
	)
	m.LoadProblems = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "tkdocs_content_problems",
			Help: "Number of files with problems in the last load",
		},
	)

	m.SessionsActive = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "tkdocs_navigation_sessions",
			Help: "Number of open navigation sessions",
		},
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordSearch records a search and its result count.
func (m *Metrics) RecordSearch(mode string, results int) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(mode).Inc()
	m.SearchResults.WithLabelValues(mode).Observe(float64(results))
}

// RecordReload records a content load.
func (m *Metrics) RecordReload(err error, duration time.Duration, documents, problems int) {
	if m == nil {
		return
	}
	m.ReloadDuration.Observe(duration.Seconds())
	if err != nil {
		m.ReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.ReloadsTotal.WithLabelValues("success").Inc()
	m.Documents.Set(float64(documents))
	m.LoadProblems.Set(float64(problems))
}

// SetSessions sets the number of open navigation sessions.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.SessionsActive.Set(float64(n))
}
