// Package metrics exposes Prometheus collectors for case analysis, letters,
// knowledge reloads and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "claims"

// Metrics is nil-safe: every Observe method on a nil receiver is a no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	analysesTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	cacheTotal       *prometheus.CounterVec
	lettersTotal     *prometheus.CounterVec
	reloadsTotal     *prometheus.CounterVec
	httpTotal        *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers collectors on reg. A nil reg selects a fresh registry so
// repeated construction in tests never panics on duplicate registration.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		gatherer: reg,
		analysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Case analyses run, by document kind and outcome",
		}, []string{"document_kind", "outcome"}),
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent scoring and planning a case",
			Buckets:   prometheus.DefBuckets,
		}, []string{"document_kind"}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_cache_total",
			Help:      "Analysis cache lookups by result",
		}, []string{"result"}),
		lettersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "letters_total",
			Help:      "Letters drafted by drafting mode",
		}, []string{"mode"}),
		reloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "knowledge_reloads_total",
			Help:      "Knowledge base reload attempts by result",
		}, []string{"result"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	reg.MustRegister(m.analysesTotal, m.analysisDuration, m.cacheTotal, m.lettersTotal,
		m.reloadsTotal, m.httpTotal, m.httpDuration)
	return m
}

func (m *Metrics) ObserveAnalysis(documentKind, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.analysesTotal.WithLabelValues(documentKind, outcome).Inc()
	m.analysisDuration.WithLabelValues(documentKind).Observe(seconds)
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveLetter(mode string) {
	if m == nil {
		return
	}
	m.lettersTotal.WithLabelValues(mode).Inc()
}

func (m *Metrics) ObserveReload(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reloadsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(route, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(seconds)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
