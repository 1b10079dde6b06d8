package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Calculation outcome label values, bounded by construction.
const (
	OutcomeOK         = "ok"
	OutcomeBanned     = "banned"
	OutcomeSuspicious = "suspicious"
	OutcomeCapped     = "capped"
	OutcomeFallback   = "fallback"
	OutcomeError      = "error"
)

// Metrics holds all Prometheus metrics for the performance core.
type Metrics struct {
	calculationsTotal   *prometheus.CounterVec
	calculationDuration *prometheus.HistogramVec
	bansCreatedTotal    prometheus.Counter
	fetchFailuresTotal  prometheus.Counter
	suspicionErrors     prometheus.Counter
	cacheHitsTotal      *prometheus.CounterVec
	registry            *prometheus.Registry
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "scorepp"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.calculationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Total number of PP calculations by game mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	m.calculationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "PP calculation duration in seconds",
			Buckets: []float64{
				.001, .005, .01, .025, .05,
				.1, .25, .5, 1, 2.5, 5, 10,
			},
		},
		[]string{"mode"},
	)

	m.bansCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "beatmap_bans_created_total",
			Help:      "Total number of beatmaps banned after a suspicious verdict",
		},
	)

	m.fetchFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "beatmap_fetch_failures_total",
			Help:      "Total number of raw beatmap fetch failures",
		},
	)

	m.suspicionErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suspicion_check_errors_total",
			Help:      "Total number of suspicion checks that failed open",
		},
	)

	m.cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "beatmap_cache_requests_total",
			Help:      "Total number of beatmap cache lookups by result",
		},
		[]string{"result"},
	)

	m.registry.MustRegister(
		m.calculationsTotal,
		m.calculationDuration,
		m.bansCreatedTotal,
		m.fetchFailuresTotal,
		m.suspicionErrors,
		m.cacheHitsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordCalculation records a completed PP calculation.
func (m *Metrics) RecordCalculation(mode, outcome string, seconds float64) {
	m.calculationsTotal.WithLabelValues(mode, outcome).Inc()
	m.calculationDuration.WithLabelValues(mode).Observe(seconds)
}

// RecordBanCreated records a newly created beatmap ban.
func (m *Metrics) RecordBanCreated() {
	m.bansCreatedTotal.Inc()
}

// RecordFetchFailure records a raw beatmap fetch failure.
func (m *Metrics) RecordFetchFailure() {
	m.fetchFailuresTotal.Inc()
}

// RecordSuspicionError records a suspicion check that failed open.
func (m *Metrics) RecordSuspicionError() {
	m.suspicionErrors.Inc()
}

// RecordCacheLookup records a beatmap cache lookup result ("hit" or "miss").
func (m *Metrics) RecordCacheLookup(result string) {
	m.cacheHitsTotal.WithLabelValues(result).Inc()
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
