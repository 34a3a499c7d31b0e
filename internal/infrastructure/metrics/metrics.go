package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeFailed   = "failed"
)

// Metrics groups the service's collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	CollaboratorCalls *prometheus.CounterVec
	Persistence       *prometheus.CounterVec
	SessionsActive    prometheus.Gauge
	PausesDetected    prometheus.Counter
	AnalysisDuration  prometheus.Histogram
	EventsPublished   *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CollaboratorCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_collaborator_calls_total",
				Help: "Calls to external collaborators by kind and outcome",
			},
			[]string{"collaborator", "outcome"},
		),
		Persistence: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_persistence_total",
				Help: "Session record writes by path (create, update) and outcome",
			},
			[]string{"path", "outcome"},
		),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "interview_sessions_active",
			Help: "Live interview sessions currently connected",
		}),
		PausesDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interview_pauses_detected_total",
			Help: "Pauses above threshold found in respondent answers",
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "interview_analysis_duration_seconds",
			Help:    "Time spent in post-call analysis and persistence",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_events_published_total",
				Help: "Completion events published to the broker",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.CollaboratorCalls,
		m.Persistence,
		m.SessionsActive,
		m.PausesDetected,
		m.AnalysisDuration,
		m.EventsPublished,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// The helpers below accept a nil receiver

func (m *Metrics) ObserveCollaborator(name, outcome string) {
	if m == nil {
		return
	}
	m.CollaboratorCalls.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) ObservePersistence(path, outcome string) {
	if m == nil {
		return
	}
	m.Persistence.WithLabelValues(path, outcome).Inc()
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}

func (m *Metrics) AddPauses(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PausesDetected.Add(float64(n))
}

func (m *Metrics) ObserveAnalysis(seconds float64) {
	if m == nil {
		return
	}
	m.AnalysisDuration.Observe(seconds)
}

func (m *Metrics) ObservePublish(outcome string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(outcome).Inc()
}
