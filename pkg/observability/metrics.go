package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by lifecycle hooks.
type Metrics struct {
	Attempts        *prometheus.CounterVec
	AttemptDuration prometheus.Histogram
	Retries         *prometheus.CounterVec
	Transitions     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// It panics if registration fails, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentwizard_llm_attempts_total",
				Help: "Requests sent to the completion service, by HTTP status",
			},
			[]string{"status"},
		),
		AttemptDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agentwizard_llm_attempt_duration_seconds",
				Help:    "Duration of completion requests",
				Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		Retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentwizard_llm_retries_total",
				Help: "Retries scheduled by the completion client, by reason",
			},
			[]string{"reason"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentwizard_wizard_transitions_total",
				Help: "Wizard session state changes",
			},
			[]string{"from", "to"},
		),
	}
	reg.MustRegister(m.Attempts, m.AttemptDuration, m.Retries, m.Transitions)
	return m
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAttempt: func(_ context.Context, e *domain.AttemptEvent) {
			status := "none"
			if e.Status != 0 {
				status = strconv.Itoa(e.Status)
			}
			m.Attempts.WithLabelValues(status).Inc()
			m.AttemptDuration.Observe(e.Duration.Seconds())
		},
		OnRetry: func(_ context.Context, e *domain.RetryEvent) {
			m.Retries.WithLabelValues(e.Reason).Inc()
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
	}
}
