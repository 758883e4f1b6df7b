package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileMetrics records persistence passes of editing sessions.
type ReconcileMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	triggers *prometheus.CounterVec
	sessions prometheus.Gauge
}

// NewReconcileMetrics registers the reconciliation metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reconcile_pass_duration_seconds",
		Help:    "Duration of reconciliation passes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"group"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_pass_total",
		Help: "Reconciliation passes by group and outcome.",
	}, []string{"group", "outcome"})
	triggers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_debounce_triggers_total",
		Help: "Selection changes that (re)armed a debounce timer.",
	}, []string{"group"})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "editing_sessions_active",
		Help: "Editing sessions currently open.",
	})
	reg.MustRegister(duration, outcomes, triggers, sessions)
	return &ReconcileMetrics{
		duration: duration,
		outcomes: outcomes,
		triggers: triggers,
		sessions: sessions,
	}
}

// ObservePass records the duration and outcome of one pass.
func (m *ReconcileMetrics) ObservePass(group, outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	group = normalizeLabel(group)
	m.duration.WithLabelValues(group).Observe(duration.Seconds())
	m.outcomes.WithLabelValues(group, normalizeLabel(outcome)).Inc()
}

// IncTrigger counts a debounce trigger for the group.
func (m *ReconcileMetrics) IncTrigger(group string) {
	if m == nil || m.triggers == nil {
		return
	}
	m.triggers.WithLabelValues(normalizeLabel(group)).Inc()
}

// SessionOpened increments the active session gauge.
func (m *ReconcileMetrics) SessionOpened() {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (m *ReconcileMetrics) SessionClosed() {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.Dec()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
