package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the game counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gamesStarted       prometheus.Counter
	generationFailures *prometheus.CounterVec
	decisions          *prometheus.CounterVec
	policyEvaluations  *prometheus.CounterVec
	leaderboardUpdates *prometheus.CounterVec
}

// New registers the game counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crisis",
			Name:      "games_started_total",
			Help:      "Game sessions successfully created.",
		}),
		generationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crisis",
			Name:      "question_generation_failures_total",
			Help:      "Question generation failures by reason.",
		}, []string{"reason"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crisis",
			Name:      "decisions_total",
			Help:      "Decision submissions by outcome.",
		}, []string{"outcome"}),
		policyEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crisis",
			Name:      "policy_evaluations_total",
			Help:      "Policy evaluations by outcome.",
		}, []string{"outcome"}),
		leaderboardUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crisis",
			Name:      "leaderboard_updates_total",
			Help:      "Leaderboard upserts by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.gamesStarted, m.generationFailures, m.decisions, m.policyEvaluations, m.leaderboardUpdates)
	return m
}

func (m *Metrics) GameStarted() {
	if m == nil {
		return
	}
	m.gamesStarted.Inc()
}

func (m *Metrics) GenerationFailed(reason string) {
	if m == nil {
		return
	}
	m.generationFailures.WithLabelValues(reason).Inc()
}

// Decision records "recorded" or "duplicate".
func (m *Metrics) Decision(outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PolicyEvaluated(outcome string) {
	if m == nil {
		return
	}
	m.policyEvaluations.WithLabelValues(outcome).Inc()
}

// LeaderboardUpdate records "applied", "skipped" or "failed".
func (m *Metrics) LeaderboardUpdate(outcome string) {
	if m == nil {
		return
	}
	m.leaderboardUpdates.WithLabelValues(outcome).Inc()
}
