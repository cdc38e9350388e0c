// Package metrics exposes battle counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/ericogr/llm-fighters/internal/game"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "llm_fighters"

// Recorder counts battle events. It implements runner.Observer and is safe
// for use by concurrent battles.
type Recorder struct {
	turns            *prometheus.CounterVec
	violations       *prometheus.CounterVec
	skills           *prometheus.CounterVec
	tokens           *prometheus.CounterVec
	providerFailures *prometheus.CounterVec
	battlesFinished  *prometheus.CounterVec
}

// NewRecorder creates the battle counters and registers them on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Turns processed by the engine",
		}, []string{"role", "outcome"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Rule violations committed by agents",
		}, []string{"role"}),
		skills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skills_used_total",
			Help:      "Skills resolved, including forced skips",
		}, []string{"skill"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens reported by action providers",
		}, []string{"role"}),
		providerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_failures_total",
			Help:      "Action provider failures that stopped a battle",
		}, []string{"role"}),
		battlesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "battles_finished_total",
			Help:      "Battles that stopped, by winner",
		}, []string{"winner"}),
	}
	reg.MustRegister(r.turns, r.violations, r.skills, r.tokens, r.providerFailures, r.battlesFinished)
	return r
}

func (r *Recorder) TurnProcessed(role game.Role, result game.TurnResult, tokens int) {
	outcome := "success"
	if !result.Success {
		outcome = "violation"
		r.violations.WithLabelValues(string(role)).Inc()
	} else if result.SkillUsed != "" {
		r.skills.WithLabelValues(result.SkillUsed).Inc()
	}
	r.turns.WithLabelValues(string(role), outcome).Inc()
	if tokens > 0 {
		r.tokens.WithLabelValues(string(role)).Add(float64(tokens))
	}
}

func (r *Recorder) ProviderFailed(role game.Role, err error) {
	r.providerFailures.WithLabelValues(string(role)).Inc()
}

func (r *Recorder) BattleFinished(winner game.Winner) {
	label := string(winner)
	if winner == game.WinnerNone {
		label = "aborted"
	}
	r.battlesFinished.WithLabelValues(label).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
