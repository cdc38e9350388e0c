package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/ericogr/llm-fighters/internal/game"
)

// ErrNotYourTurn is returned when ProcessTurn is called for a role other
// than the one the engine expects. It is a caller error, never a game
// violation.
var ErrNotYourTurn = errors.New("not this player's turn")

// Option customizes an Engine.
type Option func(*Engine)

// WithClock sets the timestamp source used for GameLog entries.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine owns the state of one battle. It is not safe for concurrent use;
// the caller serializes ProcessTurn calls.
type Engine struct {
	cfg        game.GameConfig
	state      game.GameState
	logs       []game.GameLog
	violations []game.ViolationLog
	tokens     []game.TokenLog
	now        func() time.Time
}

// New starts a fresh battle for cfg.
func New(cfg game.GameConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg.Clone(),
		logs:       []game.GameLog{},
		violations: []game.ViolationLog{},
		tokens:     []game.TokenLog{},
		now:        time.Now,
	}
	e.state = InitialState(e.cfg)
	for _, o := range opts {
		o(e)
	}
	return e
}

// Restore rebuilds an engine from persisted history and continues from
// the reconstructed state.
func Restore(cfg game.GameConfig, logs []game.GameLog, violations []game.ViolationLog, tokens []game.TokenLog, opts ...Option) *Engine {
	e := New(cfg, opts...)
	e.logs = game.CloneLogs(logs)
	e.violations = game.CloneViolations(violations)
	e.tokens = game.CloneTokens(tokens)
	e.state = Reconstruct(e.cfg, e.logs, e.violations)
	return e
}

// InitialState is the state both the engine and the reconstructor start
// from: full resources, every catalog cooldown at zero, p1 to act.
func InitialState(cfg game.GameConfig) game.GameState {
	player := func() game.PlayerState {
		cds := make(map[string]int, len(cfg.Skills))
		for id := range cfg.Skills {
			cds[id] = 0
		}
		return game.PlayerState{
			HP:        cfg.Player.InitialHP,
			MP:        cfg.Player.InitialMP,
			Cooldowns: cds,
		}
	}
	return game.GameState{
		Turn:          cfg.Game.InitialTurn,
		P1:            player(),
		P2:            player(),
		LastActions:   game.LastActions{P1: []string{}, P2: []string{}},
		CurrentPlayer: game.P1,
	}
}

// ProcessTurn applies one turn for actor. Rule violations are reported in
// the returned TurnResult; only caller misuse yields an error.
func (e *Engine) ProcessTurn(actor game.Role, calls []game.ToolCall) (game.TurnResult, error) {
	if actor != e.state.CurrentPlayer {
		return game.TurnResult{}, fmt.Errorf("%w: expected %s, got %s", ErrNotYourTurn, e.state.CurrentPlayer, actor)
	}

	timestamp := e.now()
	before := e.state.Clone()
	player := e.state.Player(actor)

	var (
		result   game.TurnResult
		resolved string
	)
	forced := player.PenaltyTurnsRemaining > 0
	switch {
	case forced:
		pushLastAction(&e.state, &e.cfg, actor, game.SkillSkipTurn)
		result = game.TurnResult{Success: true, SkillUsed: game.SkillSkipTurn}
	default:
		id, reason := resolveSkill(&e.cfg, player, calls)
		if reason != "" {
			penalty := e.cfg.Game.ViolationPenaltyTurns
			e.violations = append(e.violations, game.ViolationLog{
				Turn:         e.state.Turn,
				Player:       actor,
				Reason:       reason,
				PenaltyTurns: penalty,
			})
			player.PenaltyTurnsRemaining += penalty
			result = game.TurnResult{Success: false, Violation: reason}
			break
		}
		dmg, heal := ApplyResolvedSkill(&e.state, &e.cfg, actor, id, nil)
		resolved = id
		result = game.TurnResult{Success: true, SkillUsed: id, DamageDealt: dmg, HealingDone: heal}
	}

	endOfTurn(&e.state, &e.cfg, actor, resolved, forced)

	e.logs = append(e.logs, game.GameLog{
		Turn:      before.Turn,
		Timestamp: timestamp,
		Player:    actor,
		State:     before,
		ToolCalls: copyCalls(calls),
		Result:    result,
	})

	advance(&e.state, actor)
	return result, nil
}

// RecordTokenUsage appends a usage entry. The engine does not interpret it.
func (e *Engine) RecordTokenUsage(turn int, player game.Role, totalTokens int) {
	e.tokens = append(e.tokens, game.TokenLog{Turn: turn, Player: player, TotalTokens: totalTokens})
}

func (e *Engine) GameState() game.GameState { return e.state.Clone() }

func (e *Engine) Config() game.GameConfig { return e.cfg.Clone() }

func (e *Engine) CurrentPlayer() game.Role { return e.state.CurrentPlayer }

// IsGameOver reports whether either fighter has been eliminated.
func (e *Engine) IsGameOver() bool { return isOver(&e.state) }

// Winner returns the surviving fighter, or WinnerNone while both stand.
// Draws are decided by the runner, not the engine.
func (e *Engine) Winner() game.Winner {
	switch {
	case e.state.P1.HP <= 0:
		return game.WinnerP2
	case e.state.P2.HP <= 0:
		return game.WinnerP1
	}
	return game.WinnerNone
}

func (e *Engine) Logs() []game.GameLog { return game.CloneLogs(e.logs) }

func (e *Engine) ViolationLogs() []game.ViolationLog { return game.CloneViolations(e.violations) }

func (e *Engine) TokenLogs() []game.TokenLog { return game.CloneTokens(e.tokens) }

func copyCalls(calls []game.ToolCall) []game.ToolCall {
	out := make([]game.ToolCall, len(calls))
	copy(out, calls)
	return out
}
