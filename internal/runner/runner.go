package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ericogr/llm-fighters/internal/constants"
	"github.com/ericogr/llm-fighters/internal/engine"
	"github.com/ericogr/llm-fighters/internal/game"
	"github.com/ericogr/llm-fighters/internal/logging"
)

// ErrPersist wraps failures of the result sink. A battle whose state cannot
// be saved stops immediately.
var ErrPersist = errors.New("persist battle result")

// ActionProvider produces the moves of one fighter.
type ActionProvider interface {
	MakeMove(ctx context.Context, state game.GameState, role game.Role) (game.Move, error)
	Config() game.AgentConfig
}

// ResultSink durably stores battle snapshots.
type ResultSink interface {
	SaveResult(ctx context.Context, result game.BattleResult) error
}

// SinkFunc adapts a function to ResultSink.
type SinkFunc func(ctx context.Context, result game.BattleResult) error

func (f SinkFunc) SaveResult(ctx context.Context, result game.BattleResult) error {
	return f(ctx, result)
}

// Observer receives battle events, e.g. for metrics.
type Observer interface {
	TurnProcessed(role game.Role, result game.TurnResult, tokens int)
	ProviderFailed(role game.Role, err error)
	BattleFinished(winner game.Winner)
}

type nopObserver struct{}

func (nopObserver) TurnProcessed(game.Role, game.TurnResult, int) {}
func (nopObserver) ProviderFailed(game.Role, error)               {}
func (nopObserver) BattleFinished(game.Winner)                    {}

type Option func(*Runner)

// WithMaxTurns caps the number of completed rounds. Values <= 0 keep the
// default.
func WithMaxTurns(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxTurns = n
		}
	}
}

func WithSink(s ResultSink) Option {
	return func(r *Runner) { r.sink = s }
}

func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observer = o
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithBattleID tags log lines with the battle identifier.
func WithBattleID(id string) Option {
	return func(r *Runner) { r.battleID = id }
}

// Runner drives one battle between two providers. A Runner is used by a
// single goroutine.
type Runner struct {
	engine    *engine.Engine
	providers map[game.Role]ActionProvider
	maxTurns  int
	sink      ResultSink
	observer  Observer
	now       func() time.Time
	battleID  string

	result   game.BattleResult
	abortErr error
}

// New builds a runner that continues the battle stored in checkpoint. A
// fresh checkpoint (no logs) starts a new battle.
func New(checkpoint game.BattleResult, p1, p2 ActionProvider, opts ...Option) *Runner {
	r := &Runner{
		providers: map[game.Role]ActionProvider{game.P1: p1, game.P2: p2},
		maxTurns:  constants.DefaultMaxTurns,
		observer:  nopObserver{},
		result:    checkpoint.Clone(),
	}
	for _, o := range opts {
		o(r)
	}
	var engOpts []engine.Option
	if r.now != nil {
		engOpts = append(engOpts, engine.WithClock(r.now))
	}
	r.engine = engine.Restore(checkpoint.GameConfig, checkpoint.Logs, checkpoint.ViolationLogs, checkpoint.TokenLogs, engOpts...)
	return r
}

// Run plays turns until a fighter is eliminated, the round cap is reached
// or a provider fails. Provider failures end the battle early without an
// error; see AbortErr. Sink failures are returned wrapped in ErrPersist.
func (r *Runner) Run(ctx context.Context) error {
	for !r.engine.IsGameOver() && r.roundsPlayed() < r.maxTurns {
		state := r.engine.GameState()
		role := state.CurrentPlayer

		move, err := r.providers[role].MakeMove(ctx, state, role)
		if err != nil {
			r.abortErr = fmt.Errorf("%s provider: %w", role, err)
			r.observer.ProviderFailed(role, err)
			logging.Error("provider failed, stopping battle", err, r.fields(state.Turn, role))
			break
		}

		r.engine.RecordTokenUsage(state.Turn, role, move.TotalTokens)
		res, err := r.engine.ProcessTurn(role, move.Calls)
		if err != nil {
			return err
		}
		r.observer.TurnProcessed(role, res, move.TotalTokens)
		r.logTurn(state.Turn, role, res, move.TotalTokens)

		// a turn the engine applied is persisted even if ctx was cancelled
		// while the provider was answering
		if err := r.save(context.WithoutCancel(ctx), r.engine.Winner()); err != nil {
			return err
		}
	}

	winner := r.finalWinner()
	if err := r.save(context.WithoutCancel(ctx), winner); err != nil {
		return err
	}
	r.observer.BattleFinished(winner)
	f := r.fields(r.engine.GameState().Turn, "")
	f[constants.LogFieldWinner] = string(winner)
	logging.Info("battle finished", f)
	return nil
}

// Result returns the last snapshot handed to the sink, or the checkpoint if
// no turn was played yet.
func (r *Runner) Result() game.BattleResult { return r.result.Clone() }

// AbortErr returns the provider failure that ended the battle early, if any.
func (r *Runner) AbortErr() error { return r.abortErr }

func (r *Runner) roundsPlayed() int {
	return r.engine.GameState().Turn - r.engine.Config().Game.InitialTurn
}

func (r *Runner) finalWinner() game.Winner {
	if w := r.engine.Winner(); w != game.WinnerNone {
		return w
	}
	if r.roundsPlayed() >= r.maxTurns {
		return game.WinnerDraw
	}
	return game.WinnerNone
}

func (r *Runner) snapshot(winner game.Winner) game.BattleResult {
	return game.BattleResult{
		Winner:        winner,
		GameConfig:    r.engine.Config(),
		Logs:          r.engine.Logs(),
		ViolationLogs: r.engine.ViolationLogs(),
		TokenLogs:     r.engine.TokenLogs(),
		P1Config:      r.providers[game.P1].Config(),
		P2Config:      r.providers[game.P2].Config(),
	}
}

func (r *Runner) save(ctx context.Context, winner game.Winner) error {
	r.result = r.snapshot(winner)
	if r.sink == nil {
		return nil
	}
	if err := r.sink.SaveResult(ctx, r.result.Clone()); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (r *Runner) fields(turn int, role game.Role) logging.Fields {
	f := logging.Fields{constants.LogFieldTurn: turn}
	if r.battleID != "" {
		f[constants.LogFieldBattleID] = r.battleID
	}
	if role != "" {
		f[constants.LogFieldPlayer] = string(role)
		f[constants.LogFieldAgent] = r.providers[role].Config().Name
	}
	return f
}

func (r *Runner) logTurn(turn int, role game.Role, res game.TurnResult, tokens int) {
	f := r.fields(turn, role)
	f[constants.LogFieldTokens] = tokens
	if !res.Success {
		f[constants.LogFieldViolation] = res.Violation
		logging.Info("turn violation", f)
		return
	}
	f[constants.LogFieldSkill] = res.SkillUsed
	logging.Debug("turn processed", f)
}
