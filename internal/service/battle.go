package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ericogr/llm-fighters/internal/agent"
	"github.com/ericogr/llm-fighters/internal/config"
	"github.com/ericogr/llm-fighters/internal/constants"
	"github.com/ericogr/llm-fighters/internal/dedupe"
	"github.com/ericogr/llm-fighters/internal/game"
	"github.com/ericogr/llm-fighters/internal/logging"
	"github.com/ericogr/llm-fighters/internal/runner"
	"github.com/ericogr/llm-fighters/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrBattleFinished = errors.New("battle already finished")
	ErrNotResumable   = errors.New("battle has no progress to resume")
	ErrInvalidAgent   = errors.New("invalid agent configuration")
)

// BattleRepo is the part of storage.Repository the battle lifecycle needs.
type BattleRepo interface {
	CreateBattle(ctx context.Context, rec *game.BattleRecord) error
	GetBattle(ctx context.Context, id string) (*game.BattleRecord, error)
	SaveResult(ctx context.Context, id string, res game.BattleResult) error
}

// ProviderFactory builds the action provider of one fighter.
type ProviderFactory func(ctx context.Context, cfg game.AgentConfig, gc game.GameConfig) (runner.ActionProvider, error)

// RunOptions tune how battles are driven.
type RunOptions struct {
	MaxTurns    int
	Observer    runner.Observer
	NewProvider ProviderFactory
}

// CreateBattleInput describes a new battle.
type CreateBattleInput struct {
	Game    game.GameConfig
	P1      game.AgentConfig
	P2      game.AgentConfig
	Public  bool
	OwnerID string
}

// BattleOutcome is what running a battle produced. AbortErr is set when a
// provider failure stopped the battle early; Err is set when the battle
// could not be run or persisted.
type BattleOutcome struct {
	ID       string
	Result   game.BattleResult
	AbortErr error
	Err      error
}

// CreateBattle validates the input and stores a fresh battle with empty
// history and no winner.
func CreateBattle(ctx context.Context, repo BattleRepo, in CreateBattleInput) (*game.BattleRecord, error) {
	gc := in.Game.Clone()
	if len(gc.Skills) == 0 {
		gc = config.DefaultGameConfig()
	}
	if err := config.ValidateGameConfig(&gc); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	for _, a := range []game.AgentConfig{in.P1, in.P2} {
		if a.Name == "" {
			return nil, fmt.Errorf("%w: agent name is required", ErrInvalidAgent)
		}
	}

	rec := &game.BattleRecord{
		ID:      uuid.NewString(),
		Public:  in.Public,
		OwnerID: in.OwnerID,
	}
	rec.Apply(game.BattleResult{
		GameConfig:    gc,
		Logs:          []game.GameLog{},
		ViolationLogs: []game.ViolationLog{},
		TokenLogs:     []game.TokenLog{},
		P1Config:      in.P1,
		P2Config:      in.P2,
	})
	rec.ConfigVersion = config.Version(gc)
	if err := repo.CreateBattle(ctx, rec); err != nil {
		return nil, err
	}
	logging.Info("battle created", logging.Fields{
		constants.LogFieldBattleID: rec.ID,
		"p1":                       in.P1.Name,
		"p2":                       in.P2.Name,
		"config_version":           rec.ConfigVersion,
	})
	return rec, nil
}

// RunBattle drives the stored battle id from its last checkpoint until it
// ends. Concurrent calls for the same id share a single run.
func RunBattle(ctx context.Context, repo BattleRepo, id string, opts RunOptions) (*BattleOutcome, error) {
	v, err, shared := dedupe.BattleGroup.Do(id, func() (interface{}, error) {
		return runBattle(ctx, repo, id, opts)
	})
	if shared {
		logging.Debug("joined battle already running", logging.Fields{constants.LogFieldBattleID: id})
	}
	if err != nil {
		return nil, err
	}
	return v.(*BattleOutcome), nil
}

// ResumeBattle continues a battle that was interrupted after at least one
// turn.
func ResumeBattle(ctx context.Context, repo BattleRepo, id string, opts RunOptions) (*BattleOutcome, error) {
	rec, err := repo.GetBattle(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Winner != game.WinnerNone {
		return nil, ErrBattleFinished
	}
	if len(rec.Logs) == 0 {
		return nil, ErrNotResumable
	}
	return RunBattle(ctx, repo, id, opts)
}

func runBattle(ctx context.Context, repo BattleRepo, id string, opts RunOptions) (*BattleOutcome, error) {
	rec, err := repo.GetBattle(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Winner != game.WinnerNone {
		return nil, ErrBattleFinished
	}
	checkpoint := rec.Result()

	factory := opts.NewProvider
	if factory == nil {
		factory = defaultProvider
	}
	p1, err := factory(ctx, checkpoint.P1Config, checkpoint.GameConfig)
	if err != nil {
		return nil, fmt.Errorf("p1 agent: %w", err)
	}
	defer closeProvider(p1)
	p2, err := factory(ctx, checkpoint.P2Config, checkpoint.GameConfig)
	if err != nil {
		return nil, fmt.Errorf("p2 agent: %w", err)
	}
	defer closeProvider(p2)

	r := runner.New(checkpoint, p1, p2,
		runner.WithMaxTurns(opts.MaxTurns),
		runner.WithSink(storage.BattleSink(repo, id)),
		runner.WithObserver(opts.Observer),
		runner.WithBattleID(id),
	)
	logging.Info("battle running", logging.Fields{constants.LogFieldBattleID: id, "logged_turns": len(checkpoint.Logs)})
	if err := r.Run(ctx); err != nil {
		return nil, err
	}
	return &BattleOutcome{ID: id, Result: r.Result(), AbortErr: r.AbortErr()}, nil
}

func defaultProvider(ctx context.Context, cfg game.AgentConfig, gc game.GameConfig) (runner.ActionProvider, error) {
	a, err := agent.New(ctx, cfg, gc)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func closeProvider(p runner.ActionProvider) {
	if c, ok := p.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logging.Warn("failed to close agent", logging.Fields{constants.LogFieldAgent: p.Config().Name, "error": err.Error()})
		}
	}
}
