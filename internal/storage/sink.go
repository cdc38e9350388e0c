package storage

import (
	"context"

	"github.com/ericogr/llm-fighters/internal/game"
	"github.com/ericogr/llm-fighters/internal/runner"
)

// ResultSaver is satisfied by Repository.
type ResultSaver interface {
	SaveResult(ctx context.Context, id string, res game.BattleResult) error
}

// BattleSink persists every runner snapshot into the record with id.
func BattleSink(repo ResultSaver, id string) runner.ResultSink {
	return runner.SinkFunc(func(ctx context.Context, res game.BattleResult) error {
		return repo.SaveResult(ctx, id, res)
	})
}
