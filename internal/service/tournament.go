package service

import (
	"context"

	"github.com/ericogr/llm-fighters/internal/constants"
	"github.com/ericogr/llm-fighters/internal/logging"
	"golang.org/x/sync/errgroup"
)

// RunBattles drives several stored battles concurrently, at most limit at a
// time. Battles are independent: a failure in one is reported in its
// outcome and does not stop the others. Outcomes follow the order of ids.
func RunBattles(ctx context.Context, repo BattleRepo, ids []string, limit int, opts RunOptions) []BattleOutcome {
	if limit <= 0 {
		limit = constants.DefaultMaxConcurrentBattles
	}
	out := make([]BattleOutcome, len(ids))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			o, err := RunBattle(ctx, repo, id, opts)
			if err != nil {
				logging.Error("battle failed", err, logging.Fields{constants.LogFieldBattleID: id})
				out[i] = BattleOutcome{ID: id, Err: err}
				return nil
			}
			out[i] = *o
			return nil
		})
	}
	_ = g.Wait()
	return out
}
