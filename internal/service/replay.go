package service

import (
	"errors"
	"fmt"

	"github.com/ericogr/llm-fighters/internal/engine"
	"github.com/ericogr/llm-fighters/internal/game"
)

var ErrStepOutOfRange = errors.New("replay step out of range")

// StateAt rebuilds the state of a battle after its first step logged turns.
// Step 0 is the initial state and len(res.Logs) the latest one.
func StateAt(res game.BattleResult, step int) (game.GameState, error) {
	if step < 0 || step > len(res.Logs) {
		return game.GameState{}, fmt.Errorf("%w: %d not in [0, %d]", ErrStepOutOfRange, step, len(res.Logs))
	}
	return engine.Reconstruct(res.GameConfig, res.Logs[:step], res.ViolationLogs), nil
}
