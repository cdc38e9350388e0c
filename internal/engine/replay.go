package engine

import (
	"github.com/ericogr/llm-fighters/internal/game"
)

type violationKey struct {
	turn   int
	player game.Role
}

// Reconstruct rebuilds the state after the last entry of logs without
// re-validating anything: logged outcomes are applied as recorded.
// Replaying a prefix of logs yields the state as of that prefix.
func Reconstruct(cfg game.GameConfig, logs []game.GameLog, violations []game.ViolationLog) game.GameState {
	state := InitialState(cfg)

	penalties := make(map[violationKey]int, len(violations))
	for _, v := range violations {
		k := violationKey{v.Turn, v.Player}
		if _, seen := penalties[k]; !seen {
			penalties[k] = v.PenaltyTurns
		}
	}

	for i := range logs {
		applyLog(&state, &cfg, &logs[i], penalties)
	}

	if len(logs) == 0 {
		return state
	}
	last := logs[len(logs)-1]
	state.Turn = last.Turn
	if isOver(&state) {
		state.CurrentPlayer = last.Player
	} else if last.Player == game.P2 {
		state.Turn++
	}
	return state
}

func applyLog(state *game.GameState, cfg *game.GameConfig, log *game.GameLog, penalties map[violationKey]int) {
	actor := log.Player
	p := state.Player(actor)
	forced := p.PenaltyTurnsRemaining > 0

	var resolved string
	res := log.Result
	if res.Success && res.SkillUsed != "" {
		switch {
		case forced:
			pushLastAction(state, cfg, actor, res.SkillUsed)
		default:
			if _, ok := cfg.Skills[res.SkillUsed]; ok {
				ApplyResolvedSkill(state, cfg, actor, res.SkillUsed, &res)
				resolved = res.SkillUsed
			}
		}
	}

	if pen, ok := penalties[violationKey{log.Turn, actor}]; ok && !res.Success {
		p.PenaltyTurnsRemaining += pen
	}

	endOfTurn(state, cfg, actor, resolved, forced)
	advance(state, actor)
}
