package agent

import (
	"context"

	"github.com/ericogr/llm-fighters/internal/game"
	"github.com/ericogr/llm-fighters/internal/keys"
)

// healThreshold is the HP fraction under which the scripted agent heals.
const healThreshold = 0.4

// ScriptedAgent is a deterministic rule-based fighter used for local runs
// and tests. It never breaks the rules when a legal move exists.
type ScriptedAgent struct {
	cfg  game.AgentConfig
	game game.GameConfig
	ids  []string
}

func NewScriptedAgent(cfg game.AgentConfig, gc game.GameConfig) *ScriptedAgent {
	return &ScriptedAgent{cfg: cfg, game: gc.Clone(), ids: keys.SkillIDs(gc.Skills)}
}

func (a *ScriptedAgent) Config() game.AgentConfig { return publicConfig(a.cfg) }

func (a *ScriptedAgent) Close() error { return nil }

func (a *ScriptedAgent) MakeMove(ctx context.Context, state game.GameState, role game.Role) (game.Move, error) {
	if err := ctx.Err(); err != nil {
		return game.Move{}, err
	}
	skill := a.decide(state, role)
	return game.Move{Calls: []game.ToolCall{
		{Type: game.ToolCallThinking, Content: "rule: " + skill},
		{Type: game.ToolCallUseSkill, Skill: skill},
	}}, nil
}

// decide picks, in order: a heal when low, the strongest usable attack, a
// barrier, then any usable skill.
func (a *ScriptedAgent) decide(state game.GameState, role game.Role) string {
	me := state.Player(role)
	usable := func(id string) bool {
		s := a.game.Skills[id]
		return me.MP >= s.MPCost && me.Cooldowns[id] == 0
	}

	if float64(me.HP) < healThreshold*float64(a.game.Player.MaxHP) {
		if id := a.best(usable, func(s game.SkillDefinition) int { return s.Heal }); id != "" {
			return id
		}
	}
	if id := a.best(usable, func(s game.SkillDefinition) int { return s.Damage }); id != "" {
		return id
	}
	for _, id := range a.ids {
		if a.game.Skills[id].Barrier && usable(id) {
			return id
		}
	}
	for _, id := range a.ids {
		if usable(id) {
			return id
		}
	}
	return game.SkillSkipTurn
}

// best returns the usable skill with the highest positive score.
func (a *ScriptedAgent) best(usable func(string) bool, score func(game.SkillDefinition) int) string {
	var (
		pick string
		top  int
	)
	for _, id := range a.ids {
		if v := score(a.game.Skills[id]); v > top && usable(id) {
			pick, top = id, v
		}
	}
	return pick
}
