package engine

import (
	"fmt"

	"github.com/ericogr/llm-fighters/internal/constants"
	"github.com/ericogr/llm-fighters/internal/game"
)

// resolveSkill picks the single skill submitted in calls and checks it
// against the player's resources. It returns the skill id, or the reason of
// the first failed check.
func resolveSkill(cfg *game.GameConfig, p *game.PlayerState, calls []game.ToolCall) (string, string) {
	var uses []game.ToolCall
	for _, c := range calls {
		if c.Type == game.ToolCallUseSkill {
			uses = append(uses, c)
		}
	}
	switch {
	case len(uses) == 0:
		return "", constants.ViolationNoSkill
	case len(uses) > 1:
		return "", constants.ViolationMultipleSkills
	}

	id := uses[0].Skill
	if id == "" {
		return "", constants.ViolationSkillMissing
	}
	skill, ok := cfg.Skills[id]
	if !ok {
		return "", fmt.Sprintf(constants.ViolationUnknownSkill, id)
	}
	if p.MP < skill.MPCost {
		return "", fmt.Sprintf(constants.ViolationInsufficientMP, p.MP, skill.MPCost)
	}
	if cd := p.Cooldowns[id]; cd > 0 {
		return "", fmt.Sprintf(constants.ViolationCooldown, cd)
	}
	return id, ""
}
