package config

import (
	"reflect"

	"github.com/ericogr/llm-fighters/internal/game"
)

// Skill identifiers of the built-in catalog.
const (
	SkillQuickStrike  = "quickStrike"
	SkillHeavyBlow    = "heavyBlow"
	SkillBarrier      = "barrier"
	SkillRejuvenate   = "rejuvenate"
	SkillUltimateNova = "ultimateNova"
	SkillSkipTurn     = game.SkillSkipTurn
)

const (
	VersionV1     = "v1"
	VersionCustom = "custom"
)

// DefaultGameConfig returns a fresh copy of the v1 rules and skill catalog.
func DefaultGameConfig() game.GameConfig {
	return game.GameConfig{
		Player: game.PlayerConfig{
			InitialHP:      600,
			MaxHP:          600,
			InitialMP:      120,
			MaxMP:          120,
			MPRegenPerTurn: 6,
		},
		Game: game.RulesConfig{
			InitialTurn:            1,
			MaxLastActionsHistory:  5,
			ViolationPenaltyTurns:  3,
			BarrierDamageReduction: 0.5,
		},
		Skills: map[string]game.SkillDefinition{
			SkillQuickStrike:  {Name: SkillQuickStrike, MPCost: 5, Cooldown: 1, Damage: 20},
			SkillHeavyBlow:    {Name: SkillHeavyBlow, MPCost: 15, Cooldown: 2, Damage: 45},
			SkillBarrier:      {Name: SkillBarrier, MPCost: 12, Cooldown: 3, Barrier: true},
			SkillRejuvenate:   {Name: SkillRejuvenate, MPCost: 18, Cooldown: 4, Heal: 40},
			SkillUltimateNova: {Name: SkillUltimateNova, MPCost: 40, Cooldown: 6, Damage: 140},
			SkillSkipTurn:     {Name: SkillSkipTurn},
		},
	}
}

// Version labels a game config: "v1" when it matches the built-in catalog
// exactly, "custom" otherwise.
func Version(cfg game.GameConfig) string {
	if reflect.DeepEqual(cfg, DefaultGameConfig()) {
		return VersionV1
	}
	return VersionCustom
}
