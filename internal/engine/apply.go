package engine

import (
	"math"

	"github.com/ericogr/llm-fighters/internal/game"
)

// ApplyResolvedSkill applies the effects of a skill that already passed
// validation: MP cost, cooldown, damage or heal and the last-action push.
// When logged is non-nil its damage and heal values are applied as recorded
// instead of being recomputed. It returns the damage and heal applied.
func ApplyResolvedSkill(state *game.GameState, cfg *game.GameConfig, actor game.Role, skillID string, logged *game.TurnResult) (damage, heal int) {
	skill := cfg.Skills[skillID]
	p := state.Player(actor)
	target := state.Player(actor.Opponent())

	p.MP -= skill.MPCost
	if p.Cooldowns == nil {
		p.Cooldowns = map[string]int{}
	}
	p.Cooldowns[skillID] = skill.Cooldown

	switch {
	case skill.Damage > 0:
		if logged != nil {
			damage = logged.DamageDealt
		} else {
			damage = incomingDamage(state, cfg, actor.Opponent(), skill.Damage)
		}
		target.HP -= damage
	case skill.Heal > 0:
		if logged != nil {
			heal = logged.HealingDone
		} else {
			heal = min(skill.Heal, cfg.Player.MaxHP-p.HP)
			heal = max(heal, 0)
		}
		p.HP += heal
	}

	pushLastAction(state, cfg, actor, skillID)
	return damage, heal
}

// incomingDamage is raw reduced by the barrier fraction when the target's
// latest resolved action was a barrier skill, capped at the target's HP.
func incomingDamage(state *game.GameState, cfg *game.GameConfig, target game.Role, raw int) int {
	dmg := raw
	if hasBarrier(state, cfg, target) {
		dmg = int(math.Floor(float64(dmg) * cfg.Game.BarrierDamageReduction))
	}
	hp := state.Player(target).HP
	dmg = min(dmg, hp)
	return max(dmg, 0)
}

func hasBarrier(state *game.GameState, cfg *game.GameConfig, r game.Role) bool {
	last := state.LastActions.Latest(r)
	if last == "" {
		return false
	}
	return cfg.Skills[last].Barrier
}

// pushLastAction records id as the most recent action of r, keeping at most
// MaxLastActionsHistory entries.
func pushLastAction(state *game.GameState, cfg *game.GameConfig, r game.Role, id string) {
	h := append([]string{id}, state.LastActions.For(r)...)
	if limit := cfg.Game.MaxLastActionsHistory; limit >= 0 && len(h) > limit {
		h = h[:limit]
	}
	if r == game.P1 {
		state.LastActions.P1 = h
	} else {
		state.LastActions.P2 = h
	}
}

// endOfTurn regenerates MP and ticks cooldowns for the actor. The skill
// resolved this turn keeps its fresh cooldown, and a penalty turn is only
// consumed by a forced skip: the turn that earns a penalty does not tick it,
// so a violation leaves the full ViolationPenaltyTurns and is followed by
// exactly that many forced skips.
func endOfTurn(state *game.GameState, cfg *game.GameConfig, actor game.Role, resolved string, forced bool) {
	p := state.Player(actor)
	p.MP = min(p.MP+cfg.Player.MPRegenPerTurn, cfg.Player.MaxMP)
	for id, cd := range p.Cooldowns {
		if cd > 0 && id != resolved {
			p.Cooldowns[id] = cd - 1
		}
	}
	if forced && p.PenaltyTurnsRemaining > 0 {
		p.PenaltyTurnsRemaining--
	}
}

func isOver(state *game.GameState) bool {
	return state.P1.HP <= 0 || state.P2.HP <= 0
}

// advance hands the turn to the next player. Turn order freezes once a
// fighter is eliminated.
func advance(state *game.GameState, actor game.Role) {
	if isOver(state) {
		return
	}
	if actor == game.P1 {
		state.CurrentPlayer = game.P2
		return
	}
	state.CurrentPlayer = game.P1
	state.Turn++
}
