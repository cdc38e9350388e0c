package engine

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ericogr/llm-fighters/internal/config"
	"github.com/ericogr/llm-fighters/internal/game"
)

func use(skill string) []game.ToolCall {
	return []game.ToolCall{
		{Type: game.ToolCallThinking, Content: "plan"},
		{Type: game.ToolCallUseSkill, Skill: skill},
	}
}

func mustTurn(t *testing.T, e *Engine, actor game.Role, calls []game.ToolCall) game.TurnResult {
	t.Helper()
	res, err := e.ProcessTurn(actor, calls)
	if err != nil {
		t.Fatalf("unexpected error for %s: %v", actor, err)
	}
	return res
}

func fixedClock() Option {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return WithClock(func() time.Time { return ts })
}

func TestProcessTurn_QuickStrike(t *testing.T) {
	e := New(config.DefaultGameConfig(), fixedClock())

	res := mustTurn(t, e, game.P1, use(config.SkillQuickStrike))
	if !res.Success || res.DamageDealt != 20 || res.SkillUsed != config.SkillQuickStrike {
		t.Fatalf("unexpected result: %+v", res)
	}
	s := e.GameState()
	if s.P2.HP != 580 {
		t.Fatalf("expected p2 HP 580, got %d", s.P2.HP)
	}
	if s.P1.MP != 120 {
		t.Fatalf("expected p1 MP clamped to 120, got %d", s.P1.MP)
	}
	if s.P1.Cooldowns[config.SkillQuickStrike] != 1 {
		t.Fatalf("expected quickStrike cooldown 1, got %d", s.P1.Cooldowns[config.SkillQuickStrike])
	}
	if s.Turn != 1 || s.CurrentPlayer != game.P2 {
		t.Fatalf("expected turn 1 waiting for p2, got turn %d player %s", s.Turn, s.CurrentPlayer)
	}

	mustTurn(t, e, game.P2, use(config.SkillQuickStrike))
	s = e.GameState()
	if s.Turn != 2 || s.CurrentPlayer != game.P1 {
		t.Fatalf("expected turn 2 waiting for p1, got turn %d player %s", s.Turn, s.CurrentPlayer)
	}
	if len(e.Logs()) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(e.Logs()))
	}
}

func TestProcessTurn_MPCostAndFreshCooldown(t *testing.T) {
	cfg := config.DefaultGameConfig()
	cfg.Player.MPRegenPerTurn = 0
	e := New(cfg)

	mustTurn(t, e, game.P1, use(config.SkillHeavyBlow))
	s := e.GameState()
	if s.P1.MP != 120-15 {
		t.Fatalf("expected MP %d, got %d", 120-15, s.P1.MP)
	}
	if s.P1.Cooldowns[config.SkillHeavyBlow] != 2 {
		t.Fatalf("expected cooldown 2, got %d", s.P1.Cooldowns[config.SkillHeavyBlow])
	}

	mustTurn(t, e, game.P2, use(config.SkillQuickStrike))
	res := mustTurn(t, e, game.P1, use(config.SkillHeavyBlow))
	if res.Success || res.Violation != "Skill on cooldown: 2 turns remaining" {
		t.Fatalf("expected cooldown violation, got %+v", res)
	}
	if got := e.GameState().P1.Cooldowns[config.SkillHeavyBlow]; got != 1 {
		t.Fatalf("expected cooldown to tick to 1, got %d", got)
	}
}

func TestProcessTurn_NoSkillViolation(t *testing.T) {
	e := New(config.DefaultGameConfig())
	before := e.GameState()

	res := mustTurn(t, e, game.P1, []game.ToolCall{{Type: game.ToolCallThinking, Content: "hmm"}})
	if res.Success || res.Violation != "No skill used" {
		t.Fatalf("unexpected result: %+v", res)
	}
	vl := e.ViolationLogs()
	want := []game.ViolationLog{{Turn: 1, Player: game.P1, Reason: "No skill used", PenaltyTurns: 3}}
	if !reflect.DeepEqual(vl, want) {
		t.Fatalf("unexpected violation logs: %+v", vl)
	}
	after := e.GameState()
	if after.P1.PenaltyTurnsRemaining != 3 {
		t.Fatalf("expected 3 penalty turns, got %d", after.P1.PenaltyTurnsRemaining)
	}
	if after.P1.HP != before.P1.HP || after.P1.MP != before.P1.MP || !reflect.DeepEqual(after.P1.Cooldowns, before.P1.Cooldowns) {
		t.Fatalf("violation changed p1 resources: %+v", after.P1)
	}
	if !reflect.DeepEqual(after.P2, before.P2) {
		t.Fatalf("violation changed p2: %+v", after.P2)
	}
	if len(after.LastActions.P1) != 0 {
		t.Fatalf("violation should not record a last action, got %v", after.LastActions.P1)
	}
}

func TestProcessTurn_Violations(t *testing.T) {
	lowMP := config.DefaultGameConfig()
	lowMP.Player.InitialMP = 10

	cases := []struct {
		name  string
		cfg   game.GameConfig
		calls []game.ToolCall
		want  string
	}{
		{"none", config.DefaultGameConfig(), nil, "No skill used"},
		{"multiple", config.DefaultGameConfig(), append(use(config.SkillBarrier), use(config.SkillQuickStrike)...), "Multiple skills used in one turn"},
		{"missing", config.DefaultGameConfig(), []game.ToolCall{{Type: game.ToolCallUseSkill}}, "Skill name missing"},
		{"unknown", config.DefaultGameConfig(), use("fireball"), "Unknown skill: fireball"},
		{"mp", lowMP, use(config.SkillUltimateNova), "Insufficient MP: 10 < 40"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := New(tc.cfg)
			res := mustTurn(t, e, game.P1, tc.calls)
			if res.Success || res.Violation != tc.want {
				t.Fatalf("expected violation %q, got %+v", tc.want, res)
			}
			if res.SkillUsed != "" || res.DamageDealt != 0 {
				t.Fatalf("violation should not resolve a skill: %+v", res)
			}
			if got := e.GameState().P1.PenaltyTurnsRemaining; got != tc.cfg.Game.ViolationPenaltyTurns {
				t.Fatalf("expected penalty %d, got %d", tc.cfg.Game.ViolationPenaltyTurns, got)
			}
		})
	}
}

func TestProcessTurn_PenaltyForcesSkip(t *testing.T) {
	e := New(config.DefaultGameConfig())
	mustTurn(t, e, game.P1, nil)
	mustTurn(t, e, game.P2, use(config.SkillQuickStrike))

	for i := 0; i < 3; i++ {
		res := mustTurn(t, e, game.P1, use(config.SkillUltimateNova))
		if !res.Success || res.SkillUsed != game.SkillSkipTurn || res.DamageDealt != 0 {
			t.Fatalf("round %d: expected forced skip, got %+v", i, res)
		}
		if got := e.GameState().P1.PenaltyTurnsRemaining; got != 2-i {
			t.Fatalf("round %d: expected %d penalty turns, got %d", i, 2-i, got)
		}
		mustTurn(t, e, game.P2, use(config.SkillSkipTurn))
	}
	if len(e.ViolationLogs()) != 1 {
		t.Fatalf("forced skips must not add violations, got %d", len(e.ViolationLogs()))
	}
	s := e.GameState()
	if s.P2.HP != 600 {
		t.Fatalf("skipped turns should not deal damage, p2 HP %d", s.P2.HP)
	}
	want := []string{game.SkillSkipTurn, game.SkillSkipTurn, game.SkillSkipTurn}
	if !reflect.DeepEqual(s.LastActions.P1, want) {
		t.Fatalf("unexpected p1 history: %v", s.LastActions.P1)
	}

	res := mustTurn(t, e, game.P1, use(config.SkillUltimateNova))
	if !res.Success || res.DamageDealt != 140 {
		t.Fatalf("expected normal turn after penalty, got %+v", res)
	}
}

func TestProcessTurn_BarrierHalvesDamage(t *testing.T) {
	e := New(config.DefaultGameConfig())
	mustTurn(t, e, game.P1, use(config.SkillBarrier))
	res := mustTurn(t, e, game.P2, use(config.SkillHeavyBlow))
	if res.DamageDealt != 22 {
		t.Fatalf("expected floor(45*0.5)=22, got %d", res.DamageDealt)
	}
	mustTurn(t, e, game.P1, use(config.SkillQuickStrike))
	res = mustTurn(t, e, game.P2, use(config.SkillQuickStrike))
	if res.DamageDealt != 20 {
		t.Fatalf("barrier should only cover the next hit, got %d", res.DamageDealt)
	}
	if hp := e.GameState().P1.HP; hp != 600-22-20 {
		t.Fatalf("unexpected p1 HP %d", hp)
	}
}

func TestProcessTurn_HealCappedAtMax(t *testing.T) {
	e := New(config.DefaultGameConfig())
	mustTurn(t, e, game.P1, use(config.SkillQuickStrike))
	mustTurn(t, e, game.P2, use(config.SkillQuickStrike))
	res := mustTurn(t, e, game.P1, use(config.SkillRejuvenate))
	if res.HealingDone != 20 {
		t.Fatalf("expected heal capped at 20, got %d", res.HealingDone)
	}
	if hp := e.GameState().P1.HP; hp != 600 {
		t.Fatalf("expected full HP, got %d", hp)
	}
}

func TestProcessTurn_EliminationAndWinner(t *testing.T) {
	cfg := config.DefaultGameConfig()
	cfg.Player.InitialHP = 100
	cfg.Player.MaxHP = 100
	e := New(cfg)

	if e.IsGameOver() || e.Winner() != game.WinnerNone {
		t.Fatalf("fresh battle should be running")
	}
	res := mustTurn(t, e, game.P1, use(config.SkillUltimateNova))
	if res.DamageDealt != 100 {
		t.Fatalf("damage must be capped at target HP, got %d", res.DamageDealt)
	}
	s := e.GameState()
	if s.P2.HP != 0 || s.P1.HP != 100 {
		t.Fatalf("unexpected HP p1=%d p2=%d", s.P1.HP, s.P2.HP)
	}
	if !e.IsGameOver() || e.Winner() != game.WinnerP1 {
		t.Fatalf("expected p1 to win, got %q", e.Winner())
	}
	if s.CurrentPlayer != game.P1 || s.Turn != 1 {
		t.Fatalf("turn order should freeze at game end, got %s turn %d", s.CurrentPlayer, s.Turn)
	}
}

func TestProcessTurn_WrongPlayer(t *testing.T) {
	e := New(config.DefaultGameConfig())
	_, err := e.ProcessTurn(game.P2, use(config.SkillQuickStrike))
	if !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if len(e.Logs()) != 0 || len(e.ViolationLogs()) != 0 {
		t.Fatalf("caller misuse must not be logged")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	e := New(config.DefaultGameConfig())
	mustTurn(t, e, game.P1, use(config.SkillQuickStrike))

	s := e.GameState()
	s.P1.Cooldowns[config.SkillQuickStrike] = 99
	s.LastActions.P1[0] = "tampered"
	cfg := e.Config()
	cfg.Skills[config.SkillQuickStrike] = game.SkillDefinition{}
	logs := e.Logs()
	logs[0].State.P2.HP = -1

	fresh := e.GameState()
	if fresh.P1.Cooldowns[config.SkillQuickStrike] != 1 || fresh.LastActions.P1[0] != config.SkillQuickStrike {
		t.Fatalf("engine state was mutated through a snapshot")
	}
	if e.Config().Skills[config.SkillQuickStrike].Damage != 20 {
		t.Fatalf("engine config was mutated through a snapshot")
	}
	if e.Logs()[0].State.P2.HP != 600 {
		t.Fatalf("engine logs were mutated through a snapshot")
	}
}

func TestLogRecordsPreTurnState(t *testing.T) {
	e := New(config.DefaultGameConfig(), fixedClock())
	initial := e.GameState()
	calls := use(config.SkillHeavyBlow)
	mustTurn(t, e, game.P1, calls)

	l := e.Logs()[0]
	if !reflect.DeepEqual(l.State, initial) {
		t.Fatalf("log should hold the pre-turn state")
	}
	if !reflect.DeepEqual(l.ToolCalls, calls) || l.Turn != 1 || l.Player != game.P1 {
		t.Fatalf("unexpected log: %+v", l)
	}
	if !l.Timestamp.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected injected clock, got %v", l.Timestamp)
	}
}

func TestRecordTokenUsage(t *testing.T) {
	e := New(config.DefaultGameConfig())
	e.RecordTokenUsage(1, game.P1, 321)
	want := []game.TokenLog{{Turn: 1, Player: game.P1, TotalTokens: 321}}
	if !reflect.DeepEqual(e.TokenLogs(), want) {
		t.Fatalf("unexpected token logs: %+v", e.TokenLogs())
	}
}
