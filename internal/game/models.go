package game

import (
	"encoding/json"
	"time"
)

// Role identifies one of the two fighters in a battle.
type Role string

const (
	P1 Role = "p1"
	P2 Role = "p2"
)

// Opponent returns the other fighter.
func (r Role) Opponent() Role {
	if r == P1 {
		return P2
	}
	return P1
}

// Valid reports whether r is p1 or p2.
func (r Role) Valid() bool { return r == P1 || r == P2 }

// Winner is the terminal outcome of a battle. The zero value means the
// battle is still in progress and is encoded as JSON null.
type Winner string

const (
	WinnerNone Winner = ""
	WinnerP1   Winner = "p1"
	WinnerP2   Winner = "p2"
	WinnerDraw Winner = "draw"
)

// WinnerFor converts the eliminating role into a Winner.
func WinnerFor(r Role) Winner {
	if r == P1 {
		return WinnerP1
	}
	return WinnerP2
}

func (w Winner) MarshalJSON() ([]byte, error) {
	if w == WinnerNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(w))
}

func (w *Winner) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*w = WinnerNone
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*w = Winner(s)
	return nil
}

// SkillSkipTurn is the skill recorded when a penalized player is forced
// to pass.
const SkillSkipTurn = "skipTurn"

// SkillDefinition describes one entry of the skill catalog. Damage takes
// precedence over Heal when both are set; Barrier is passive and only read
// when the opponent computes damage.
type SkillDefinition struct {
	Name     string `json:"name" yaml:"name"`
	MPCost   int    `json:"mp_cost" yaml:"mp_cost"`
	Cooldown int    `json:"cooldown" yaml:"cooldown"`
	Damage   int    `json:"damage,omitempty" yaml:"damage,omitempty"`
	Heal     int    `json:"heal,omitempty" yaml:"heal,omitempty"`
	Barrier  bool   `json:"barrier,omitempty" yaml:"barrier,omitempty"`
}

// PlayerConfig holds the resource baselines shared by both fighters.
type PlayerConfig struct {
	InitialHP      int `json:"initial_hp" yaml:"initial_hp"`
	MaxHP          int `json:"max_hp" yaml:"max_hp"`
	InitialMP      int `json:"initial_mp" yaml:"initial_mp"`
	MaxMP          int `json:"max_mp" yaml:"max_mp"`
	MPRegenPerTurn int `json:"mp_regen_per_turn" yaml:"mp_regen_per_turn"`
}

// RulesConfig holds the game-wide rules.
type RulesConfig struct {
	InitialTurn            int     `json:"initial_turn" yaml:"initial_turn"`
	MaxLastActionsHistory  int     `json:"max_last_actions_history" yaml:"max_last_actions_history"`
	ViolationPenaltyTurns  int     `json:"violation_penalty_turns" yaml:"violation_penalty_turns"`
	BarrierDamageReduction float64 `json:"barrier_damage_reduction" yaml:"barrier_damage_reduction"`
}

// GameConfig is created once per battle and never mutated afterwards.
type GameConfig struct {
	Player PlayerConfig               `json:"player" yaml:"player"`
	Game   RulesConfig                `json:"game" yaml:"game"`
	Skills map[string]SkillDefinition `json:"skills" yaml:"skills"`
}

// PlayerState is the mutable per-fighter record.
type PlayerState struct {
	HP                    int            `json:"hp"`
	MP                    int            `json:"mp"`
	Cooldowns             map[string]int `json:"cooldowns"`
	PenaltyTurnsRemaining int            `json:"penalty_turns_remaining"`
}

// LastActions keeps the most recent resolved skills per fighter, most
// recent first.
type LastActions struct {
	P1 []string `json:"p1"`
	P2 []string `json:"p2"`
}

// For returns the history of the given role.
func (la LastActions) For(r Role) []string {
	if r == P1 {
		return la.P1
	}
	return la.P2
}

// Latest returns the most recent skill of r or "" when none was resolved.
func (la LastActions) Latest(r Role) string {
	h := la.For(r)
	if len(h) == 0 {
		return ""
	}
	return h[0]
}

// GameState is the global snapshot of a battle.
type GameState struct {
	Turn          int         `json:"turn"`
	P1            PlayerState `json:"p1"`
	P2            PlayerState `json:"p2"`
	LastActions   LastActions `json:"last_actions"`
	CurrentPlayer Role        `json:"current_player"`
}

// Player returns a pointer to the state of r inside s.
func (s *GameState) Player(r Role) *PlayerState {
	if r == P1 {
		return &s.P1
	}
	return &s.P2
}

// ToolCallType is the kind of action an agent submits.
type ToolCallType string

const (
	ToolCallThinking ToolCallType = "thinking"
	ToolCallUseSkill ToolCallType = "useSkill"
)

// ToolCall is one raw action submission from an agent.
type ToolCall struct {
	Type    ToolCallType `json:"type"`
	Content string       `json:"content,omitempty"`
	Skill   string       `json:"skill,omitempty"`
}

// TurnResult is the outcome of one turn attempt. Violation is set only
// when Success is false.
type TurnResult struct {
	Success     bool   `json:"success"`
	Violation   string `json:"violation,omitempty"`
	DamageDealt int    `json:"damage_dealt,omitempty"`
	HealingDone int    `json:"healing_done,omitempty"`
	SkillUsed   string `json:"skill_used,omitempty"`
}

// GameLog records one executed turn together with the state before it.
type GameLog struct {
	Turn      int        `json:"turn"`
	Timestamp time.Time  `json:"timestamp"`
	Player    Role       `json:"player"`
	State     GameState  `json:"state"`
	ToolCalls []ToolCall `json:"tool_calls"`
	Result    TurnResult `json:"result"`
}

// ViolationLog records a rule violation and the penalty it triggered.
type ViolationLog struct {
	Turn         int    `json:"turn"`
	Player       Role   `json:"player"`
	Reason       string `json:"reason"`
	PenaltyTurns int    `json:"penalty_turns"`
}

// TokenLog records resource usage reported by an agent for one turn.
type TokenLog struct {
	Turn        int  `json:"turn"`
	Player      Role `json:"player"`
	TotalTokens int  `json:"total_tokens"`
}

// AgentConfig describes how a fighter's actions are produced. The API key
// itself is never serialized; APIKeyEnv names the variable to read it from.
type AgentConfig struct {
	Name         string  `json:"name" yaml:"name"`
	Provider     string  `json:"provider" yaml:"provider"`
	BaseURL      string  `json:"base_url,omitempty" yaml:"base_url"`
	Model        string  `json:"model,omitempty" yaml:"model"`
	APIKeyEnv    string  `json:"api_key_env,omitempty" yaml:"api_key_env"`
	APIKey       string  `json:"-" yaml:"api_key"`
	SystemPrompt string  `json:"system_prompt,omitempty" yaml:"system_prompt"`
	Temperature  float64 `json:"temperature,omitempty" yaml:"temperature"`
	MaxTokens    int     `json:"max_tokens,omitempty" yaml:"max_tokens"`
}

// Move is what an action provider returns for one turn.
type Move struct {
	Calls       []ToolCall
	TotalTokens int
}

// BattleResult is the persisted aggregate of a battle and a valid input for
// rebuilding its state.
type BattleResult struct {
	Winner        Winner         `json:"winner"`
	GameConfig    GameConfig     `json:"game_config"`
	Logs          []GameLog      `json:"logs"`
	ViolationLogs []ViolationLog `json:"violation_logs"`
	TokenLogs     []TokenLog     `json:"token_logs"`
	P1Config      AgentConfig    `json:"p1_config"`
	P2Config      AgentConfig    `json:"p2_config"`
}

// Outcome values returned by OutcomeFor.
const (
	OutcomeWin  = "win"
	OutcomeLose = "lose"
	OutcomeDraw = "draw"
)

// OutcomeFor reports the result of the battle from r's point of view, or ""
// while it is still running.
func (b BattleResult) OutcomeFor(r Role) string {
	switch b.Winner {
	case WinnerNone:
		return ""
	case WinnerDraw:
		return OutcomeDraw
	case WinnerFor(r):
		return OutcomeWin
	default:
		return OutcomeLose
	}
}

// AgentFor returns the agent configuration of r.
func (b BattleResult) AgentFor(r Role) AgentConfig {
	if r == P1 {
		return b.P1Config
	}
	return b.P2Config
}
