package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ericogr/llm-fighters/internal/constants"
	"github.com/ericogr/llm-fighters/internal/game"
	"github.com/ericogr/llm-fighters/internal/keys"
	"gopkg.in/yaml.v3"
)

type rawConfig struct {
	Database             string                      `yaml:"database"`
	MetricsAddress       string                      `yaml:"metrics_address"`
	MaxTurns             int                         `yaml:"max_turns"`
	MaxConcurrentBattles int                         `yaml:"max_concurrent_battles"`
	Game                 *game.GameConfig            `yaml:"game"`
	Agents               map[string]game.AgentConfig `yaml:"agents"`
}

// LoadedConfig is the resolved runtime configuration.
type LoadedConfig struct {
	Game                 game.GameConfig
	DatabasePath         string
	MetricsAddress       string
	MaxTurns             int
	MaxConcurrentBattles int
	Agents               map[game.Role]game.AgentConfig
}

// Defaults returns the configuration used when no file is present.
func Defaults() *LoadedConfig {
	return &LoadedConfig{
		Game:                 DefaultGameConfig(),
		DatabasePath:         constants.DefaultDBPath,
		MaxTurns:             constants.DefaultMaxTurns,
		MaxConcurrentBattles: constants.DefaultMaxConcurrentBattles,
		Agents: map[game.Role]game.AgentConfig{
			game.P1: defaultAgent(game.P1),
			game.P2: defaultAgent(game.P2),
		},
	}
}

func defaultAgent(r game.Role) game.AgentConfig {
	return game.AgentConfig{
		Name:     "scripted-" + string(r),
		Provider: constants.ProviderScripted,
	}
}

// LoadConfig reads the YAML file at path. A missing file yields Defaults.
// BATTLE_DB overrides the database path in both cases.
func LoadConfig(path string) (*LoadedConfig, error) {
	var (
		cfg *LoadedConfig
		err error
	)
	b, readErr := os.ReadFile(path)
	switch {
	case readErr == nil:
		cfg, err = Parse(b, path)
		if err != nil {
			return nil, err
		}
	case errors.Is(readErr, os.ErrNotExist):
		cfg = Defaults()
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, readErr)
	}
	if db := strings.TrimSpace(os.Getenv(constants.EnvBattleDB)); db != "" {
		cfg.DatabasePath = db
	}
	return cfg, nil
}

// Parse decodes and validates a YAML document. path is only used in error
// messages.
func Parse(b []byte, path string) (*LoadedConfig, error) {
	var rc rawConfig
	if err := yaml.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	out := Defaults()
	if rc.Database != "" {
		out.DatabasePath = rc.Database
	}
	out.MetricsAddress = strings.TrimSpace(rc.MetricsAddress)
	if rc.MaxTurns < 0 {
		return nil, fmt.Errorf("config file %s: max_turns must not be negative", path)
	}
	if rc.MaxTurns > 0 {
		out.MaxTurns = rc.MaxTurns
	}
	if rc.MaxConcurrentBattles < 0 {
		return nil, fmt.Errorf("config file %s: max_concurrent_battles must not be negative", path)
	}
	if rc.MaxConcurrentBattles > 0 {
		out.MaxConcurrentBattles = rc.MaxConcurrentBattles
	}

	if rc.Game != nil {
		g := rc.Game.Clone()
		if err := ValidateGameConfig(&g); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		out.Game = g
	}

	for key, a := range rc.Agents {
		role := game.Role(strings.ToLower(strings.TrimSpace(key)))
		if !role.Valid() {
			return nil, fmt.Errorf("config file %s: unknown agent role '%s' (expected p1 or p2)", path, key)
		}
		a, err := normalizeAgent(a, role)
		if err != nil {
			return nil, fmt.Errorf("config file %s: agent %s: %w", path, role, err)
		}
		out.Agents[role] = a
	}
	return out, nil
}

func normalizeAgent(a game.AgentConfig, role game.Role) (game.AgentConfig, error) {
	a.Provider = strings.ToLower(strings.TrimSpace(a.Provider))
	if a.Provider == "" {
		a.Provider = constants.ProviderScripted
	}
	switch a.Provider {
	case constants.ProviderOpenAI:
		if a.APIKeyEnv == "" {
			a.APIKeyEnv = constants.EnvOpenAIAPIKey
		}
	case constants.ProviderGemini:
		if a.APIKeyEnv == "" {
			a.APIKeyEnv = constants.EnvGeminiAPIKey
		}
	case constants.ProviderScripted:
	default:
		return a, fmt.Errorf("unsupported provider '%s'", a.Provider)
	}
	if strings.TrimSpace(a.Name) == "" {
		a.Name = a.Provider + "-" + string(role)
	}
	if a.Temperature < 0 {
		return a, fmt.Errorf("temperature must not be negative")
	}
	if a.MaxTokens < 0 {
		return a, fmt.Errorf("max_tokens must not be negative")
	}
	return a, nil
}

// ValidateGameConfig checks the cross-field rules of a game config. Skill
// names left empty are filled from their catalog key. The catalog must hold
// a free skipTurn, the skill recorded for forced skips.
func ValidateGameConfig(cfg *game.GameConfig) error {
	p := cfg.Player
	if p.MaxHP <= 0 {
		return fmt.Errorf("player.max_hp must be positive")
	}
	if p.InitialHP <= 0 || p.InitialHP > p.MaxHP {
		return fmt.Errorf("player.initial_hp must be in (0, max_hp]")
	}
	if p.MaxMP < 0 || p.InitialMP < 0 || p.InitialMP > p.MaxMP {
		return fmt.Errorf("player.initial_mp must be in [0, max_mp]")
	}
	if p.MPRegenPerTurn < 0 {
		return fmt.Errorf("player.mp_regen_per_turn must not be negative")
	}

	r := cfg.Game
	if r.MaxLastActionsHistory < 1 {
		return fmt.Errorf("game.max_last_actions_history must be at least 1")
	}
	if r.ViolationPenaltyTurns < 0 {
		return fmt.Errorf("game.violation_penalty_turns must not be negative")
	}
	if r.BarrierDamageReduction < 0 || r.BarrierDamageReduction > 1 {
		return fmt.Errorf("game.barrier_damage_reduction must be within [0, 1]")
	}

	if len(cfg.Skills) == 0 {
		return fmt.Errorf("skills is empty")
	}
	for _, id := range keys.SkillIDs(cfg.Skills) {
		s := cfg.Skills[id]
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("skill with empty id")
		}
		if s.Name == "" {
			s.Name = id
		}
		if s.Name != id {
			return fmt.Errorf("skill '%s' has mismatched name '%s'", id, s.Name)
		}
		if s.MPCost < 0 || s.Cooldown < 0 || s.Damage < 0 || s.Heal < 0 {
			return fmt.Errorf("skill '%s' has negative values", id)
		}
		cfg.Skills[id] = s
	}
	skip, ok := cfg.Skills[SkillSkipTurn]
	if !ok {
		return fmt.Errorf("skills must include '%s'", SkillSkipTurn)
	}
	if skip.MPCost != 0 || skip.Cooldown != 0 {
		return fmt.Errorf("skill '%s' must have no mp_cost and no cooldown", SkillSkipTurn)
	}
	return nil
}
