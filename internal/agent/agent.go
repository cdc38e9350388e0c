package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ericogr/llm-fighters/internal/constants"
	"github.com/ericogr/llm-fighters/internal/game"
	"github.com/ericogr/llm-fighters/internal/logging"
)

// ErrMissingAPIKey is returned when an LLM-backed agent has no key.
var ErrMissingAPIKey = errors.New("missing api key")

// Agent produces one fighter's moves. It satisfies runner.ActionProvider.
type Agent interface {
	MakeMove(ctx context.Context, state game.GameState, role game.Role) (game.Move, error)
	// Config returns the agent settings without the API key.
	Config() game.AgentConfig
	Close() error
}

// New builds the agent selected by cfg.Provider. The game config is used to
// describe the available skills to the model.
func New(ctx context.Context, cfg game.AgentConfig, gc game.GameConfig) (Agent, error) {
	provider := strings.ToLower(cfg.Provider)
	var (
		a   Agent
		key string
		err error
	)
	switch provider {
	case constants.ProviderOpenAI:
		if key, err = resolveAPIKey(cfg, constants.EnvOpenAIAPIKey); err != nil {
			return nil, err
		}
		a = NewOpenAIAgent(cfg, gc, key)
	case constants.ProviderGemini:
		if key, err = resolveAPIKey(cfg, constants.EnvGeminiAPIKey); err != nil {
			return nil, err
		}
		if a, err = NewGeminiAgent(ctx, cfg, gc, key); err != nil {
			return nil, err
		}
	case constants.ProviderScripted, "":
		provider = constants.ProviderScripted
		a = NewScriptedAgent(cfg, gc)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
	logging.Debug("agent ready", logging.Fields{constants.LogFieldAgent: cfg.Name, constants.LogFieldProvider: provider})
	return a, nil
}

func resolveAPIKey(cfg game.AgentConfig, fallbackEnv string) (string, error) {
	if k := strings.TrimSpace(cfg.APIKey); k != "" {
		return k, nil
	}
	env := cfg.APIKeyEnv
	if env == "" {
		env = fallbackEnv
	}
	if k := strings.TrimSpace(os.Getenv(env)); k != "" {
		return k, nil
	}
	return "", fmt.Errorf("%w: %s not set for agent %s", ErrMissingAPIKey, env, cfg.Name)
}

// publicConfig strips the secret from cfg.
func publicConfig(cfg game.AgentConfig) game.AgentConfig {
	cfg.APIKey = ""
	return cfg
}

func temperature(cfg game.AgentConfig) float64 {
	if cfg.Temperature > 0 {
		return cfg.Temperature
	}
	return constants.AgentDefaultTemperature
}

func maxTokens(cfg game.AgentConfig) int {
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	return constants.AgentDefaultMaxTokens
}

func hasSkill(calls []game.ToolCall) bool {
	for _, c := range calls {
		if c.Type == game.ToolCallUseSkill {
			return true
		}
	}
	return false
}
