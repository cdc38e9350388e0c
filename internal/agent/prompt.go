package agent

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/ericogr/llm-fighters/internal/game"
	"github.com/ericogr/llm-fighters/internal/keys"
)

//go:embed prompts/system.txt
var defaultSystemPrompt string

//go:embed prompts/turn.tmpl
var turnPrompt string

var turnTemplate = template.Must(template.New("turn").Parse(turnPrompt))

type turnData struct {
	Turn              int
	Role              string
	You               game.PlayerState
	Opponent          game.PlayerState
	YourCooldowns     string
	OpponentCooldowns string
	YourActions       string
	OpponentActions   string
	History           int
	MaxHP             int
	MaxMP             int
	Regen             int
	Skills            []game.SkillDefinition
	YourTurn          bool
}

// systemPrompt returns the configured system prompt or the built-in one.
func systemPrompt(cfg game.AgentConfig) string {
	if s := strings.TrimSpace(cfg.SystemPrompt); s != "" {
		return s
	}
	return strings.TrimSpace(defaultSystemPrompt)
}

// buildPrompt renders the per-turn user message for role.
func buildPrompt(state game.GameState, role game.Role, gc game.GameConfig) (string, error) {
	skills := make([]game.SkillDefinition, 0, len(gc.Skills))
	for _, id := range keys.SkillIDs(gc.Skills) {
		s := gc.Skills[id]
		s.Name = id
		skills = append(skills, s)
	}
	you := *state.Player(role)
	opp := *state.Player(role.Opponent())
	data := turnData{
		Turn:              state.Turn,
		Role:              strings.ToUpper(string(role)),
		You:               you,
		Opponent:          opp,
		YourCooldowns:     formatCooldowns(you.Cooldowns),
		OpponentCooldowns: formatCooldowns(opp.Cooldowns),
		YourActions:       formatActions(state.LastActions.For(role)),
		OpponentActions:   formatActions(state.LastActions.For(role.Opponent())),
		History:           gc.Game.MaxLastActionsHistory,
		MaxHP:             gc.Player.MaxHP,
		MaxMP:             gc.Player.MaxMP,
		Regen:             gc.Player.MPRegenPerTurn,
		Skills:            skills,
		YourTurn:          state.CurrentPlayer == role,
	}
	var buf bytes.Buffer
	if err := turnTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatCooldowns(cds map[string]int) string {
	var parts []string
	for _, id := range keys.CooldownIDs(cds) {
		if cd := cds[id]; cd > 0 {
			parts = append(parts, fmt.Sprintf("%s(%d)", id, cd))
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, ", ")
}

func formatActions(actions []string) string {
	if len(actions) == 0 {
		return "None yet"
	}
	return strings.Join(actions, " → ")
}
