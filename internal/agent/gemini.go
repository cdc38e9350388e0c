package agent

import (
	"context"
	"fmt"

	"github.com/ericogr/llm-fighters/internal/constants"
	"github.com/ericogr/llm-fighters/internal/game"
	"github.com/ericogr/llm-fighters/internal/keys"
	"github.com/ericogr/llm-fighters/internal/logging"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiNudge = "Call useSkill now with exactly one skill."

// GeminiAgent drives a Gemini model through function calling.
type GeminiAgent struct {
	cfg    game.AgentConfig
	game   game.GameConfig
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiAgent(ctx context.Context, cfg game.AgentConfig, gc game.GameConfig, apiKey string) (*GeminiAgent, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	name := cfg.Model
	if name == "" {
		name = constants.GeminiChatModel
	}
	model := client.GenerativeModel(name)
	model.SetTemperature(float32(temperature(cfg)))
	model.SetMaxOutputTokens(int32(maxTokens(cfg)))
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt(cfg))}}
	model.Tools = []*genai.Tool{geminiTools(keys.SkillIDs(gc.Skills))}

	return &GeminiAgent{cfg: cfg, game: gc.Clone(), client: client, model: model}, nil
}

func geminiTools(skills []string) *genai.Tool {
	return &genai.Tool{FunctionDeclarations: []*genai.FunctionDeclaration{
		{
			Name:        constants.AgentThinkingToolName,
			Description: constants.AgentThinkingToolDesc,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"content": {Type: genai.TypeString, Description: constants.AgentThinkingContentDesc},
				},
				Required: []string{"content"},
			},
		},
		{
			Name:        constants.AgentUseSkillToolName,
			Description: constants.AgentUseSkillToolDesc,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"skill": {Type: genai.TypeString, Enum: skills, Description: constants.AgentUseSkillSkillDesc},
				},
				Required: []string{"skill"},
			},
		},
	}}
}

func (a *GeminiAgent) Config() game.AgentConfig { return publicConfig(a.cfg) }

func (a *GeminiAgent) Close() error { return a.client.Close() }

// MakeMove follows the same round structure as the OpenAI agent.
func (a *GeminiAgent) MakeMove(ctx context.Context, state game.GameState, role game.Role) (game.Move, error) {
	prompt, err := buildPrompt(state, role, a.game)
	if err != nil {
		return game.Move{}, err
	}
	cs := a.model.StartChat()
	parts := []genai.Part{genai.Text(prompt)}

	var move game.Move
	for round := 0; round <= constants.AgentMaxThinkingRounds; round++ {
		resp, err := cs.SendMessage(ctx, parts...)
		if err != nil {
			return game.Move{}, err
		}
		if resp.UsageMetadata != nil {
			move.TotalTokens += int(resp.UsageMetadata.TotalTokenCount)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return game.Move{}, fmt.Errorf("no content returned from Gemini")
		}

		var calls []game.ToolCall
		parts = nil
		for _, p := range resp.Candidates[0].Content.Parts {
			fc, ok := p.(genai.FunctionCall)
			if !ok {
				continue
			}
			switch fc.Name {
			case constants.AgentThinkingToolName:
				content, _ := fc.Args["content"].(string)
				calls = append(calls, game.ToolCall{Type: game.ToolCallThinking, Content: content})
				parts = append(parts, genai.FunctionResponse{
					Name:     fc.Name,
					Response: map[string]any{"result": constants.AgentThinkingToolResult},
				})
			case constants.AgentUseSkillToolName:
				skill, _ := fc.Args["skill"].(string)
				calls = append(calls, game.ToolCall{Type: game.ToolCallUseSkill, Skill: skill})
			default:
				logging.Warn("agent called unknown tool", logging.Fields{constants.LogFieldAgent: a.cfg.Name, "tool": fc.Name})
			}
		}
		move.Calls = append(move.Calls, calls...)
		if hasSkill(calls) {
			return move, nil
		}
		if len(parts) == 0 {
			parts = append(parts, genai.Text(geminiNudge))
		}
	}
	logging.Warn("agent exceeded thinking rounds without a skill", logging.Fields{constants.LogFieldAgent: a.cfg.Name})
	return move, nil
}
