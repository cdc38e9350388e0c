package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ericogr/llm-fighters/internal/constants"
	"github.com/ericogr/llm-fighters/internal/game"
	"github.com/ericogr/llm-fighters/internal/keys"
	"github.com/ericogr/llm-fighters/internal/logging"
)

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// OpenAIAgent talks to an OpenAI-compatible chat completions endpoint with
// the thinking and useSkill tools.
type OpenAIAgent struct {
	cfg    game.AgentConfig
	game   game.GameConfig
	apiKey string
	client *http.Client
	tools  []map[string]interface{}
}

func NewOpenAIAgent(cfg game.AgentConfig, gc game.GameConfig, apiKey string) *OpenAIAgent {
	return &OpenAIAgent{
		cfg:    cfg,
		game:   gc.Clone(),
		apiKey: apiKey,
		client: &http.Client{Timeout: constants.AgentRequestTimeoutSecs * time.Second},
		tools:  openAITools(keys.SkillIDs(gc.Skills)),
	}
}

func openAITools(skills []string) []map[string]interface{} {
	fn := func(name, desc string, params map[string]interface{}) map[string]interface{} {
		return map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name":        name,
				"description": desc,
				"parameters":  params,
			},
		}
	}
	return []map[string]interface{}{
		fn(constants.AgentThinkingToolName, constants.AgentThinkingToolDesc, map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"content": map[string]interface{}{"type": "string", "description": constants.AgentThinkingContentDesc},
			},
			"required": []string{"content"},
		}),
		fn(constants.AgentUseSkillToolName, constants.AgentUseSkillToolDesc, map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"skill": map[string]interface{}{"type": "string", "enum": skills, "description": constants.AgentUseSkillSkillDesc},
			},
			"required": []string{"skill"},
		}),
	}
}

func (a *OpenAIAgent) Config() game.AgentConfig { return publicConfig(a.cfg) }

func (a *OpenAIAgent) Close() error { return nil }

// MakeMove runs up to AgentMaxThinkingRounds follow-up rounds until the
// model calls useSkill. If it never does, the collected calls are returned
// as they are and the engine scores the violation.
func (a *OpenAIAgent) MakeMove(ctx context.Context, state game.GameState, role game.Role) (game.Move, error) {
	prompt, err := buildPrompt(state, role, a.game)
	if err != nil {
		return game.Move{}, err
	}
	messages := []chatMessage{
		{Role: "system", Content: systemPrompt(a.cfg)},
		{Role: "user", Content: prompt},
	}

	var move game.Move
	for round := 0; round <= constants.AgentMaxThinkingRounds; round++ {
		resp, err := a.complete(ctx, messages)
		if err != nil {
			return game.Move{}, err
		}
		move.TotalTokens += resp.Usage.TotalTokens
		if len(resp.Choices) == 0 {
			return game.Move{}, fmt.Errorf("empty response from OpenAI")
		}
		msg := resp.Choices[0].Message
		if text := strings.TrimSpace(msg.Content); text != "" {
			logging.Debug("agent response", logging.Fields{constants.LogFieldAgent: a.cfg.Name, "text": text})
		}

		calls := a.convertCalls(msg.ToolCalls)
		move.Calls = append(move.Calls, calls...)
		if hasSkill(calls) {
			return move, nil
		}

		messages = append(messages, chatMessage{Role: "assistant", Content: msg.Content, ToolCalls: msg.ToolCalls})
		for _, tc := range msg.ToolCalls {
			messages = append(messages, chatMessage{Role: "tool", ToolCallID: tc.ID, Content: constants.AgentThinkingToolResult})
		}
	}
	logging.Warn("agent exceeded thinking rounds without a skill", logging.Fields{constants.LogFieldAgent: a.cfg.Name})
	return move, nil
}

func (a *OpenAIAgent) convertCalls(in []chatToolCall) []game.ToolCall {
	out := make([]game.ToolCall, 0, len(in))
	for _, tc := range in {
		switch tc.Function.Name {
		case constants.AgentThinkingToolName:
			var args struct {
				Content string `json:"content"`
			}
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
			out = append(out, game.ToolCall{Type: game.ToolCallThinking, Content: args.Content})
		case constants.AgentUseSkillToolName:
			// malformed arguments leave Skill empty; the engine reports it
			var args struct {
				Skill string `json:"skill"`
			}
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
			out = append(out, game.ToolCall{Type: game.ToolCallUseSkill, Skill: args.Skill})
		default:
			logging.Warn("agent called unknown tool", logging.Fields{constants.LogFieldAgent: a.cfg.Name, "tool": tc.Function.Name})
		}
	}
	return out
}

func (a *OpenAIAgent) complete(ctx context.Context, messages []chatMessage) (*chatResponse, error) {
	model := a.cfg.Model
	if model == "" {
		model = constants.OpenAIChatModel
	}
	payload := map[string]interface{}{
		"model":       model,
		"messages":    messages,
		"temperature": temperature(a.cfg),
		"max_tokens":  maxTokens(a.cfg),
		"tools":       a.tools,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(a.cfg.BaseURL, "/")
	if base == "" {
		base = constants.OpenAIBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+constants.OpenAIChatCompletionsPath, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+a.apiKey)
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai error: %d %s", resp.StatusCode, string(body))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
