package openai

import (
	"encoding/json"

	"github.com/pkg/errors"
	go_openai "github.com/sashabaranov/go-openai"

	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/inference/tools"
	"github.com/go-go-golems/velocity/pkg/steps/ai/settings"
	"github.com/go-go-golems/velocity/pkg/steps/ai/types"
	"github.com/go-go-golems/velocity/pkg/turns"
)

// MakeClient builds a client from the "openai-api-key" and "openai-base-url" settings.
func MakeClient(s *settings.StepSettings) (*go_openai.Client, error) {
	apiKey := s.Chat.APIKey(types.ApiTypeOpenAI)
	if engine.IsPlaceholderKey(apiKey) {
		return nil, errors.Wrap(engine.ErrMissingCredentials, "openai")
	}
	config := go_openai.DefaultConfig(apiKey)
	if baseURL := s.Chat.BaseURL(types.ApiTypeOpenAI); baseURL != "" {
		config.BaseURL = baseURL
	}
	if s.Client != nil {
		config.HTTPClient = s.Client.Client()
	}
	return go_openai.NewClientWithConfig(config), nil
}

// MakeCompletionRequest converts an engine request into a chat completion request.
func MakeCompletionRequest(s *settings.StepSettings, req *engine.Request) (*go_openai.ChatCompletionRequest, error) {
	var msgs []go_openai.ChatCompletionMessage
	if req.SystemInstruction != "" {
		msgs = append(msgs, go_openai.ChatCompletionMessage{
			Role:    go_openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}

	for _, m := range turns.Messages(req.Turn) {
		switch m.Role {
		case turns.RoleUser:
			msgs = append(msgs, go_openai.ChatCompletionMessage{Role: go_openai.ChatMessageRoleUser, Content: m.Text})
		case turns.RoleAssistant:
			msg := go_openai.ChatCompletionMessage{Role: go_openai.ChatMessageRoleAssistant, Content: m.Text}
			for _, c := range m.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, go_openai.ToolCall{
					ID:   c.ID,
					Type: go_openai.ToolTypeFunction,
					Function: go_openai.FunctionCall{
						Name:      c.Name,
						Arguments: string(c.ArgumentsJSON()),
					},
				})
			}
			msgs = append(msgs, msg)
		case turns.RoleTool:
			// one tool message per result, right after the assistant message
			for _, r := range m.ToolResults {
				msgs = append(msgs, go_openai.ChatCompletionMessage{
					Role:       go_openai.ChatMessageRoleTool,
					Content:    r.ResponseJSON(),
					ToolCallID: r.ID,
				})
			}
		}
	}
	if len(msgs) == 0 {
		return nil, errors.New("openai: transcript has nothing to send")
	}

	ret := &go_openai.ChatCompletionRequest{
		Model:    s.Chat.Model(),
		Messages: msgs,
		Tools:    MakeTools(req.Tools),
	}
	if s.Chat.Temperature != nil {
		ret.Temperature = float32(*s.Chat.Temperature)
	}
	if s.Chat.MaxResponseTokens != nil {
		ret.MaxCompletionTokens = *s.Chat.MaxResponseTokens
	}
	return ret, nil
}

// MakeTools converts the catalog into function tools, keeping its order.
func MakeTools(defs []tools.ToolDefinition) []go_openai.Tool {
	var ret []go_openai.Tool
	for _, td := range defs {
		schema, err := td.SchemaJSON()
		if err != nil {
			schema = []byte(`{"type":"object"}`)
		}
		ret = append(ret, go_openai.Tool{
			Type: go_openai.ToolTypeFunction,
			Function: &go_openai.FunctionDefinition{
				Name:        td.Name,
				Description: td.Description,
				Parameters:  json.RawMessage(schema),
			},
		})
	}
	return ret
}

// ResponseFromCompletion extracts text and tool calls from the first choice.
func ResponseFromCompletion(resp go_openai.ChatCompletionResponse) *engine.Response {
	ret := &engine.Response{}
	if len(resp.Choices) == 0 {
		return ret
	}
	choice := resp.Choices[0]
	ret.Text = choice.Message.Content
	ret.StopReason = string(choice.FinishReason)
	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				args = map[string]any{}
			}
		}
		ret.ToolCalls = append(ret.ToolCalls, turns.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}
	return ret
}
