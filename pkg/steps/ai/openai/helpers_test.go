package openai

import (
	"context"
	"encoding/json"
	"testing"

	go_openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/inference/tools"
	"github.com/go-go-golems/velocity/pkg/steps/ai/settings"
	"github.com/go-go-golems/velocity/pkg/steps/ai/types"
	"github.com/go-go-golems/velocity/pkg/turns"
)

func openaiSettings() *settings.StepSettings {
	s := settings.NewStepSettings()
	p := types.ApiTypeOpenAI
	s.Chat.ApiType = &p
	s.Chat.APIKeys["openai-api-key"] = "sk-test"
	return s
}

func TestMakeCompletionRequest(t *testing.T) {
	turn := &turns.Turn{}
	turns.AppendBlocks(turn,
		turns.NewUserTextBlock("details for acme"),
		turns.NewAssistantTextBlock("Let me check."),
		turns.NewToolCallBlock("call_1", "getLeadDetails", map[string]any{"companyName": "Acme"}),
		turns.NewToolCallBlock("call_2", "getCompanyNews", map[string]any{"companyName": "Acme"}),
		turns.NewToolUseBlock("call_2", "getCompanyNews", map[string]any{"news": []any{"a"}}, ""),
		turns.NewToolUseBlock("call_1", "getLeadDetails", nil, "Tool not found: getLeadDetails"),
	)
	req, err := MakeCompletionRequest(openaiSettings(), &engine.Request{
		Turn:              turn,
		SystemInstruction: "You are Velocity",
		Tools:             []tools.ToolDefinition{tools.NewToolDefinition("getLeadDetails", "d", tools.RequiredString("companyName", ""))},
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", req.Model)

	require.Len(t, req.Messages, 5)
	assert.Equal(t, go_openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, go_openai.ChatMessageRoleUser, req.Messages[1].Role)
	assistant := req.Messages[2]
	assert.Equal(t, "Let me check.", assistant.Content)
	require.Len(t, assistant.ToolCalls, 2)
	assert.JSONEq(t, `{"companyName":"Acme"}`, assistant.ToolCalls[0].Function.Arguments)

	assert.Equal(t, "call_2", req.Messages[3].ToolCallID)
	assert.JSONEq(t, `{"news":["a"]}`, req.Messages[3].Content)
	assert.Equal(t, "call_1", req.Messages[4].ToolCallID)
	assert.JSONEq(t, `{"error":"Tool not found: getLeadDetails"}`, req.Messages[4].Content)

	require.Len(t, req.Tools, 1)
	params, ok := req.Tools[0].Function.Parameters.(json.RawMessage)
	require.True(t, ok)
	assert.Contains(t, string(params), `"required":["companyName"]`)
}

func TestResponseFromCompletion(t *testing.T) {
	resp := go_openai.ChatCompletionResponse{Choices: []go_openai.ChatCompletionChoice{{
		FinishReason: go_openai.FinishReasonToolCalls,
		Message: go_openai.ChatCompletionMessage{
			ToolCalls: []go_openai.ToolCall{
				{ID: "c1", Type: go_openai.ToolTypeFunction, Function: go_openai.FunctionCall{Name: "getPricing", Arguments: `{"productKeyword":"cloud"}`}},
				{ID: "c2", Type: go_openai.ToolTypeFunction, Function: go_openai.FunctionCall{Name: "getPricing", Arguments: `not json`}},
			},
		},
	}}}
	r := ResponseFromCompletion(resp)
	require.Len(t, r.ToolCalls, 2)
	assert.Equal(t, map[string]any{"productKeyword": "cloud"}, r.ToolCalls[0].Arguments)
	assert.Equal(t, map[string]any{}, r.ToolCalls[1].Arguments)
	assert.Equal(t, "tool_calls", r.StopReason)

	assert.Empty(t, ResponseFromCompletion(go_openai.ChatCompletionResponse{}).Text)
}

func TestMissingKeyIsUnavailable(t *testing.T) {
	s := openaiSettings()
	delete(s.Chat.APIKeys, "openai-api-key")
	e, err := NewOpenAIEngine(s)
	require.NoError(t, err)
	_, err = e.RunInference(context.Background(), &engine.Request{Turn: turns.NewTurnBuilder().WithUserPrompt("hi").Build()})
	assert.True(t, engine.IsBackendUnavailable(err))
}
