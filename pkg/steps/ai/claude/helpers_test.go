package claude

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/inference/tools"
	"github.com/go-go-golems/velocity/pkg/steps/ai/settings"
	"github.com/go-go-golems/velocity/pkg/steps/ai/types"
	"github.com/go-go-golems/velocity/pkg/turns"
)

func claudeSettings() *settings.StepSettings {
	s := settings.NewStepSettings()
	p := types.ApiTypeClaude
	s.Chat.ApiType = &p
	s.Chat.APIKeys["claude-api-key"] = "sk-ant-test"
	return s
}

func TestMakeMessageParams(t *testing.T) {
	turn := &turns.Turn{}
	turns.AppendBlocks(turn,
		turns.NewUserTextBlock("pricing for cloud"),
		turns.NewToolCallBlock("toolu_1", "getPricing", map[string]any{"productKeyword": "cloud"}),
		turns.NewToolCallBlock("toolu_2", "getLegalClause", map[string]any{"industry": "finance"}),
		turns.NewToolUseBlock("toolu_1", "getPricing", []any{}, ""),
		turns.NewToolUseBlock("toolu_2", "getLegalClause", nil, "Tool execution failed: x"),
	)
	params, err := MakeMessageParams(claudeSettings(), &engine.Request{
		Turn:              turn,
		SystemInstruction: "You are Velocity",
		Tools:             []tools.ToolDefinition{tools.NewToolDefinition("getPricing", "Prices", tools.RequiredString("productKeyword", ""))},
	})
	require.NoError(t, err)
	assert.Equal(t, anthropic.Model("claude-sonnet-4-5"), params.Model)
	assert.Equal(t, int64(defaultMaxTokens), params.MaxTokens)
	require.Len(t, params.System, 1)
	assert.Equal(t, "You are Velocity", params.System[0].Text)

	require.Len(t, params.Messages, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, params.Messages[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, params.Messages[1].Role)
	assert.Len(t, params.Messages[1].Content, 2)
	assert.Equal(t, anthropic.MessageParamRoleUser, params.Messages[2].Role)
	assert.Len(t, params.Messages[2].Content, 2)

	require.Len(t, params.Tools, 1)
	assert.Equal(t, "getPricing", params.Tools[0].OfTool.Name)
	assert.Equal(t, []string{"productKeyword"}, params.Tools[0].OfTool.InputSchema.Required)
}

func TestResponseFromMessage(t *testing.T) {
	var msg anthropic.Message
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-5",
		"stop_reason": "tool_use",
		"content": [
			{"type": "text", "text": "Checking the lead."},
			{"type": "tool_use", "id": "toolu_9", "name": "getLeadDetails", "input": {"companyName": "Acme"}}
		],
		"usage": {"input_tokens": 10, "output_tokens": 5}
	}`), &msg))

	r := ResponseFromMessage(&msg)
	assert.Equal(t, "Checking the lead.", r.Text)
	assert.Equal(t, "tool_use", r.StopReason)
	require.Len(t, r.ToolCalls, 1)
	assert.Equal(t, "toolu_9", r.ToolCalls[0].ID)
	assert.Equal(t, map[string]any{"companyName": "Acme"}, r.ToolCalls[0].Arguments)

	assert.Empty(t, ResponseFromMessage(nil).Text)
}

func TestPlaceholderKeyIsUnavailable(t *testing.T) {
	s := claudeSettings()
	s.Chat.APIKeys["claude-api-key"] = "dummy_key"
	e, err := NewClaudeEngine(s)
	require.NoError(t, err)
	_, err = e.RunInference(context.Background(), &engine.Request{Turn: turns.NewTurnBuilder().WithUserPrompt("hi").Build()})
	assert.True(t, engine.IsBackendUnavailable(err))
}
