package turns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagesGroupsCallsAndResults(t *testing.T) {
	turn := NewTurnBuilder().
		WithSystemPrompt("be brief").
		WithUserPrompt("prices for cloud and security?").
		Build()
	AppendBlocks(turn,
		NewAssistantTextBlock("Looking that up."),
		NewToolCallBlock("c1", "getPricing", map[string]any{"productKeyword": "Cloud"}),
		NewToolCallBlock("c2", "getPricing", map[string]any{"productKeyword": "Security"}),
		NewToolUseBlock("c2", "getPricing", []any{"b"}, ""),
		NewToolUseBlock("c1", "getPricing", nil, "boom"),
		NewAssistantTextBlock("Done."),
	)

	msgs := Messages(turn)
	require.Len(t, msgs, 4)

	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "prices for cloud and security?", msgs[0].Text)

	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Looking that up.", msgs[1].Text)
	require.Len(t, msgs[1].ToolCalls, 2)
	assert.Equal(t, "c1", msgs[1].ToolCalls[0].ID)
	assert.Equal(t, "Cloud", msgs[1].ToolCalls[0].Arguments["productKeyword"])

	assert.Equal(t, RoleTool, msgs[2].Role)
	require.Len(t, msgs[2].ToolResults, 2)
	assert.Equal(t, "c2", msgs[2].ToolResults[0].ID)
	assert.Equal(t, map[string]any{"error": "boom"}, msgs[2].ToolResults[1].Response())

	assert.Equal(t, RoleAssistant, msgs[3].Role)
	assert.Equal(t, "Done.", msgs[3].Text)

	assert.Equal(t, "be brief", SystemPrompt(turn))
}

func TestToolCallArgumentsFromString(t *testing.T) {
	b := Block{Kind: BlockKindToolCall, Payload: map[string]any{
		PayloadKeyID:   "x",
		PayloadKeyName: "getLeadDetails",
		PayloadKeyArgs: `{"companyName":"Acme"}`,
	}}
	call, ok := b.ToolCall()
	require.True(t, ok)
	assert.Equal(t, "Acme", call.Arguments["companyName"])
	assert.JSONEq(t, `{"companyName":"Acme"}`, string(call.ArgumentsJSON()))
}

func TestCloneIsDeep(t *testing.T) {
	turn := NewTurnBuilder().WithUserPrompt("hi").Build()
	AppendBlock(turn, NewToolCallBlock("c1", "getCompanyNews", map[string]any{"companyName": "Acme"}))

	cp := turn.Clone()
	cp.Blocks[1].Payload[PayloadKeyArgs].(map[string]any)["companyName"] = "Other"
	AppendBlock(cp, NewAssistantTextBlock("x"))

	assert.Equal(t, 2, turn.Len())
	call, _ := turn.Blocks[1].ToolCall()
	assert.Equal(t, "Acme", call.Arguments["companyName"])
}

func TestLastAssistantText(t *testing.T) {
	turn := NewTurnBuilder().WithUserPrompt("hi").Build()
	assert.Equal(t, "", LastAssistantText(turn))
	AppendBlocks(turn, NewAssistantTextBlock("first"), NewUserTextBlock("again"), NewAssistantTextBlock("second"))
	assert.Equal(t, "second", LastAssistantText(turn))
}

func TestWithHistorySkipsUnknownRoles(t *testing.T) {
	turn := NewTurnBuilder().WithHistory([]Message{
		{Role: RoleUser, Text: "a"},
		{Role: "model", Text: "ignored"},
		{Role: RoleAssistant, Text: "b"},
		{Role: RoleUser, Text: ""},
	}).Build()
	require.Len(t, turn.Blocks, 2)
	assert.Equal(t, BlockKindUser, turn.Blocks[0].Kind)
	assert.Equal(t, BlockKindLLMText, turn.Blocks[1].Kind)
	assert.NotEmpty(t, turn.Blocks[0].ID)
}
