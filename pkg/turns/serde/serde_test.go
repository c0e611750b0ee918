package serde

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/velocity/pkg/turns"
)

func TestYAMLRoundTrip(t *testing.T) {
	turn := turns.NewTurnBuilder().
		WithSystemPrompt("You are Velocity.").
		WithUserPrompt("news for Acme?").
		Build()
	turn.ID = "turn-1"
	turn.SetMetadata(turns.MetaKeyProvider, "gemini")
	turns.AppendBlocks(turn,
		turns.NewToolCallBlock("c1", "getCompanyNews", map[string]any{"companyName": "Acme"}),
		turns.NewToolUseBlock("c1", "getCompanyNews", map[string]any{"news": []any{"headline"}}, ""),
		turns.NewAssistantTextBlock("One headline."),
	)

	data, err := ToYAML(turn)
	require.NoError(t, err)

	back, err := FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, "turn-1", back.ID)
	assert.Equal(t, "gemini", back.Metadata[turns.MetaKeyProvider])
	require.Len(t, back.Blocks, 5)

	call, ok := back.Blocks[2].ToolCall()
	require.True(t, ok)
	assert.Equal(t, "c1", call.ID)
	assert.Equal(t, "Acme", call.Arguments["companyName"])

	res, ok := back.Blocks[3].ToolResult()
	require.True(t, ok)
	assert.Equal(t, "c1", res.ID)
	assert.Equal(t, "One headline.", turns.LastAssistantText(back))
}

func TestNormalizeFillsRoles(t *testing.T) {
	back, err := FromYAML([]byte("blocks:\n  - kind: llm_text\n    payload:\n      text: hi\n  - kind: tool_use\n"))
	require.NoError(t, err)
	assert.Equal(t, turns.RoleAssistant, back.Blocks[0].Role)
	assert.Equal(t, turns.RoleTool, back.Blocks[1].Role)
	assert.NotNil(t, back.Blocks[1].Payload)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turn.yaml")
	turn := turns.NewTurnBuilder().WithUserPrompt("hello").Build()
	require.NoError(t, SaveTurnYAML(path, turn))

	back, err := LoadTurnYAML(path)
	require.NoError(t, err)
	require.Len(t, back.Blocks, 1)
	assert.Equal(t, "hello", back.Blocks[0].Text())
}
