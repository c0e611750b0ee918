package toolblocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/velocity/pkg/inference/tools"
	"github.com/go-go-golems/velocity/pkg/turns"
)

func TestPendingCallsAreMatchedByID(t *testing.T) {
	turn := &turns.Turn{}
	turns.AppendBlock(turn, turns.NewUserTextBlock("hi"))
	calls := AppendToolCallBlocks(turn, []turns.ToolCall{
		{ID: "a", Name: "getPricing", Arguments: map[string]any{"productKeyword": "cloud"}},
		{ID: "b", Name: "getLeadDetails"},
	})
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"a", "b"}, Unanswered(turn))

	// results arrive out of order
	AppendToolResultsBlocks(turn, []turns.ToolResult{{ID: "b", Name: "getLeadDetails", Content: "x"}})
	assert.Equal(t, []string{"a"}, Unanswered(turn))
	AppendToolResultsBlocks(turn, []turns.ToolResult{{ID: "a", Name: "getPricing", Error: "Tool execution failed: x"}})
	assert.Empty(t, Unanswered(turn))
}

func TestAppendToolCallBlocksAssignsIDs(t *testing.T) {
	turn := &turns.Turn{}
	AppendToolCallBlocks(turn, []turns.ToolCall{{ID: "dup", Name: "a"}})
	calls := AppendToolCallBlocks(turn, []turns.ToolCall{{Name: "b"}, {ID: "dup", Name: "c"}, {ID: "x", Name: "d"}, {ID: "x", Name: "e"}})

	require.Len(t, calls, 4)
	assert.NotEmpty(t, calls[0].ID)
	assert.NotEqual(t, "dup", calls[1].ID)
	assert.Equal(t, "x", calls[2].ID)
	assert.NotEqual(t, "x", calls[3].ID)

	ids := map[string]bool{}
	for _, b := range turn.Blocks {
		c, _ := b.ToolCall()
		assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
		ids[c.ID] = true
	}
}

func TestExecutorConversions(t *testing.T) {
	calls := ToExecutorCalls([]turns.ToolCall{{ID: "1", Name: "getPricing", Arguments: map[string]any{"productKeyword": "Cloud"}}})
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"productKeyword":"Cloud"}`, string(calls[0].Arguments))

	type price struct {
		Name  string `json:"name"`
		Price int    `json:"price"`
	}
	results := FromExecutorResults([]*tools.ToolResult{
		{ID: "1", Name: "getPricing", Result: []price{{Name: "Cloud", Price: 5}}},
		nil,
		{ID: "2", Name: "boom", Error: "Tool execution failed: x"},
	})
	require.Len(t, results, 2)
	assert.Equal(t, []any{map[string]any{"name": "Cloud", "price": float64(5)}}, results[0].Content)
	assert.Equal(t, map[string]any{"error": "Tool execution failed: x"}, results[1].Response())
}
