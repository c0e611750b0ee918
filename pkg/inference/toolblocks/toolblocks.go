package toolblocks

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/go-go-golems/velocity/pkg/inference/tools"
	"github.com/go-go-golems/velocity/pkg/turns"
)

// ExtractPendingToolCalls finds tool_call blocks that don't yet have a matching tool_use block.
func ExtractPendingToolCalls(t *turns.Turn) []turns.ToolCall {
	if t == nil {
		return nil
	}
	used := make(map[string]bool)
	for _, b := range t.Blocks {
		if r, ok := b.ToolResult(); ok && r.ID != "" {
			used[r.ID] = true
		}
	}
	var calls []turns.ToolCall
	for _, b := range t.Blocks {
		c, ok := b.ToolCall()
		if !ok || c.ID == "" || used[c.ID] {
			continue
		}
		calls = append(calls, c)
	}
	return calls
}

// AppendToolCallBlocks appends the invocations of one assistant response. Calls without
// an id, or with an id already present in the turn, get a fresh one. The calls as
// appended are returned.
func AppendToolCallBlocks(t *turns.Turn, calls []turns.ToolCall) []turns.ToolCall {
	seen := map[string]bool{}
	for _, b := range t.Blocks {
		if c, ok := b.ToolCall(); ok {
			seen[c.ID] = true
		}
	}
	out := make([]turns.ToolCall, 0, len(calls))
	for _, c := range calls {
		if c.ID == "" || seen[c.ID] {
			c.ID = "call_" + uuid.NewString()
		}
		seen[c.ID] = true
		turns.AppendBlock(t, turns.NewToolCallBlock(c.ID, c.Name, c.Arguments))
		out = append(out, c)
	}
	return out
}

// AppendToolResultsBlocks appends one tool_use block per result.
func AppendToolResultsBlocks(t *turns.Turn, results []turns.ToolResult) {
	for _, r := range results {
		turns.AppendBlock(t, turns.NewToolUseBlock(r.ID, r.Name, r.Content, r.Error))
	}
}

// ToExecutorCalls converts transcript invocations to executor calls.
func ToExecutorCalls(calls []turns.ToolCall) []tools.ToolCall {
	out := make([]tools.ToolCall, 0, len(calls))
	for _, c := range calls {
		out = append(out, tools.ToolCall{ID: c.ID, Name: c.Name, Arguments: c.ArgumentsJSON()})
	}
	return out
}

// FromExecutorResults converts executor results to transcript results.
// Values are normalized through JSON so the transcript only holds plain data.
func FromExecutorResults(results []*tools.ToolResult) []turns.ToolResult {
	out := make([]turns.ToolResult, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		out = append(out, turns.ToolResult{ID: r.ID, Name: r.Name, Content: normalize(r.Result), Error: r.Error})
	}
	return out
}

func normalize(v any) any {
	switch v.(type) {
	case nil, string, bool, float64, map[string]any, []any:
		return v
	}
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// Unanswered returns the ids of tool_call blocks with no matching tool_use block.
func Unanswered(t *turns.Turn) []string {
	var ids []string
	for _, c := range ExtractPendingToolCalls(t) {
		ids = append(ids, c.ID)
	}
	return ids
}
