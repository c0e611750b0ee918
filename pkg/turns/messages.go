package turns

import (
	"encoding/json"
	"fmt"
)

// ToolCall is an invocation the assistant asked for.
type ToolCall struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Arguments map[string]any `json:"arguments" yaml:"arguments"`
}

// ArgumentsJSON returns the arguments as a JSON object, "{}" when empty.
func (c ToolCall) ArgumentsJSON() json.RawMessage {
	if len(c.Arguments) == 0 {
		return json.RawMessage("{}")
	}
	b, err := json.Marshal(c.Arguments)
	if err != nil {
		return json.RawMessage("{}")
	}
	return b
}

// ToolResult is the outcome of a ToolCall, matched by ID.
type ToolResult struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Content any    `json:"content,omitempty" yaml:"content,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Response returns the structured value handed back to the model: the content itself,
// or {"error": msg} for failures.
func (r ToolResult) Response() any {
	if r.Error != "" {
		return map[string]any{"error": r.Error}
	}
	return r.Content
}

// ResponseJSON is Response encoded as a JSON string.
func (r ToolResult) ResponseJSON() string {
	v := r.Response()
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// ResponseMap wraps Response into an object, for providers that require one.
func (r ToolResult) ResponseMap() map[string]any {
	return map[string]any{"result": r.Response()}
}

// Message is one role-tagged exchange of the conversation, as providers see it:
// user text, assistant text with its invocations, or the combined results of one batch.
type Message struct {
	Role        string
	Text        string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// Messages groups the blocks of a Turn into provider-level messages.
// Consecutive assistant blocks (text and tool_call) form one assistant message;
// consecutive tool_use blocks form one results message. System blocks are skipped,
// the system instruction travels separately.
func Messages(t *Turn) []Message {
	if t == nil {
		return nil
	}
	var out []Message
	last := func() *Message {
		if len(out) == 0 {
			return nil
		}
		return &out[len(out)-1]
	}
	for _, b := range t.Blocks {
		switch b.Kind {
		case BlockKindSystem:
			continue
		case BlockKindUser:
			out = append(out, Message{Role: RoleUser, Text: b.Text()})
		case BlockKindLLMText:
			if m := last(); m != nil && m.Role == RoleAssistant && len(m.ToolCalls) == 0 {
				m.Text += b.Text()
				continue
			}
			out = append(out, Message{Role: RoleAssistant, Text: b.Text()})
		case BlockKindToolCall:
			call, _ := b.ToolCall()
			if m := last(); m != nil && m.Role == RoleAssistant {
				m.ToolCalls = append(m.ToolCalls, call)
				continue
			}
			out = append(out, Message{Role: RoleAssistant, ToolCalls: []ToolCall{call}})
		case BlockKindToolUse:
			res, _ := b.ToolResult()
			if m := last(); m != nil && m.Role == RoleTool {
				m.ToolResults = append(m.ToolResults, res)
				continue
			}
			out = append(out, Message{Role: RoleTool, ToolResults: []ToolResult{res}})
		}
	}
	return out
}

// SystemPrompt returns the concatenated text of the system blocks.
func SystemPrompt(t *Turn) string {
	if t == nil {
		return ""
	}
	s := ""
	for _, b := range t.Blocks {
		if b.Kind != BlockKindSystem {
			continue
		}
		if s != "" {
			s += "\n\n"
		}
		s += b.Text()
	}
	return s
}
