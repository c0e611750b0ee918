package turns

import (
	clone "github.com/huandu/go-clone"
)

// BlockKind identifies what a Block carries.
type BlockKind string

const (
	BlockKindUser     BlockKind = "user"
	BlockKindLLMText  BlockKind = "llm_text"
	BlockKindToolCall BlockKind = "tool_call"
	BlockKindToolUse  BlockKind = "tool_use"
	BlockKindSystem   BlockKind = "system"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Block is a single entry of a conversation: a user message, an assistant message,
// a tool invocation requested by the assistant or the result of one.
type Block struct {
	ID      string         `yaml:"id,omitempty" json:"id,omitempty"`
	Kind    BlockKind      `yaml:"kind" json:"kind"`
	Role    string         `yaml:"role,omitempty" json:"role,omitempty"`
	Payload map[string]any `yaml:"payload,omitempty" json:"payload,omitempty"`
}

// Turn is the ordered, append-only transcript of one conversation.
// It is owned by a single request at a time and is never shared between concurrent requests.
type Turn struct {
	ID       string         `yaml:"id,omitempty" json:"id,omitempty"`
	Blocks   []Block        `yaml:"blocks" json:"blocks"`
	Metadata map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Clone returns a deep copy of the Turn. Backends receive clones so they can never
// mutate the transcript the orchestrator owns.
func (t *Turn) Clone() *Turn {
	if t == nil {
		return nil
	}
	return clone.Clone(t).(*Turn)
}

// Len returns the number of blocks in the turn.
func (t *Turn) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Blocks)
}

// SetMetadata stores a turn-level annotation (provider, model, iteration count, ...).
func (t *Turn) SetMetadata(key string, value any) {
	if t.Metadata == nil {
		t.Metadata = map[string]any{}
	}
	t.Metadata[key] = value
}
