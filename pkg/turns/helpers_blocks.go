package turns

import (
	"encoding/json"

	"github.com/google/uuid"
)

// AppendBlock appends a Block to the Turn, assigning an ID when missing.
func AppendBlock(t *Turn, b Block) {
	if t == nil {
		return
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	t.Blocks = append(t.Blocks, b)
}

// AppendBlocks appends multiple Blocks in order.
func AppendBlocks(t *Turn, bs ...Block) {
	for _, b := range bs {
		AppendBlock(t, b)
	}
}

func NewUserTextBlock(text string) Block {
	return Block{
		Kind:    BlockKindUser,
		Role:    RoleUser,
		Payload: map[string]any{PayloadKeyText: text},
	}
}

func NewAssistantTextBlock(text string) Block {
	return Block{
		Kind:    BlockKindLLMText,
		Role:    RoleAssistant,
		Payload: map[string]any{PayloadKeyText: text},
	}
}

func NewSystemTextBlock(text string) Block {
	return Block{
		Kind:    BlockKindSystem,
		Role:    RoleSystem,
		Payload: map[string]any{PayloadKeyText: text},
	}
}

// NewToolCallBlock records an invocation requested by the assistant.
func NewToolCallBlock(id string, name string, args map[string]any) Block {
	if args == nil {
		args = map[string]any{}
	}
	return Block{
		ID:   id,
		Kind: BlockKindToolCall,
		Role: RoleAssistant,
		Payload: map[string]any{
			PayloadKeyID:   id,
			PayloadKeyName: name,
			PayloadKeyArgs: args,
		},
	}
}

// NewToolUseBlock records the outcome of the invocation with the given call id.
// The block ID is distinct from the call id so a call and its result never collide.
func NewToolUseBlock(id string, name string, result any, errMsg string) Block {
	payload := map[string]any{
		PayloadKeyID:     id,
		PayloadKeyName:   name,
		PayloadKeyResult: result,
	}
	if errMsg != "" {
		payload[PayloadKeyError] = errMsg
	}
	return Block{
		Kind:    BlockKindToolUse,
		Role:    RoleTool,
		Payload: payload,
	}
}

// Text returns the text payload of a user, assistant or system block.
func (b Block) Text() string {
	s, _ := b.Payload[PayloadKeyText].(string)
	return s
}

// ToolCall decodes a tool_call block. ok is false for other kinds.
func (b Block) ToolCall() (ToolCall, bool) {
	if b.Kind != BlockKindToolCall {
		return ToolCall{}, false
	}
	id, _ := b.Payload[PayloadKeyID].(string)
	name, _ := b.Payload[PayloadKeyName].(string)
	return ToolCall{ID: id, Name: name, Arguments: argsToMap(b.Payload[PayloadKeyArgs])}, true
}

// ToolResult decodes a tool_use block. ok is false for other kinds.
func (b Block) ToolResult() (ToolResult, bool) {
	if b.Kind != BlockKindToolUse {
		return ToolResult{}, false
	}
	id, _ := b.Payload[PayloadKeyID].(string)
	name, _ := b.Payload[PayloadKeyName].(string)
	errMsg, _ := b.Payload[PayloadKeyError].(string)
	return ToolResult{ID: id, Name: name, Content: b.Payload[PayloadKeyResult], Error: errMsg}, true
}

func argsToMap(raw any) map[string]any {
	var args map[string]any
	switch v := raw.(type) {
	case nil:
	case map[string]any:
		args = v
	case string:
		_ = json.Unmarshal([]byte(v), &args)
	case json.RawMessage:
		_ = json.Unmarshal(v, &args)
	case []byte:
		_ = json.Unmarshal(v, &args)
	default:
		if bts, err := json.Marshal(v); err == nil {
			_ = json.Unmarshal(bts, &args)
		}
	}
	if args == nil {
		args = map[string]any{}
	}
	return args
}

// LastAssistantText returns the text of the last llm_text block, or "".
func LastAssistantText(t *Turn) string {
	if t == nil {
		return ""
	}
	for i := len(t.Blocks) - 1; i >= 0; i-- {
		if t.Blocks[i].Kind == BlockKindLLMText {
			return t.Blocks[i].Text()
		}
	}
	return ""
}
