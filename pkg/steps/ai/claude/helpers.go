package claude

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/pkg/errors"

	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/inference/tools"
	"github.com/go-go-golems/velocity/pkg/steps/ai/settings"
	"github.com/go-go-golems/velocity/pkg/turns"
)

const defaultMaxTokens = 8192

// MakeMessageParams converts an engine request into a messages request.
// Tool results of one round become a single user message of tool_result blocks.
func MakeMessageParams(s *settings.StepSettings, req *engine.Request) (anthropic.MessageNewParams, error) {
	var msgs []anthropic.MessageParam
	for _, m := range turns.Messages(req.Turn) {
		switch m.Role {
		case turns.RoleUser:
			if m.Text == "" {
				continue
			}
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
		case turns.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Text))
			}
			for _, c := range m.ToolCalls {
				args := c.Arguments
				if args == nil {
					args = map[string]any{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(c.ID, args, c.Name))
			}
			if len(blocks) > 0 {
				msgs = append(msgs, anthropic.NewAssistantMessage(blocks...))
			}
		case turns.RoleTool:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.ToolResults))
			for _, r := range m.ToolResults {
				blocks = append(blocks, anthropic.NewToolResultBlock(r.ID, r.ResponseJSON(), r.Error != ""))
			}
			msgs = append(msgs, anthropic.NewUserMessage(blocks...))
		}
	}
	if len(msgs) == 0 {
		return anthropic.MessageNewParams{}, errors.New("claude: transcript has nothing to send")
	}

	maxTokens := int64(defaultMaxTokens)
	if s.Chat.MaxResponseTokens != nil && *s.Chat.MaxResponseTokens > 0 {
		maxTokens = int64(*s.Chat.MaxResponseTokens)
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.Chat.Model()),
		MaxTokens: maxTokens,
		Messages:  msgs,
		Tools:     MakeTools(req.Tools),
	}
	if req.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemInstruction}}
	}
	if s.Chat.Temperature != nil {
		params.Temperature = param.NewOpt(*s.Chat.Temperature)
	}
	return params, nil
}

// MakeTools converts the catalog, keeping its order.
func MakeTools(defs []tools.ToolDefinition) []anthropic.ToolUnionParam {
	ret := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, td := range defs {
		schemaMap := td.SchemaMap()
		props, _ := schemaMap["properties"].(map[string]any)
		if props == nil {
			props = map[string]any{}
		}
		schema := anthropic.ToolInputSchemaParam{
			Properties: props,
			Required:   td.RequiredParameters(),
		}
		t := anthropic.ToolUnionParamOfTool(schema, td.Name)
		if td.Description != "" {
			t.OfTool.Description = param.NewOpt(td.Description)
		}
		ret = append(ret, t)
	}
	return ret
}

// ResponseFromMessage collects text and tool_use blocks.
func ResponseFromMessage(msg *anthropic.Message) *engine.Response {
	ret := &engine.Response{}
	if msg == nil {
		return ret
	}
	ret.StopReason = string(msg.StopReason)
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			ret.Text += block.Text
		case "tool_use":
			tu := block.AsToolUse()
			args := map[string]any{}
			if len(tu.Input) > 0 {
				if err := json.Unmarshal(tu.Input, &args); err != nil {
					args = map[string]any{}
				}
			}
			ret.ToolCalls = append(ret.ToolCalls, turns.ToolCall{ID: tu.ID, Name: tu.Name, Arguments: args})
		}
	}
	return ret
}
