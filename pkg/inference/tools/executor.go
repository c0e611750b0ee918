package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/velocity/pkg/events"
)

// ToolExecutor runs tool calls against bound handlers.
type ToolExecutor interface {
	ExecuteToolCall(ctx context.Context, toolCall ToolCall) *ToolResult
	ExecuteToolCalls(ctx context.Context, toolCalls []ToolCall) ([]*ToolResult, error)
}

// Executor is the default ToolExecutor. Every call yields exactly one result carrying
// the call's ID: lookup misses, invalid arguments, handler errors and panics all become
// error results instead of aborting the batch.
type Executor struct {
	toolbox *Toolbox
	config  ToolConfig
}

var _ ToolExecutor = (*Executor)(nil)

func NewExecutor(toolbox *Toolbox, config ToolConfig) *Executor {
	return &Executor{
		toolbox: toolbox,
		config:  config,
	}
}

func (e *Executor) Config() ToolConfig {
	return e.config
}

// ExecuteToolCall executes a single tool call
func (e *Executor) ExecuteToolCall(ctx context.Context, toolCall ToolCall) *ToolResult {
	start := time.Now()

	events.PublishEventToContext(ctx, events.NewToolCallExecuteEvent(
		events.MetadataFromContext(ctx),
		events.ToolCall{ID: toolCall.ID, Name: toolCall.Name, Input: compactJSON(toolCall.Arguments)},
	))

	value, err := e.execute(ctx, toolCall)
	result := &ToolResult{
		ID:       toolCall.ID,
		Name:     toolCall.Name,
		Duration: time.Since(start),
	}
	if err != nil {
		result.Error = errorMessage(toolCall.Name, err)
		log.Debug().
			Str("tool", toolCall.Name).
			Str("call_id", toolCall.ID).
			Err(err).
			Msg("tool call failed")
	} else {
		result.Result = value
	}

	events.PublishEventToContext(ctx, events.NewToolCallExecutionResultEvent(
		events.MetadataFromContext(ctx),
		events.ToolResult{ID: toolCall.ID, Name: toolCall.Name, Result: resultString(value), Error: result.Error},
	))

	return result
}

func (e *Executor) execute(ctx context.Context, toolCall ToolCall) (any, error) {
	def, err := e.toolbox.Registry().GetTool(toolCall.Name)
	if err != nil {
		return nil, &ToolError{ToolName: toolCall.Name, ToolID: toolCall.ID, Type: ErrorTypeNotFound, Message: err.Error()}
	}
	if !e.config.IsToolAllowed(toolCall.Name) {
		return nil, &ToolError{ToolName: toolCall.Name, ToolID: toolCall.ID, Type: ErrorTypeNotAllowed, Message: "not allowed"}
	}
	handler, ok := e.toolbox.Handler(toolCall.Name)
	if !ok {
		return nil, &ToolError{ToolName: toolCall.Name, ToolID: toolCall.ID, Type: ErrorTypeNotFound, Message: "no handler bound"}
	}
	if e.config.ValidateArguments {
		if err := ValidateArguments(*def, toolCall.Arguments); err != nil {
			return nil, err
		}
	}

	if e.config.ExecutionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.ExecutionTimeout)
		defer cancel()
	}

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: &ToolError{
					ToolName: toolCall.Name,
					ToolID:   toolCall.ID,
					Type:     ErrorTypePanic,
					Message:  fmt.Sprintf("panic: %v", r),
				}}
			}
		}()
		v, err := handler.Handle(ctx, toolCall.Arguments)
		done <- outcome{value: v, err: err}
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "tool %s", toolCall.Name)
	}
}

// ExecuteToolCalls runs one batch concurrently, bounded by MaxParallelTools.
// Results are returned in the order of toolCalls, each matched by ID. The only
// error is the cancellation of ctx.
func (e *Executor) ExecuteToolCalls(ctx context.Context, toolCalls []ToolCall) ([]*ToolResult, error) {
	if len(toolCalls) == 0 {
		return nil, nil
	}

	results := make([]*ToolResult, len(toolCalls))
	g := &errgroup.Group{}
	if e.config.MaxParallelTools > 0 {
		g.SetLimit(e.config.MaxParallelTools)
	}
	for i := range toolCalls {
		i := i
		g.Go(func() error {
			results[i] = e.ExecuteToolCall(ctx, toolCalls[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func errorMessage(name string, err error) string {
	var te *ToolError
	if errors.As(err, &te) {
		switch te.Type {
		case ErrorTypeNotFound:
			return fmt.Sprintf("Tool not found: %s", name)
		case ErrorTypeNotAllowed:
			return fmt.Sprintf("Tool not allowed: %s", name)
		case ErrorTypeValidation:
			return fmt.Sprintf("Invalid arguments for %s: %s", name, te.Message)
		default:
			return fmt.Sprintf("Tool execution failed: %s", te.Message)
		}
	}
	return fmt.Sprintf("Tool execution failed: %s", err.Error())
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var tmp interface{}
	if err := json.Unmarshal(raw, &tmp); err != nil {
		return string(raw)
	}
	b, err := json.Marshal(tmp)
	if err != nil {
		return string(raw)
	}
	return string(b)
}

func resultString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
