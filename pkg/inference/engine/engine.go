package engine

import (
	"context"

	"github.com/go-go-golems/velocity/pkg/inference/tools"
	"github.com/go-go-golems/velocity/pkg/turns"
)

// Request is everything a backend sees for one call: the full transcript, the tool
// catalog in registration order and the system instruction.
type Request struct {
	Turn              *turns.Turn
	Tools             []tools.ToolDefinition
	SystemInstruction string
}

// Response is one backend answer: text, invocations, or both.
type Response struct {
	Text      string
	ToolCalls []turns.ToolCall
	// StopReason is provider-specific and informational only.
	StopReason string
}

// HasToolCalls reports whether the model asked for at least one invocation.
func (r *Response) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}

// Engine is the sole integration point with a hosted model. Engines are stateless
// between calls: the whole transcript is sent every time.
type Engine interface {
	RunInference(ctx context.Context, req *Request) (*Response, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, req *Request) (*Response, error)

func (f EngineFunc) RunInference(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Named is implemented by engines that report their provider and model in events.
type Named interface {
	Provider() string
	Model() string
}
