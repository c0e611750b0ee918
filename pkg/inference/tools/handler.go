package tools

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// Handler executes one tool. Arguments arrive as the JSON object the model produced.
type Handler interface {
	Handle(ctx context.Context, args json.RawMessage) (any, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, args json.RawMessage) (any, error)

func (f HandlerFunc) Handle(ctx context.Context, args json.RawMessage) (any, error) {
	return f(ctx, args)
}

type typedHandler[In any, Out any] struct {
	fn func(context.Context, In) (Out, error)
}

// NewHandler binds a strongly typed function: arguments are decoded into In before the call.
func NewHandler[In any, Out any](fn func(context.Context, In) (Out, error)) Handler {
	return typedHandler[In, Out]{fn: fn}
}

func (h typedHandler[In, Out]) Handle(ctx context.Context, args json.RawMessage) (any, error) {
	var in In
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, &ToolError{Type: ErrorTypeValidation, Message: errors.Wrap(err, "decode arguments").Error()}
		}
	}
	out, err := h.fn(ctx, in)
	if err != nil {
		return nil, err
	}
	return out, nil
}
