package middleware

import (
	"context"

	"github.com/go-go-golems/velocity/pkg/inference/engine"
)

// HandlerFunc runs one backend call.
type HandlerFunc func(ctx context.Context, req *engine.Request) (*engine.Response, error)

// Middleware wraps a HandlerFunc with additional functionality.
// Middleware are applied in order: Chain(m1, m2, m3) results in m1(m2(m3(handler))).
type Middleware func(HandlerFunc) HandlerFunc

// Chain composes multiple middleware into a single HandlerFunc.
func Chain(handler HandlerFunc, middlewares ...Middleware) HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// EngineWithMiddleware wraps an Engine with a middleware chain. It reports the
// provider and model of the wrapped engine.
type EngineWithMiddleware struct {
	inner   engine.Engine
	handler HandlerFunc
}

var _ engine.Engine = (*EngineWithMiddleware)(nil)
var _ engine.Named = (*EngineWithMiddleware)(nil)

func NewEngineWithMiddleware(e engine.Engine, middlewares ...Middleware) *EngineWithMiddleware {
	return &EngineWithMiddleware{
		inner:   e,
		handler: Chain(e.RunInference, middlewares...),
	}
}

func (e *EngineWithMiddleware) RunInference(ctx context.Context, req *engine.Request) (*engine.Response, error) {
	return e.handler(ctx, req)
}

func (e *EngineWithMiddleware) Unwrap() engine.Engine {
	return e.inner
}

func (e *EngineWithMiddleware) Provider() string {
	if n, ok := e.inner.(engine.Named); ok {
		return n.Provider()
	}
	return ""
}

func (e *EngineWithMiddleware) Model() string {
	if n, ok := e.inner.(engine.Named); ok {
		return n.Model()
	}
	return ""
}
