package tools

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Toolbox binds declared tools to their handlers. Every declaration in the
// registry must end up with exactly one handler, see Validate.
type Toolbox struct {
	registry ToolRegistry

	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewToolbox(registry ToolRegistry) *Toolbox {
	return &Toolbox{
		registry: registry,
		handlers: map[string]Handler{},
	}
}

// Declare registers the declaration and binds its handler in one step.
func (tb *Toolbox) Declare(def ToolDefinition, h Handler) error {
	if err := tb.registry.RegisterTool(def); err != nil {
		return err
	}
	return tb.Bind(def.Name, h)
}

// Bind attaches a handler to a declared tool.
func (tb *Toolbox) Bind(name string, h Handler) error {
	if h == nil {
		return errors.Errorf("nil handler for tool %s", name)
	}
	if !tb.registry.HasTool(name) {
		return errors.Wrapf(ErrToolNotFound, "cannot bind handler to undeclared tool %s", name)
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	if _, ok := tb.handlers[name]; ok {
		return errors.Errorf("tool %s already has a handler", name)
	}
	tb.handlers[name] = h
	return nil
}

// Validate fails if a declared tool has no handler.
func (tb *Toolbox) Validate() error {
	tb.mu.RLock()
	defer tb.mu.RUnlock()

	var missing []string
	for _, def := range tb.registry.ListTools() {
		if _, ok := tb.handlers[def.Name]; !ok {
			missing = append(missing, def.Name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.Errorf("tools without handler: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (tb *Toolbox) Handler(name string) (Handler, bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	h, ok := tb.handlers[name]
	return h, ok
}

func (tb *Toolbox) Registry() ToolRegistry {
	return tb.registry
}
