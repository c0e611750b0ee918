package tools

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrToolNotFound is returned by GetTool for undeclared names.
var ErrToolNotFound = errors.New("tool not found")

// ToolRegistry holds the tool declarations sent to the model.
// There is no removal: the catalog is fixed once the process is set up.
type ToolRegistry interface {
	RegisterTool(def ToolDefinition) error
	GetTool(name string) (*ToolDefinition, error)
	// ListTools returns the declarations in registration order.
	ListTools() []ToolDefinition
	HasTool(name string) bool
}

// InMemoryToolRegistry is a thread-safe, insertion-ordered ToolRegistry.
type InMemoryToolRegistry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]ToolDefinition
}

var _ ToolRegistry = (*InMemoryToolRegistry)(nil)

// NewInMemoryToolRegistry creates a new in-memory tool registry
func NewInMemoryToolRegistry() *InMemoryToolRegistry {
	return &InMemoryToolRegistry{
		tools: make(map[string]ToolDefinition),
	}
}

// RegisterTool adds a declaration. Names are unique.
func (r *InMemoryToolRegistry) RegisterTool(def ToolDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return errors.Errorf("tool %s is already registered", def.Name)
	}
	r.tools[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// GetTool retrieves a tool by name
func (r *InMemoryToolRegistry) GetTool(name string) (*ToolDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, errors.Wrapf(ErrToolNotFound, "%s", name)
	}

	toolCopy := tool
	toolCopy.Parameters = append([]Parameter(nil), tool.Parameters...)
	return &toolCopy, nil
}

func (r *InMemoryToolRegistry) ListTools() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

func (r *InMemoryToolRegistry) HasTool(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.tools[name]
	return exists
}

// Count returns the number of tools in the registry
func (r *InMemoryToolRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tools)
}
