package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// ParameterType is the JSON type of a tool parameter.
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeNumber  ParameterType = "number"
	TypeInteger ParameterType = "integer"
	TypeBoolean ParameterType = "boolean"
	TypeArray   ParameterType = "array"
	TypeObject  ParameterType = "object"
)

func (t ParameterType) valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject:
		return true
	}
	return false
}

// Parameter is one typed field of a tool's argument object.
type Parameter struct {
	Name        string        `json:"name" yaml:"name"`
	Type        ParameterType `json:"type" yaml:"type"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool          `json:"required" yaml:"required"`
	// Items is the element type of array parameters.
	Items ParameterType `json:"items,omitempty" yaml:"items,omitempty"`
}

// RequiredString declares a mandatory string argument.
func RequiredString(name, description string) Parameter {
	return Parameter{Name: name, Type: TypeString, Description: description, Required: true}
}

// OptionalString declares an optional string argument.
func OptionalString(name, description string) Parameter {
	return Parameter{Name: name, Type: TypeString, Description: description}
}

// ToolDefinition is the immutable declaration of a tool: what the model sees.
// Behavior is bound separately, see Toolbox.
type ToolDefinition struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Parameters  []Parameter `json:"parameters" yaml:"parameters"`
}

func NewToolDefinition(name, description string, params ...Parameter) ToolDefinition {
	return ToolDefinition{Name: name, Description: description, Parameters: params}
}

// Validate checks the declaration itself: a name, known parameter types, unique parameter names.
func (d ToolDefinition) Validate() error {
	if d.Name == "" {
		return errors.New("tool name cannot be empty")
	}
	seen := map[string]bool{}
	for _, p := range d.Parameters {
		if p.Name == "" {
			return errors.Errorf("tool %s: parameter name cannot be empty", d.Name)
		}
		if seen[p.Name] {
			return errors.Errorf("tool %s: duplicate parameter %s", d.Name, p.Name)
		}
		seen[p.Name] = true
		if !p.Type.valid() {
			return errors.Errorf("tool %s: parameter %s has unknown type %q", d.Name, p.Name, p.Type)
		}
		if p.Items != "" && !p.Items.valid() {
			return errors.Errorf("tool %s: parameter %s has unknown item type %q", d.Name, p.Name, p.Items)
		}
	}
	return nil
}

// RequiredParameters returns the names of the mandatory parameters, in declaration order.
func (d ToolDefinition) RequiredParameters() []string {
	var out []string
	for _, p := range d.Parameters {
		if p.Required {
			out = append(out, p.Name)
		}
	}
	return out
}

// JSONSchema renders the parameter list as a JSON schema object, properties in declaration order.
func (d ToolDefinition) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	for _, p := range d.Parameters {
		s := &jsonschema.Schema{
			Type:        string(p.Type),
			Description: p.Description,
		}
		if p.Type == TypeArray {
			items := p.Items
			if items == "" {
				items = TypeString
			}
			s.Items = &jsonschema.Schema{Type: string(items)}
		}
		props.Set(p.Name, s)
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   d.RequiredParameters(),
	}
}

// SchemaJSON is JSONSchema marshalled to bytes.
func (d ToolDefinition) SchemaJSON() ([]byte, error) {
	b, err := json.Marshal(d.JSONSchema())
	if err != nil {
		return nil, errors.Wrapf(err, "marshal schema of %s", d.Name)
	}
	return b, nil
}

// SchemaMap is the schema as a generic map, the shape most provider SDKs accept.
func (d ToolDefinition) SchemaMap() map[string]any {
	b, err := d.SchemaJSON()
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{"type": "object"}
	}
	return m
}

// ToolCall represents a request to execute a tool
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult represents the result of a tool execution
type ToolResult struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Result   interface{}   `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

const (
	ErrorTypeNotFound   = "not_found"
	ErrorTypeValidation = "validation"
	ErrorTypeExecution  = "execution"
	ErrorTypePanic      = "panic"
	ErrorTypeNotAllowed = "not_allowed"
)

// ToolError represents an error that occurred during tool execution
type ToolError struct {
	ToolName string `json:"tool_name"`
	ToolID   string `json:"tool_id,omitempty"`
	Type     string `json:"type"`
	Message  string `json:"message"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error [%s] %s: %s", e.Type, e.ToolName, e.Message)
}
