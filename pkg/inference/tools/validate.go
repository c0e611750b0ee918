package tools

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateArguments checks raw arguments against the declaration's schema.
func ValidateArguments(def ToolDefinition, args json.RawMessage) error {
	schema, err := def.SchemaJSON()
	if err != nil {
		return err
	}
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(args))
	if err != nil {
		return &ToolError{ToolName: def.Name, Type: ErrorTypeValidation, Message: err.Error()}
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return &ToolError{ToolName: def.Name, Type: ErrorTypeValidation, Message: strings.Join(msgs, "; ")}
}
