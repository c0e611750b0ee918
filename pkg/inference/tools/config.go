package tools

import "time"

// ToolConfig specifies how tool calls are executed.
type ToolConfig struct {
	// ExecutionTimeout bounds a single tool call. Zero disables the bound.
	ExecutionTimeout time.Duration `json:"execution_timeout" yaml:"execution_timeout"`
	// MaxParallelTools caps how many calls of one batch run at once. <= 0 means unbounded.
	MaxParallelTools  int      `json:"max_parallel_tools" yaml:"max_parallel_tools"`
	ValidateArguments bool     `json:"validate_arguments" yaml:"validate_arguments"`
	AllowedTools      []string `json:"allowed_tools" yaml:"allowed_tools"`
}

const DefaultMaxParallelTools = 4

func DefaultToolConfig() ToolConfig {
	return ToolConfig{
		ExecutionTimeout:  0,
		MaxParallelTools:  DefaultMaxParallelTools,
		ValidateArguments: true,
		AllowedTools:      nil, // nil means all tools are allowed
	}
}

func (tc ToolConfig) WithExecutionTimeout(timeout time.Duration) ToolConfig {
	tc.ExecutionTimeout = timeout
	return tc
}

func (tc ToolConfig) WithMaxParallelTools(maxParallel int) ToolConfig {
	tc.MaxParallelTools = maxParallel
	return tc
}

func (tc ToolConfig) WithValidateArguments(validate bool) ToolConfig {
	tc.ValidateArguments = validate
	return tc
}

func (tc ToolConfig) WithAllowedTools(toolNames []string) ToolConfig {
	tc.AllowedTools = toolNames
	return tc
}

// IsToolAllowed checks if a tool is allowed based on the configuration
func (tc ToolConfig) IsToolAllowed(toolName string) bool {
	if tc.AllowedTools == nil {
		return true
	}
	for _, allowed := range tc.AllowedTools {
		if allowed == toolName {
			return true
		}
	}
	return false
}
