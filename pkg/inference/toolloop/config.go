package toolloop

// DefaultMaxIterations is the number of tool rounds a request may run. The backend is
// called at most DefaultMaxIterations+1 times.
const DefaultMaxIterations = 10

// NoTextNotice is returned when the model finished without any text.
const NoTextNotice = "I processed the request but the model returned no text content."

// LoopConfig configures the orchestration loop.
type LoopConfig struct {
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
	// SystemInstruction is sent with every backend call. When empty, the system
	// blocks of the turn are used.
	SystemInstruction string `json:"system_instruction" yaml:"system_instruction"`
}

func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		MaxIterations: DefaultMaxIterations,
	}
}

func (c LoopConfig) WithMaxIterations(maxIterations int) LoopConfig {
	c.MaxIterations = maxIterations
	return c
}

func (c LoopConfig) WithSystemInstruction(s string) LoopConfig {
	c.SystemInstruction = s
	return c
}
