package types

type ApiType string

const (
	ApiTypeGemini ApiType = "gemini"
	ApiTypeOpenAI ApiType = "openai"
	ApiTypeClaude ApiType = "claude"
)

// DefaultModels is the model used per provider when none is configured.
var DefaultModels = map[ApiType]string{
	ApiTypeGemini: "gemini-3-flash-preview",
	ApiTypeOpenAI: "gpt-4o-mini",
	ApiTypeClaude: "claude-sonnet-4-5",
}
