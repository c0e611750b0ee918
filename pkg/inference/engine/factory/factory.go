package factory

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/steps/ai/claude"
	"github.com/go-go-golems/velocity/pkg/steps/ai/gemini"
	"github.com/go-go-golems/velocity/pkg/steps/ai/openai"
	"github.com/go-go-golems/velocity/pkg/steps/ai/settings"
	"github.com/go-go-golems/velocity/pkg/steps/ai/types"
)

// EngineFactory creates inference engines from provider settings, so callers never
// depend on a concrete backend.
type EngineFactory interface {
	// CreateEngine picks the backend from settings.Chat.ApiType.
	CreateEngine(settings *settings.StepSettings) (engine.Engine, error)
	SupportedProviders() []string
	DefaultProvider() string
}

// StandardEngineFactory builds the gemini, openai and claude engines.
// A provider without a usable key gets engine.Unavailable, which drives the
// orchestrator into offline mode instead of failing at construction.
type StandardEngineFactory struct{}

func NewStandardEngineFactory() *StandardEngineFactory {
	return &StandardEngineFactory{}
}

func (f *StandardEngineFactory) CreateEngine(s *settings.StepSettings) (engine.Engine, error) {
	if s == nil || s.Chat == nil {
		return nil, errors.New("settings cannot be nil")
	}

	provider := strings.ToLower(string(s.Chat.Provider()))
	if provider == "anthropic" {
		provider = string(types.ApiTypeClaude)
	}
	if !f.supports(provider) {
		return nil, errors.Errorf("unsupported provider %s. Supported providers: %s",
			provider, strings.Join(f.SupportedProviders(), ", "))
	}

	if engine.IsPlaceholderKey(s.Chat.APIKey(types.ApiType(provider))) {
		log.Warn().Str("provider", provider).Msg("No API key configured, running offline")
		return engine.NewUnavailable(provider), nil
	}

	switch types.ApiType(provider) {
	case types.ApiTypeOpenAI:
		return openai.NewOpenAIEngine(s)
	case types.ApiTypeClaude:
		return claude.NewClaudeEngine(s)
	default:
		return gemini.NewGeminiEngine(s)
	}
}

func (f *StandardEngineFactory) supports(provider string) bool {
	for _, p := range f.SupportedProviders() {
		if p == provider {
			return true
		}
	}
	return false
}

func (f *StandardEngineFactory) SupportedProviders() []string {
	return []string{
		string(types.ApiTypeGemini),
		string(types.ApiTypeOpenAI),
		string(types.ApiTypeClaude),
	}
}

func (f *StandardEngineFactory) DefaultProvider() string {
	return string(types.ApiTypeGemini)
}

var _ EngineFactory = (*StandardEngineFactory)(nil)
