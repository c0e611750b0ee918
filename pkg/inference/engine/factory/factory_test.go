package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/steps/ai/claude"
	"github.com/go-go-golems/velocity/pkg/steps/ai/gemini"
	"github.com/go-go-golems/velocity/pkg/steps/ai/openai"
	"github.com/go-go-golems/velocity/pkg/steps/ai/settings"
	"github.com/go-go-golems/velocity/pkg/steps/ai/types"
)

func settingsFor(p types.ApiType, key string) *settings.StepSettings {
	s := settings.NewStepSettings()
	s.Chat.ApiType = &p
	if key != "" {
		s.Chat.APIKeys[string(p)+"-api-key"] = key
	}
	return s
}

func TestStandardEngineFactory_Providers(t *testing.T) {
	f := NewStandardEngineFactory()
	assert.Equal(t, []string{"gemini", "openai", "claude"}, f.SupportedProviders())
	assert.Equal(t, "gemini", f.DefaultProvider())
}

func TestStandardEngineFactory_CreateEngine(t *testing.T) {
	f := NewStandardEngineFactory()

	e, err := f.CreateEngine(settingsFor(types.ApiTypeGemini, "g-key"))
	require.NoError(t, err)
	assert.IsType(t, &gemini.GeminiEngine{}, e)

	e, err = f.CreateEngine(settingsFor(types.ApiTypeOpenAI, "sk-key"))
	require.NoError(t, err)
	assert.IsType(t, &openai.OpenAIEngine{}, e)

	e, err = f.CreateEngine(settingsFor(types.ApiTypeClaude, "sk-ant"))
	require.NoError(t, err)
	assert.IsType(t, &claude.ClaudeEngine{}, e)
}

func TestStandardEngineFactory_PlaceholderKeyIsUnavailable(t *testing.T) {
	f := NewStandardEngineFactory()

	for _, key := range []string{"", "dummy_key"} {
		e, err := f.CreateEngine(settingsFor(types.ApiTypeGemini, key))
		require.NoError(t, err)
		u, ok := e.(*engine.Unavailable)
		require.True(t, ok)
		assert.Equal(t, "gemini", u.Provider())
	}
}

func TestStandardEngineFactory_Errors(t *testing.T) {
	f := NewStandardEngineFactory()

	_, err := f.CreateEngine(nil)
	assert.Error(t, err)

	_, err = f.CreateEngine(settingsFor(types.ApiType("ollama"), "k"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider ollama")
}
