package settings

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/velocity/pkg/steps/ai/types"
)

func TestDefaults(t *testing.T) {
	s := NewStepSettings()
	assert.Equal(t, types.ApiTypeGemini, s.Chat.Provider())
	assert.Equal(t, "gemini-3-flash-preview", s.Chat.Model())
	assert.Equal(t, 10, s.Tools.MaxIterations)
	assert.Equal(t, 4, s.Tools.MaxParallelTools)
	assert.Equal(t, 2*time.Second, s.Media.VideoPollInterval)
	assert.Equal(t, 20, s.Media.VideoMaxPolls)
	assert.Empty(t, s.Chat.APIKey(types.ApiTypeGemini))
}

func TestUpdateFromViper(t *testing.T) {
	v := viper.New()
	v.Set("provider", "anthropic")
	v.Set("api-key", "sk-ant")
	v.Set("openai-api-key", "sk-openai")
	v.Set("max-iterations", 5)
	v.Set("tool-timeout", "3s")
	v.Set("history-db", "/tmp/h.db")
	v.Set("video-max-polls", 3)

	s := NewStepSettings()
	require.NoError(t, s.UpdateFromViper(v))
	assert.Equal(t, types.ApiTypeClaude, s.Chat.Provider())
	assert.Equal(t, "sk-ant", s.Chat.APIKey(types.ApiTypeClaude))
	assert.Equal(t, "sk-openai", s.Chat.APIKey(types.ApiTypeOpenAI))
	assert.Equal(t, 5, s.Tools.MaxIterations)
	assert.Equal(t, 3*time.Second, s.Tools.ToolTimeout)
	assert.Equal(t, "/tmp/h.db", s.Storage.HistoryDB)
	assert.Equal(t, 3, s.Media.VideoMaxPolls)
	assert.Equal(t, "claude-sonnet-4-5", s.Chat.Model())

	v.Set("provider", "cohere")
	assert.Error(t, NewStepSettings().UpdateFromViper(v))
}

func TestFromYAMLAndClone(t *testing.T) {
	s, err := NewStepSettingsFromYAML(strings.NewReader(`
chat:
  api_type: openai
  engine: gpt-4o
  api_keys:
    openai-api-key: sk-1
tools:
  max_iterations: 7
`))
	require.NoError(t, err)
	assert.Equal(t, types.ApiTypeOpenAI, s.Chat.Provider())
	assert.Equal(t, "gpt-4o", s.Chat.Model())
	assert.Equal(t, "sk-1", s.Chat.APIKey(types.ApiTypeOpenAI))
	assert.Equal(t, 7, s.Tools.MaxIterations)
	// untouched sections keep their defaults
	assert.Equal(t, "veo-3.1-fast-generate-preview", s.Media.VideoModel)
	assert.Empty(t, s.Media.SpeechModel)

	c := s.Clone()
	c.Chat.APIKeys["openai-api-key"] = "changed"
	*c.Chat.Engine = "other"
	assert.Equal(t, "sk-1", s.Chat.APIKey(types.ApiTypeOpenAI))
	assert.Equal(t, "gpt-4o", s.Chat.Model())

	md := s.GetMetadata()
	assert.Equal(t, "openai", md["provider"])
	for _, v := range md {
		assert.NotEqual(t, "sk-1", v)
	}
}
