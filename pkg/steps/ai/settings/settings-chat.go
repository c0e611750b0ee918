package settings

import (
	"github.com/huandu/go-clone"

	"github.com/go-go-golems/velocity/pkg/steps/ai/types"
)

type ChatSettings struct {
	ApiType           *types.ApiType    `yaml:"api_type,omitempty" mapstructure:"provider"`
	Engine            *string           `yaml:"engine,omitempty" mapstructure:"model"`
	MaxResponseTokens *int              `yaml:"max_response_tokens,omitempty" mapstructure:"max-response-tokens"`
	Temperature       *float64          `yaml:"temperature,omitempty" mapstructure:"temperature"`
	APIKeys           map[string]string `yaml:"api_keys,omitempty"`
	BaseUrls          map[string]string `yaml:"base_urls,omitempty"`
}

func NewChatSettings() *ChatSettings {
	apiType := types.ApiTypeGemini
	return &ChatSettings{
		ApiType:  &apiType,
		APIKeys:  map[string]string{},
		BaseUrls: map[string]string{},
	}
}

// Provider returns the configured provider, gemini when unset.
func (s *ChatSettings) Provider() types.ApiType {
	if s == nil || s.ApiType == nil || *s.ApiType == "" {
		return types.ApiTypeGemini
	}
	return *s.ApiType
}

// Model returns the configured model or the provider default.
func (s *ChatSettings) Model() string {
	if s != nil && s.Engine != nil && *s.Engine != "" {
		return *s.Engine
	}
	return types.DefaultModels[s.Provider()]
}

// APIKey returns the "<provider>-api-key" entry.
func (s *ChatSettings) APIKey(provider types.ApiType) string {
	if s == nil {
		return ""
	}
	return s.APIKeys[string(provider)+"-api-key"]
}

// BaseURL returns the "<provider>-base-url" entry.
func (s *ChatSettings) BaseURL(provider types.ApiType) string {
	if s == nil {
		return ""
	}
	return s.BaseUrls[string(provider)+"-base-url"]
}

func (s *ChatSettings) Clone() *ChatSettings {
	return clone.Clone(s).(*ChatSettings)
}
