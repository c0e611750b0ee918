package settings

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/velocity/pkg/steps/ai/types"
)

type StepSettings struct {
	Chat    *ChatSettings    `yaml:"chat,omitempty"`
	Client  *ClientSettings  `yaml:"client,omitempty"`
	Tools   *ToolSettings    `yaml:"tools,omitempty"`
	Media   *MediaSettings   `yaml:"media,omitempty"`
	Storage *StorageSettings `yaml:"storage,omitempty"`
}

func NewStepSettings() *StepSettings {
	return &StepSettings{
		Chat:    NewChatSettings(),
		Client:  NewClientSettings(),
		Tools:   NewToolSettings(),
		Media:   NewMediaSettings(),
		Storage: &StorageSettings{},
	}
}

// NewStepSettingsFromYAML decodes settings over the defaults.
func NewStepSettingsFromYAML(s io.Reader) (*StepSettings, error) {
	ret := NewStepSettings()
	if err := yaml.NewDecoder(s).Decode(ret); err != nil {
		return nil, errors.Wrap(err, "decode settings")
	}
	if ret.Chat.APIKeys == nil {
		ret.Chat.APIKeys = map[string]string{}
	}
	if ret.Chat.BaseUrls == nil {
		ret.Chat.BaseUrls = map[string]string{}
	}
	return ret, nil
}

var supportedProviders = []types.ApiType{types.ApiTypeGemini, types.ApiTypeOpenAI, types.ApiTypeClaude}

// UpdateFromViper overrides settings with every key set in v (flags, env, config file).
func (s *StepSettings) UpdateFromViper(v *viper.Viper) error {
	if v.IsSet("provider") {
		p := types.ApiType(v.GetString("provider"))
		if p == "anthropic" {
			p = types.ApiTypeClaude
		}
		known := false
		for _, sp := range supportedProviders {
			known = known || sp == p
		}
		if !known {
			return errors.Errorf("unsupported provider %q", p)
		}
		s.Chat.ApiType = &p
	}
	if m := v.GetString("model"); m != "" {
		s.Chat.Engine = &m
	}
	if v.IsSet("temperature") {
		t := v.GetFloat64("temperature")
		s.Chat.Temperature = &t
	}
	if v.IsSet("max-response-tokens") {
		n := v.GetInt("max-response-tokens")
		s.Chat.MaxResponseTokens = &n
	}

	// the generic api-key/base-url apply to the selected provider
	for _, p := range supportedProviders {
		if k := v.GetString(string(p) + "-api-key"); k != "" {
			s.Chat.APIKeys[string(p)+"-api-key"] = k
		}
		if u := v.GetString(string(p) + "-base-url"); u != "" {
			s.Chat.BaseUrls[string(p)+"-base-url"] = u
		}
	}
	if k := v.GetString("api-key"); k != "" {
		s.Chat.APIKeys[string(s.Chat.Provider())+"-api-key"] = k
	}
	if u := v.GetString("base-url"); u != "" {
		s.Chat.BaseUrls[string(s.Chat.Provider())+"-base-url"] = u
	}

	if v.IsSet("timeout") {
		d := v.GetDuration("timeout")
		s.Client.Timeout = &d
	}

	if v.IsSet("max-iterations") {
		s.Tools.MaxIterations = v.GetInt("max-iterations")
	}
	if v.IsSet("max-parallel-tools") {
		s.Tools.MaxParallelTools = v.GetInt("max-parallel-tools")
	}
	if v.IsSet("tool-timeout") {
		s.Tools.ToolTimeout = v.GetDuration("tool-timeout")
	}

	setString(v, "speech-provider", &s.Media.SpeechProvider)
	setString(v, "speech-model", &s.Media.SpeechModel)
	setString(v, "speech-voice", &s.Media.SpeechVoice)
	setString(v, "video-model", &s.Media.VideoModel)
	if v.IsSet("video-poll-interval") {
		s.Media.VideoPollInterval = v.GetDuration("video-poll-interval")
	}
	if v.IsSet("video-max-polls") {
		s.Media.VideoMaxPolls = v.GetInt("video-max-polls")
	}

	setString(v, "history-db", &s.Storage.HistoryDB)
	setString(v, "artifacts-db", &s.Storage.ArtifactsDB)

	return nil
}

func setString(v *viper.Viper, key string, dst *string) {
	if s := v.GetString(key); s != "" {
		*dst = s
	}
}

// GetMetadata is a flat description of the settings, without secrets, for events and logs.
func (s *StepSettings) GetMetadata() map[string]interface{} {
	metadata := map[string]interface{}{
		"provider": string(s.Chat.Provider()),
		"model":    s.Chat.Model(),
	}
	if s.Chat.Temperature != nil {
		metadata["temperature"] = *s.Chat.Temperature
	}
	if s.Chat.MaxResponseTokens != nil {
		metadata["max-response-tokens"] = *s.Chat.MaxResponseTokens
	}
	if u := s.Chat.BaseURL(s.Chat.Provider()); u != "" {
		metadata["base-url"] = u
	}
	if s.Client != nil && s.Client.Timeout != nil {
		metadata["timeout"] = s.Client.Timeout.String()
	}
	if s.Tools != nil {
		metadata["max-iterations"] = s.Tools.MaxIterations
		metadata["max-parallel-tools"] = s.Tools.MaxParallelTools
		if s.Tools.ToolTimeout > time.Duration(0) {
			metadata["tool-timeout"] = s.Tools.ToolTimeout.String()
		}
	}
	return metadata
}

func (s *StepSettings) Clone() *StepSettings {
	return &StepSettings{
		Chat:    s.Chat.Clone(),
		Client:  s.Client.Clone(),
		Tools:   s.Tools.Clone(),
		Media:   s.Media.Clone(),
		Storage: s.Storage.Clone(),
	}
}
