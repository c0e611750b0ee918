package settings

import (
	"time"

	"github.com/huandu/go-clone"
)

// ToolSettings configures the orchestration loop and tool execution.
type ToolSettings struct {
	MaxIterations    int           `yaml:"max_iterations" mapstructure:"max-iterations"`
	MaxParallelTools int           `yaml:"max_parallel_tools" mapstructure:"max-parallel-tools"`
	ToolTimeout      time.Duration `yaml:"tool_timeout" mapstructure:"tool-timeout"`
}

func NewToolSettings() *ToolSettings {
	return &ToolSettings{
		MaxIterations:    10,
		MaxParallelTools: 4,
	}
}

func (s *ToolSettings) Clone() *ToolSettings {
	return clone.Clone(s).(*ToolSettings)
}

// MediaSettings configures speech synthesis and video generation.
// Empty speech model and voice select the defaults of the speech provider.
type MediaSettings struct {
	// SpeechProvider is "gemini", "openai" or empty to follow the configured keys.
	SpeechProvider    string        `yaml:"speech_provider" mapstructure:"speech-provider"`
	SpeechModel       string        `yaml:"speech_model" mapstructure:"speech-model"`
	SpeechVoice       string        `yaml:"speech_voice" mapstructure:"speech-voice"`
	VideoModel        string        `yaml:"video_model" mapstructure:"video-model"`
	VideoPollInterval time.Duration `yaml:"video_poll_interval" mapstructure:"video-poll-interval"`
	VideoMaxPolls     int           `yaml:"video_max_polls" mapstructure:"video-max-polls"`
}

func NewMediaSettings() *MediaSettings {
	return &MediaSettings{
		VideoModel:        "veo-3.1-fast-generate-preview",
		VideoPollInterval: 2 * time.Second,
		VideoMaxPolls:     20,
	}
}

func (s *MediaSettings) Clone() *MediaSettings {
	return clone.Clone(s).(*MediaSettings)
}

// StorageSettings points at the SQLite databases. Empty paths mean in-memory stores.
type StorageSettings struct {
	HistoryDB   string `yaml:"history_db" mapstructure:"history-db"`
	ArtifactsDB string `yaml:"artifacts_db" mapstructure:"artifacts-db"`
}

func (s *StorageSettings) Clone() *StorageSettings {
	return clone.Clone(s).(*StorageSettings)
}
