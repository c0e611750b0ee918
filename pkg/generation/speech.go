package generation

import (
	"context"
	"encoding/base64"
	"io"
	"strings"

	"github.com/pkg/errors"
	go_openai "github.com/sashabaranov/go-openai"
	genai "google.golang.org/genai"

	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/steps/ai/openai"
	"github.com/go-go-golems/velocity/pkg/steps/ai/settings"
	"github.com/go-go-golems/velocity/pkg/steps/ai/types"
)

const (
	DefaultGeminiSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultGeminiSpeechVoice = "Kore"
	DefaultOpenAISpeechModel = "tts-1"
	DefaultOpenAISpeechVoice = "alloy"
)

// SpeechSynthesizer turns a script into base64 encoded audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// NewSpeechSynthesizer returns the synthesizer named by the speech-provider setting.
// Without one, Gemini is used when it is the chat provider or has a key, OpenAI otherwise.
func NewSpeechSynthesizer(s *settings.StepSettings) SpeechSynthesizer {
	switch types.ApiType(mediaSettings(s).SpeechProvider) {
	case types.ApiTypeOpenAI:
		return NewOpenAISpeech(s)
	case types.ApiTypeGemini:
		return NewGeminiSpeech(s)
	}
	if s.Chat.Provider() == types.ApiTypeGemini || !engine.IsPlaceholderKey(s.Chat.APIKey(types.ApiTypeGemini)) {
		return NewGeminiSpeech(s)
	}
	return NewOpenAISpeech(s)
}

// ContentGenerator is the part of the genai client used for speech.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiSpeech asks a Gemini TTS model for an audio-only response.
type GeminiSpeech struct {
	settings *settings.StepSettings
	models   ContentGenerator
}

var _ SpeechSynthesizer = (*GeminiSpeech)(nil)

type GeminiSpeechOption func(*GeminiSpeech)

// WithContentGenerator replaces the genai client built from the settings.
func WithContentGenerator(m ContentGenerator) GeminiSpeechOption {
	return func(g *GeminiSpeech) {
		g.models = m
	}
}

func NewGeminiSpeech(s *settings.StepSettings, opts ...GeminiSpeechOption) *GeminiSpeech {
	g := &GeminiSpeech{settings: s}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *GeminiSpeech) Synthesize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("speech: empty script")
	}
	apiKey, err := geminiKey(g.settings)
	if err != nil {
		return "", errors.Wrap(err, "speech")
	}
	models := g.models
	if models == nil {
		client, err := makeGenaiClient(ctx, g.settings, apiKey)
		if err != nil {
			return "", errors.Wrap(err, "speech")
		}
		models = client.Models
	}

	media := mediaSettings(g.settings)
	model := firstNonEmpty(media.SpeechModel, DefaultGeminiSpeechModel)
	voice := firstNonEmpty(media.SpeechVoice, DefaultGeminiSpeechVoice)
	resp, err := models.GenerateContent(ctx, model, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "speech: generate")
	}
	audio := inlineAudio(resp)
	if len(audio) == 0 {
		return "", errors.New("speech: empty audio")
	}
	return base64.StdEncoding.EncodeToString(audio), nil
}

func inlineAudio(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
			return p.InlineData.Data
		}
	}
	return nil
}

// OpenAISpeech uses the OpenAI text-to-speech endpoint.
type OpenAISpeech struct {
	settings *settings.StepSettings
}

var _ SpeechSynthesizer = (*OpenAISpeech)(nil)

func NewOpenAISpeech(s *settings.StepSettings) *OpenAISpeech {
	return &OpenAISpeech{settings: s}
}

func (o *OpenAISpeech) Synthesize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("speech: empty script")
	}
	client, err := openai.MakeClient(o.settings)
	if err != nil {
		return "", err
	}

	media := mediaSettings(o.settings)
	resp, err := client.CreateSpeech(ctx, go_openai.CreateSpeechRequest{
		Model:          go_openai.SpeechModel(firstNonEmpty(media.SpeechModel, DefaultOpenAISpeechModel)),
		Input:          text,
		Voice:          go_openai.SpeechVoice(firstNonEmpty(media.SpeechVoice, DefaultOpenAISpeechVoice)),
		ResponseFormat: go_openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return "", errors.Wrap(err, "speech: create")
	}
	defer func() { _ = resp.Close() }()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return "", errors.Wrap(err, "speech: read audio")
	}
	if len(audio) == 0 {
		return "", errors.New("speech: empty audio")
	}
	return base64.StdEncoding.EncodeToString(audio), nil
}

func firstNonEmpty(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
