package generation

import (
	"context"

	"github.com/pkg/errors"
	genai "google.golang.org/genai"

	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/steps/ai/settings"
	"github.com/go-go-golems/velocity/pkg/steps/ai/types"
)

func geminiKey(s *settings.StepSettings) (string, error) {
	apiKey := s.Chat.APIKey(types.ApiTypeGemini)
	if engine.IsPlaceholderKey(apiKey) {
		return "", engine.ErrMissingCredentials
	}
	return apiKey, nil
}

func makeGenaiClient(ctx context.Context, s *settings.StepSettings, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  s.Client.Client(),
		HTTPOptions: genai.HTTPOptions{BaseURL: s.Chat.BaseURL(types.ApiTypeGemini)},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}
	return client, nil
}

func mediaSettings(s *settings.StepSettings) *settings.MediaSettings {
	if s.Media == nil {
		return settings.NewMediaSettings()
	}
	return s.Media
}
