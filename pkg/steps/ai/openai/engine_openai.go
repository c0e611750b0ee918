package openai

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/steps/ai/settings"
	"github.com/go-go-golems/velocity/pkg/steps/ai/types"
)

const provider = string(types.ApiTypeOpenAI)

// OpenAIEngine implements engine.Engine with the chat completions API.
type OpenAIEngine struct {
	settings *settings.StepSettings
}

func NewOpenAIEngine(settings *settings.StepSettings) (*OpenAIEngine, error) {
	if settings == nil || settings.Chat == nil {
		return nil, errors.New("no chat settings")
	}
	return &OpenAIEngine{settings: settings}, nil
}

func (e *OpenAIEngine) Provider() string {
	return provider
}

func (e *OpenAIEngine) Model() string {
	return e.settings.Chat.Model()
}

func (e *OpenAIEngine) RunInference(ctx context.Context, req *engine.Request) (*engine.Response, error) {
	client, err := MakeClient(e.settings)
	if err != nil {
		return nil, engine.NewBackendError(provider, "configure", err)
	}

	creq, err := MakeCompletionRequest(e.settings, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, *creq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, engine.NewBackendError(provider, "create chat completion", err)
	}

	ret := ResponseFromCompletion(resp)
	log.Debug().
		Str("model", creq.Model).
		Int("messages", len(creq.Messages)).
		Int("tool_calls", len(ret.ToolCalls)).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("duration", time.Since(start)).
		Msg("OpenAI RunInference completed")
	return ret, nil
}

var _ engine.Engine = (*OpenAIEngine)(nil)
var _ engine.Named = (*OpenAIEngine)(nil)
