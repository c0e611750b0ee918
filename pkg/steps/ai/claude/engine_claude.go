package claude

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/steps/ai/settings"
	"github.com/go-go-golems/velocity/pkg/steps/ai/types"
)

const provider = string(types.ApiTypeClaude)

// ClaudeEngine implements engine.Engine with the Anthropic messages API.
type ClaudeEngine struct {
	settings *settings.StepSettings
}

func NewClaudeEngine(settings *settings.StepSettings) (*ClaudeEngine, error) {
	if settings == nil || settings.Chat == nil {
		return nil, errors.New("no chat settings")
	}
	return &ClaudeEngine{settings: settings}, nil
}

func (e *ClaudeEngine) Provider() string {
	return provider
}

func (e *ClaudeEngine) Model() string {
	return e.settings.Chat.Model()
}

func (e *ClaudeEngine) client() (*anthropic.Client, error) {
	apiKey := e.settings.Chat.APIKey(types.ApiTypeClaude)
	if engine.IsPlaceholderKey(apiKey) {
		return nil, engine.ErrMissingCredentials
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL := e.settings.Chat.BaseURL(types.ApiTypeClaude); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if e.settings.Client != nil {
		opts = append(opts, option.WithHTTPClient(e.settings.Client.Client()))
	}
	c := anthropic.NewClient(opts...)
	return &c, nil
}

func (e *ClaudeEngine) RunInference(ctx context.Context, req *engine.Request) (*engine.Response, error) {
	client, err := e.client()
	if err != nil {
		return nil, engine.NewBackendError(provider, "configure", err)
	}

	params, err := MakeMessageParams(e.settings, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, engine.NewBackendError(provider, "create message", err)
	}

	ret := ResponseFromMessage(msg)
	log.Debug().
		Str("model", string(params.Model)).
		Int("tool_calls", len(ret.ToolCalls)).
		Int64("input_tokens", msg.Usage.InputTokens).
		Int64("output_tokens", msg.Usage.OutputTokens).
		Str("stop_reason", ret.StopReason).
		Dur("duration", time.Since(start)).
		Msg("Claude RunInference completed")
	return ret, nil
}

var _ engine.Engine = (*ClaudeEngine)(nil)
var _ engine.Named = (*ClaudeEngine)(nil)
