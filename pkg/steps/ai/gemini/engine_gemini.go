package gemini

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/inference/tools"
	"github.com/go-go-golems/velocity/pkg/steps/ai/settings"
	"github.com/go-go-golems/velocity/pkg/steps/ai/types"
	"github.com/go-go-golems/velocity/pkg/turns"
)

const provider = string(types.ApiTypeGemini)

// GeminiEngine implements engine.Engine for Google's Gemini API.
// A client is created per call; the full transcript is replayed as chat history.
type GeminiEngine struct {
	settings *settings.StepSettings
}

func NewGeminiEngine(settings *settings.StepSettings) (*GeminiEngine, error) {
	if settings == nil || settings.Chat == nil {
		return nil, errors.New("no chat settings")
	}
	return &GeminiEngine{settings: settings}, nil
}

func (e *GeminiEngine) Provider() string {
	return provider
}

func (e *GeminiEngine) Model() string {
	return e.settings.Chat.Model()
}

func (e *GeminiEngine) RunInference(ctx context.Context, req *engine.Request) (*engine.Response, error) {
	apiKey := e.settings.Chat.APIKey(types.ApiTypeGemini)
	if engine.IsPlaceholderKey(apiKey) {
		return nil, engine.NewBackendError(provider, "configure", engine.ErrMissingCredentials)
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if baseURL := e.settings.Chat.BaseURL(types.ApiTypeGemini); baseURL != "" {
		opts = append(opts, option.WithEndpoint(baseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, engine.NewBackendError(provider, "create client", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close gemini client")
		}
	}()

	modelName := e.Model()
	model := client.GenerativeModel(modelName)
	e.configure(model)

	if req.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemInstruction)}}
	}
	if decls := functionDeclarations(req.Tools); len(decls) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	history, last := buildContents(req.Turn)
	if len(last) == 0 {
		return nil, errors.New("gemini: transcript has nothing to send")
	}
	cs := model.StartChat()
	cs.History = history

	start := time.Now()
	resp, err := cs.SendMessage(ctx, last...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, engine.NewBackendError(provider, "generate content", err)
	}

	ret := responseFromGenAI(resp)
	log.Debug().
		Str("model", modelName).
		Int("tool_calls", len(ret.ToolCalls)).
		Int("text_len", len(ret.Text)).
		Str("stop_reason", ret.StopReason).
		Dur("duration", time.Since(start)).
		Msg("Gemini RunInference completed")
	return ret, nil
}

func (e *GeminiEngine) configure(model *genai.GenerativeModel) {
	chat := e.settings.Chat
	if chat.Temperature != nil {
		model.SetTemperature(float32(*chat.Temperature))
	}
	if chat.MaxResponseTokens != nil {
		mt := *chat.MaxResponseTokens
		switch {
		case mt < 0:
			model.SetMaxOutputTokens(0)
		case mt > math.MaxInt32:
			model.SetMaxOutputTokens(math.MaxInt32)
		default:
			model.SetMaxOutputTokens(int32(mt)) // #nosec G115
		}
	}
}

func schemaType(t tools.ParameterType) genai.Type {
	switch t {
	case tools.TypeString:
		return genai.TypeString
	case tools.TypeNumber:
		return genai.TypeNumber
	case tools.TypeInteger:
		return genai.TypeInteger
	case tools.TypeBoolean:
		return genai.TypeBoolean
	case tools.TypeArray:
		return genai.TypeArray
	default:
		return genai.TypeObject
	}
}

// functionDeclarations converts the catalog, keeping its order.
func functionDeclarations(defs []tools.ToolDefinition) []*genai.FunctionDeclaration {
	var ret []*genai.FunctionDeclaration
	for _, td := range defs {
		fd := &genai.FunctionDeclaration{
			Name:        td.Name,
			Description: td.Description,
		}
		if len(td.Parameters) > 0 {
			props := map[string]*genai.Schema{}
			for _, p := range td.Parameters {
				s := &genai.Schema{Type: schemaType(p.Type), Description: p.Description}
				if p.Type == tools.TypeArray {
					items := p.Items
					if items == "" {
						items = tools.TypeString
					}
					s.Items = &genai.Schema{Type: schemaType(items)}
				}
				props[p.Name] = s
			}
			fd.Parameters = &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   td.RequiredParameters(),
			}
		}
		ret = append(ret, fd)
	}
	return ret
}

// buildContents splits the transcript into the chat history and the parts of the
// final message, which is what SendMessage expects.
func buildContents(t *turns.Turn) ([]*genai.Content, []genai.Part) {
	var contents []*genai.Content
	for _, m := range turns.Messages(t) {
		var parts []genai.Part
		role := "user"
		switch m.Role {
		case turns.RoleUser:
			if m.Text != "" {
				parts = append(parts, genai.Text(m.Text))
			}
		case turns.RoleAssistant:
			role = "model"
			if m.Text != "" {
				parts = append(parts, genai.Text(m.Text))
			}
			for _, c := range m.ToolCalls {
				args := c.Arguments
				if args == nil {
					args = map[string]any{}
				}
				parts = append(parts, genai.FunctionCall{Name: c.Name, Args: args})
			}
		case turns.RoleTool:
			for _, r := range m.ToolResults {
				parts = append(parts, genai.FunctionResponse{Name: r.Name, Response: responseObject(r)})
			}
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	if len(contents) == 0 {
		return nil, nil
	}
	last := contents[len(contents)-1]
	if last.Role != "user" {
		// the model spoke last; ask it to continue
		return contents, []genai.Part{genai.Text("Continue.")}
	}
	return contents[:len(contents)-1], last.Parts
}

// responseObject returns the result as a JSON object, which FunctionResponse requires.
func responseObject(r turns.ToolResult) map[string]any {
	v := r.Response()
	switch rv := v.(type) {
	case map[string]any:
		return rv
	case string:
		var obj map[string]any
		if json.Unmarshal([]byte(rv), &obj) == nil && obj != nil {
			return obj
		}
	}
	return r.ResponseMap()
}

func responseFromGenAI(resp *genai.GenerateContentResponse) *engine.Response {
	ret := &engine.Response{}
	if resp == nil || len(resp.Candidates) == 0 {
		return ret
	}
	cand := resp.Candidates[0]
	if cand.FinishReason != genai.FinishReasonUnspecified {
		ret.StopReason = cand.FinishReason.String()
	}
	if cand.Content == nil {
		return ret
	}
	var text strings.Builder
	for _, p := range cand.Content.Parts {
		switch v := p.(type) {
		case genai.Text:
			text.WriteString(string(v))
		case genai.FunctionCall:
			args := v.Args
			if args == nil {
				args = map[string]any{}
			}
			ret.ToolCalls = append(ret.ToolCalls, turns.ToolCall{Name: v.Name, Arguments: args})
		}
	}
	ret.Text = text.String()
	return ret
}

var _ engine.Engine = (*GeminiEngine)(nil)
var _ engine.Named = (*GeminiEngine)(nil)
