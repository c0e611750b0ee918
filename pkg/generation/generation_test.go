package generation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	genai "google.golang.org/genai"

	"github.com/go-go-golems/velocity/pkg/artifacts"
	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/steps/ai/settings"
	"github.com/go-go-golems/velocity/pkg/steps/ai/types"
	"github.com/go-go-golems/velocity/pkg/tagged"
	"github.com/go-go-golems/velocity/pkg/turns"
)

func TestLLMGeneratorReturnsModelText(t *testing.T) {
	var prompt string
	e := engine.EngineFunc(func(ctx context.Context, req *engine.Request) (*engine.Response, error) {
		assert.Empty(t, req.Tools)
		msgs := turns.Messages(req.Turn)
		require.Len(t, msgs, 1)
		prompt = msgs[0].Text
		return &engine.Response{Text: "<artifact_payload>\n{\"documentContent\":\"# Live\"}\n</artifact_payload>"}, nil
	})

	out := NewLLMGenerator(e).Generate(context.Background(), artifacts.KindHandoff,
		artifacts.TemplateContext{CompanyName: "Acme Corp", TargetTeam: "Support"}, "keep it short")

	assert.Equal(t, "# Live", tagged.Decode(out).Artifact.DocumentContent)
	assert.Contains(t, prompt, "Context: Handoff Acme Corp to Support.")
	assert.Contains(t, prompt, "User Instructions: keep it short")
	assert.Contains(t, prompt, "Markdown slides for kick-off meeting")
}

func TestLLMGeneratorFallsBackToTemplate(t *testing.T) {
	tc := artifacts.TemplateContext{CompanyName: "Global Bank", Industry: "Finance"}
	failing := engine.EngineFunc(func(ctx context.Context, req *engine.Request) (*engine.Response, error) {
		return nil, engine.NewBackendError("gemini", "generate", errors.New("boom"))
	})
	empty := engine.EngineFunc(func(ctx context.Context, req *engine.Request) (*engine.Response, error) {
		return &engine.Response{Text: "   "}, nil
	})

	for _, g := range []ArtifactGenerator{
		NewLLMGenerator(failing),
		NewLLMGenerator(empty),
		NewLLMGenerator(engine.NewUnavailable("gemini")),
		NewLLMGenerator(nil),
		TemplateGenerator{},
	} {
		env := tagged.Decode(g.Generate(context.Background(), artifacts.KindProposal, tc, "draft"))
		require.NotNil(t, env.Artifact)
		assert.Contains(t, env.Artifact.DocumentContent, "Offline Mode - Generated Draft")
		assert.Contains(t, env.Artifact.DocumentContent, "Strategic Proposal for Global Bank")
		assert.NotEmpty(t, env.Artifact.PresentationContent)
		assert.Len(t, env.Reasoning, 3)
	}
}

func TestPromptForProposal(t *testing.T) {
	p := Prompt(artifacts.KindProposal, artifacts.TemplateContext{
		CompanyName: "Acme Corp",
		Industry:    "Manufacturing",
		Needs:       []string{"Cloud Migration", "24/7 Support"},
	}, "focus on security")
	assert.Contains(t, p, "TASK: Generate assets for a proposal.")
	assert.Contains(t, p, "Proposal for Acme Corp (Manufacturing)")
	assert.Contains(t, p, "Needs: Cloud Migration, 24/7 Support.")
	assert.Contains(t, p, "<artifact_payload>")
}

func videoSettings(key string) *settings.StepSettings {
	s := settings.NewStepSettings()
	s.Chat.APIKeys["gemini-api-key"] = key
	s.Media.VideoPollInterval = time.Millisecond
	s.Media.VideoMaxPolls = 3
	return s
}

type fakeVideoOps struct {
	model  string
	config *genai.GenerateVideosConfig
	start  *genai.GenerateVideosOperation
	err    error
	// polls are returned in order, the last one repeats
	polls []*genai.GenerateVideosOperation
	n     int
}

func (f *fakeVideoOps) GenerateVideos(_ context.Context, model string, _ string, _ *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	f.model, f.config = model, config
	return f.start, f.err
}

func (f *fakeVideoOps) GetVideosOperation(_ context.Context, op *genai.GenerateVideosOperation, _ *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error) {
	f.n++
	if len(f.polls) == 0 {
		return op, nil
	}
	i := f.n - 1
	if i >= len(f.polls) {
		i = len(f.polls) - 1
	}
	return f.polls[i], nil
}

func doneWithVideo(uri string) *genai.GenerateVideosOperation {
	return &genai.GenerateVideosOperation{
		Name: "operations/op1",
		Done: true,
		Response: &genai.GenerateVideosResponse{
			GeneratedVideos: []*genai.GeneratedVideo{{Video: &genai.Video{URI: uri}}},
		},
	}
}

func TestVeoGeneratorPollsUntilDone(t *testing.T) {
	ops := &fakeVideoOps{
		start: &genai.GenerateVideosOperation{Name: "operations/op1"},
		polls: []*genai.GenerateVideosOperation{
			{Name: "operations/op1"},
			doneWithVideo("https://files.example/v1?alt=media"),
		},
	}
	uri, err := NewVeoGenerator(videoSettings("veo-key"), WithVideoOperations(ops)).
		Generate(context.Background(), "A drone shot of a factory")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example/v1?alt=media&key=veo-key", uri)
	assert.Equal(t, 2, ops.n)
	assert.Equal(t, "veo-3.1-fast-generate-preview", ops.model)
	require.NotNil(t, ops.config)
	assert.Equal(t, "16:9", ops.config.AspectRatio)
	assert.Equal(t, "720p", ops.config.Resolution)
}

func TestVeoGeneratorGivesUp(t *testing.T) {
	ops := &fakeVideoOps{start: &genai.GenerateVideosOperation{Name: "operations/slow"}}
	_, err := NewVeoGenerator(videoSettings("veo-key"), WithVideoOperations(ops)).
		Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrVideoNotReady)
	assert.Equal(t, 3, ops.n)
}

func TestVeoGeneratorErrors(t *testing.T) {
	_, err := NewVeoGenerator(videoSettings("dummy_key")).Generate(context.Background(), "p")
	assert.ErrorIs(t, err, engine.ErrMissingCredentials)

	ops := &fakeVideoOps{err: errors.New("billing required")}
	_, err = NewVeoGenerator(videoSettings("k"), WithVideoOperations(ops)).Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "billing required")

	failed := &fakeVideoOps{start: &genai.GenerateVideosOperation{
		Done:  true,
		Error: map[string]any{"message": "unsafe prompt"},
	}}
	_, err = NewVeoGenerator(videoSettings("k"), WithVideoOperations(failed)).Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsafe prompt")

	empty := &fakeVideoOps{start: &genai.GenerateVideosOperation{Done: true}}
	_, err = NewVeoGenerator(videoSettings("k"), WithVideoOperations(empty)).Generate(context.Background(), "p")
	assert.Error(t, err)
}

func TestVeoGeneratorRejectsLocalDownloadLink(t *testing.T) {
	ops := &fakeVideoOps{start: doneWithVideo("http://127.0.0.1:9/v")}
	uri, err := NewVeoGenerator(videoSettings("veo-key"), WithVideoOperations(ops)).
		Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Empty(t, uri)
	assert.NotContains(t, err.Error(), "veo-key")
	assert.Equal(t, 0, ops.n)
}

type fakeContent struct {
	model  string
	config *genai.GenerateContentConfig
	text   string
	resp   *genai.GenerateContentResponse
	err    error
}

func (f *fakeContent) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.config = model, config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.text = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func audioResponse(data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{
				InlineData: &genai.Blob{Data: data, MIMEType: "audio/pcm"},
			}}},
		}},
	}
}

func TestGeminiSpeech(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03}
	models := &fakeContent{resp: audioResponse(pcm)}
	out, err := NewGeminiSpeech(videoSettings("g-key"), WithContentGenerator(models)).
		Synthesize(context.Background(), "Welcome to Contoso")
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(pcm), out)

	assert.Equal(t, DefaultGeminiSpeechModel, models.model)
	assert.Equal(t, "Welcome to Contoso", models.text)
	require.NotNil(t, models.config)
	assert.Equal(t, []string{"AUDIO"}, models.config.ResponseModalities)
	require.NotNil(t, models.config.SpeechConfig)
	assert.Equal(t, DefaultGeminiSpeechVoice, models.config.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
}

func TestGeminiSpeechErrors(t *testing.T) {
	_, err := NewGeminiSpeech(videoSettings("dummy_key")).Synthesize(context.Background(), "hello")
	assert.ErrorIs(t, err, engine.ErrMissingCredentials)

	_, err = NewGeminiSpeech(videoSettings("k"), WithContentGenerator(&fakeContent{})).
		Synthesize(context.Background(), "  ")
	assert.Error(t, err)

	_, err = NewGeminiSpeech(videoSettings("k"), WithContentGenerator(&fakeContent{resp: audioResponse(nil)})).
		Synthesize(context.Background(), "hello")
	assert.Error(t, err)

	_, err = NewGeminiSpeech(videoSettings("k"), WithContentGenerator(&fakeContent{err: errors.New("quota")})).
		Synthesize(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestNewSpeechSynthesizer(t *testing.T) {
	s := settings.NewStepSettings()
	provider := types.ApiTypeOpenAI
	s.Chat.ApiType = &provider
	s.Chat.APIKeys["openai-api-key"] = "sk-test"
	assert.IsType(t, &OpenAISpeech{}, NewSpeechSynthesizer(s))

	s.Chat.APIKeys["gemini-api-key"] = "g-key"
	assert.IsType(t, &GeminiSpeech{}, NewSpeechSynthesizer(s))

	s.Media.SpeechProvider = "openai"
	assert.IsType(t, &OpenAISpeech{}, NewSpeechSynthesizer(s))
}

func TestOpenAISpeech(t *testing.T) {
	audio := []byte("ID3-fake-mp3")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/audio/speech"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tts-1", body["model"])
		assert.Equal(t, "alloy", body["voice"])
		assert.Equal(t, "Welcome to Contoso", body["input"])
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(audio)
	}))
	defer srv.Close()

	s := settings.NewStepSettings()
	s.Chat.APIKeys["openai-api-key"] = "sk-test"
	s.Chat.BaseUrls["openai-base-url"] = srv.URL

	out, err := NewOpenAISpeech(s).Synthesize(context.Background(), "Welcome to Contoso")
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(audio), out)
}

func TestOpenAISpeechErrors(t *testing.T) {
	s := settings.NewStepSettings()
	_, err := NewOpenAISpeech(s).Synthesize(context.Background(), "hello")
	assert.ErrorIs(t, err, engine.ErrMissingCredentials)

	s.Chat.APIKeys["openai-api-key"] = "sk-test"
	_, err = NewOpenAISpeech(s).Synthesize(context.Background(), "  ")
	assert.Error(t, err)
}
