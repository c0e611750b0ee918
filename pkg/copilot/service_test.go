package copilot

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/velocity/pkg/artifacts"
	"github.com/go-go-golems/velocity/pkg/crm"
	"github.com/go-go-golems/velocity/pkg/events"
	"github.com/go-go-golems/velocity/pkg/fallback"
	"github.com/go-go-golems/velocity/pkg/history"
	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/tagged"
	"github.com/go-go-golems/velocity/pkg/turns"
	"github.com/go-go-golems/velocity/pkg/velocity"
)

// scripted answers each call with the next response.
type scripted struct {
	mu        sync.Mutex
	responses []*engine.Response
	requests  []*engine.Request
}

func (s *scripted) RunInference(_ context.Context, req *engine.Request) (*engine.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.requests) > len(s.responses) {
		return nil, errors.New("script exhausted")
	}
	return s.responses[len(s.requests)-1], nil
}

func newService(t *testing.T, e engine.Engine) *Service {
	dir, err := crm.NewDefaultStore()
	require.NoError(t, err)
	tb, err := velocity.NewToolbox(velocity.Services{Directory: dir})
	require.NoError(t, err)
	s, err := NewService(e, tb, fallback.NewResponder(dir))
	require.NoError(t, err)
	return s
}

func TestSendMessagePlainText(t *testing.T) {
	e := &scripted{responses: []*engine.Response{{Text: "Sure, happy to help."}}}
	s := newService(t, e)

	past := []history.Message{
		history.NewMessage(history.RoleModel, "Hello, I'm Velocity."),
		history.NewMessage(history.RoleUser, "hi"),
	}
	r, err := s.SendMessage(context.Background(), past, "thanks")
	require.NoError(t, err)
	assert.Equal(t, "Sure, happy to help.", r.Text)
	assert.Empty(t, r.Reasoning)
	assert.Empty(t, r.References)
	assert.Nil(t, r.Artifact)
	assert.False(t, r.Offline)

	require.Len(t, e.requests, 1)
	req := e.requests[0]
	assert.Equal(t, velocity.SystemInstruction, req.SystemInstruction)
	assert.Len(t, req.Tools, 13)
	msgs := turns.Messages(req.Turn)
	require.Len(t, msgs, 3)
	assert.Equal(t, turns.RoleAssistant, msgs[0].Role)
	assert.Equal(t, "thanks", msgs[2].Text)
}

func TestSendMessageSavesGeneratedArtifact(t *testing.T) {
	final := tagged.MustEncode(tagged.Envelope{
		Reasoning:  []string{"Looked up Acme", "Drafted proposal"},
		References: []tagged.Reference{{Type: "crm", Title: "Acme Corp lead"}},
		Artifact:   &tagged.ArtifactPayload{DocumentContent: "# Proposal", PresentationContent: "# Slides"},
		Text:       "Here is the proposal.",
	})
	e := &scripted{responses: []*engine.Response{
		{ToolCalls: []turns.ToolCall{{
			ID:        "c1",
			Name:      velocity.ToolDraftProposal,
			Arguments: map[string]any{"companyName": "Acme Corp", "instructions": "focus on cloud"},
		}}},
		{Text: final},
	}}
	s := newService(t, e)
	sink := events.NewCollectingSink()
	ctx := events.WithEventSinks(context.Background(), sink)

	r, err := s.SendMessage(ctx, nil, "@Velocity draft proposal for Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "Here is the proposal.", r.Text)
	assert.Equal(t, []string{"Looked up Acme", "Drafted proposal"}, r.Reasoning)
	assert.Equal(t, 1, r.Iterations)
	require.NotNil(t, r.Artifact)
	assert.Equal(t, artifacts.KindProposal, r.Artifact.Kind)
	assert.Equal(t, "Proposal for Acme Corp", r.Artifact.Title)
	assert.Equal(t, artifacts.StatusDraft, r.Artifact.Status)
	assert.Equal(t, "# Proposal", r.Artifact.Content.DocumentContent)

	saved, ok, err := s.Artifacts().Get(ctx, r.Artifact.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, r.Artifact.Title, saved.Title)
	assert.Len(t, sink.OfType(events.EventTypeArtifact), 1)

	// the second call carries the tool result of the first
	require.Len(t, e.requests, 2)
	msgs := turns.Messages(e.requests[1].Turn)
	require.Len(t, msgs, 3)
	require.Len(t, msgs[2].ToolResults, 1)
	assert.Equal(t, "c1", msgs[2].ToolResults[0].ID)
	assert.Empty(t, msgs[2].ToolResults[0].Error)
}

func TestSendMessageFallsBackWhenBackendUnavailable(t *testing.T) {
	s := newService(t, engine.NewUnavailable("gemini"))
	sink := events.NewCollectingSink()
	ctx := events.WithEventSinks(context.Background(), sink)

	r, err := s.SendMessage(ctx, nil, "@Velocity draft proposal for Acme Corp")
	require.NoError(t, err)
	assert.True(t, r.Offline)
	assert.True(t, strings.HasPrefix(r.Text, fallback.OfflinePrefix))
	require.NotNil(t, r.Artifact)
	assert.Equal(t, artifacts.KindProposal, r.Artifact.Kind)
	assert.Equal(t, "Acme Corp", r.Artifact.CompanyName)
	assert.NotEmpty(t, r.Artifact.Content.DocumentContent)
	assert.NotEmpty(t, r.Artifact.Content.PresentationContent)
	assert.Len(t, sink.OfType(events.EventTypeFallback), 1)

	r, err = s.SendMessage(ctx, nil, "what's the weather?")
	require.NoError(t, err)
	assert.True(t, r.Offline)
	assert.Equal(t, fallback.OfflineNotice, r.Text)
	assert.Nil(t, r.Artifact)
}

func TestSendMessageFallsBackOnBackendError(t *testing.T) {
	e := engine.EngineFunc(func(context.Context, *engine.Request) (*engine.Response, error) {
		return nil, engine.NewBackendError("openai", "create chat completion", errors.New("connection refused"))
	})
	s := newService(t, e)
	r, err := s.SendMessage(context.Background(), nil, "prep me for the meeting with Global Bank")
	require.NoError(t, err)
	assert.True(t, r.Offline)
	require.NotNil(t, r.Artifact)
	assert.Equal(t, artifacts.KindMeetingBrief, r.Artifact.Kind)
	assert.Equal(t, "Global Bank", r.Artifact.CompanyName)
}

func TestSendMessageReturnsCancellation(t *testing.T) {
	e := engine.EngineFunc(func(ctx context.Context, _ *engine.Request) (*engine.Response, error) {
		return nil, ctx.Err()
	})
	s := newService(t, e)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.SendMessage(ctx, nil, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveChat(t *testing.T) {
	s := newService(t, &scripted{})
	_, ok, err := s.SaveChat(context.Background(), []history.Message{
		history.NewMessage(history.RoleUser, "draft proposal"),
		history.NewMessage(history.RoleModel, "done"),
	})
	require.NoError(t, err)
	assert.True(t, ok)
	sessions, err := s.History().ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "draft proposal", sessions[0].Title)
}
