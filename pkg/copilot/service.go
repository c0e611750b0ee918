package copilot

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/velocity/pkg/artifacts"
	"github.com/go-go-golems/velocity/pkg/events"
	"github.com/go-go-golems/velocity/pkg/fallback"
	"github.com/go-go-golems/velocity/pkg/history"
	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/inference/toolloop"
	"github.com/go-go-golems/velocity/pkg/inference/tools"
	"github.com/go-go-golems/velocity/pkg/tagged"
	"github.com/go-go-golems/velocity/pkg/turns"
	"github.com/go-go-golems/velocity/pkg/velocity"
)

// Reply is what the user sees for one message.
type Reply struct {
	Text       string
	Reasoning  []string
	References []tagged.Reference
	// Artifact is the saved record when the response carried an artifact payload.
	Artifact *artifacts.Artifact
	// Offline is set when the answer came from the fallback responder.
	Offline    bool
	Iterations int
	Truncated  bool
	Turn       *turns.Turn
}

// Service ties the tool loop, the decoder, the fallback responder and the stores together.
type Service struct {
	engine    engine.Engine
	toolbox   *tools.Toolbox
	toolCfg   tools.ToolConfig
	loopCfg   toolloop.LoopConfig
	responder *fallback.Responder
	artifacts artifacts.Repository
	history   history.Store

	snapshotHook toolloop.SnapshotHook
}

type Option func(*Service)

func WithToolConfig(cfg tools.ToolConfig) Option {
	return func(s *Service) { s.toolCfg = cfg }
}

func WithLoopConfig(cfg toolloop.LoopConfig) Option {
	return func(s *Service) { s.loopCfg = cfg }
}

func WithArtifactRepository(r artifacts.Repository) Option {
	return func(s *Service) { s.artifacts = r }
}

func WithHistoryStore(h history.Store) Option {
	return func(s *Service) { s.history = h }
}

func WithSnapshotHook(h toolloop.SnapshotHook) Option {
	return func(s *Service) { s.snapshotHook = h }
}

// NewService needs an engine, the bound toolbox and the responder used in degraded mode.
// Artifacts and history default to in-memory stores.
func NewService(e engine.Engine, tb *tools.Toolbox, responder *fallback.Responder, opts ...Option) (*Service, error) {
	if e == nil {
		return nil, errors.New("copilot: engine is nil")
	}
	if tb == nil {
		return nil, errors.New("copilot: toolbox is nil")
	}
	if responder == nil {
		return nil, errors.New("copilot: fallback responder is nil")
	}
	s := &Service{
		engine:    e,
		toolbox:   tb,
		toolCfg:   tools.DefaultToolConfig(),
		loopCfg:   toolloop.DefaultLoopConfig().WithSystemInstruction(velocity.SystemInstruction),
		responder: responder,
	}
	for _, o := range opts {
		o(s)
	}
	if s.artifacts == nil {
		s.artifacts = artifacts.NewMemoryRepository()
	}
	if s.history == nil {
		s.history = history.NewMemoryStore()
	}
	return s, nil
}

func (s *Service) Artifacts() artifacts.Repository { return s.artifacts }

func (s *Service) History() history.Store { return s.history }

// SendMessage answers text given the earlier messages of the chat. Backend failures
// degrade to the fallback responder; only cancellation and misconfiguration are returned.
func (s *Service) SendMessage(ctx context.Context, past []history.Message, text string) (*Reply, error) {
	t := turns.NewTurnBuilder().
		WithHistory(history.ToTurnHistory(past)).
		WithUserPrompt(text).
		Build()

	loop := toolloop.New(
		toolloop.WithEngine(s.engine),
		toolloop.WithToolbox(s.toolbox, s.toolCfg),
		toolloop.WithLoopConfig(s.loopCfg),
		toolloop.WithSnapshotHook(s.snapshotHook),
	)

	start := time.Now()
	res, err := loop.RunLoop(ctx, t)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !engine.IsBackendUnavailable(err) {
			return nil, err
		}
		log.Warn().Err(err).Msg("Backend unavailable, answering in offline mode")
		return s.offline(ctx, t, text, err.Error())
	}
	log.Debug().Int("iterations", res.Iterations).Int("backend_calls", res.BackendCalls).
		Bool("truncated", res.Truncated).Dur("duration", time.Since(start)).Msg("Request completed")

	kind, company := lastGeneration(res.Turn)
	reply, err := s.reply(ctx, tagged.Decode(res.Text), kind, company)
	if err != nil {
		return nil, err
	}
	reply.Iterations = res.Iterations
	reply.Truncated = res.Truncated
	reply.Turn = res.Turn
	return reply, nil
}

func (s *Service) offline(ctx context.Context, t *turns.Turn, text string, reason string) (*Reply, error) {
	fr := s.responder.Respond(ctx, text, reason)
	kind := fr.Kind
	if kind == "" {
		kind = artifacts.KindGeneric
	}
	reply, err := s.reply(ctx, tagged.Decode(fr.Text), kind, fr.Company)
	if err != nil {
		return nil, err
	}
	reply.Offline = true
	reply.Turn = t
	return reply, nil
}

func (s *Service) reply(ctx context.Context, env tagged.Envelope, kind artifacts.Kind, company string) (*Reply, error) {
	r := &Reply{
		Text:       env.Text,
		Reasoning:  env.Reasoning,
		References: env.References,
	}
	if env.Artifact == nil {
		return r, nil
	}
	a := artifacts.New(kind, company, *env.Artifact)
	if err := s.artifacts.Save(ctx, a); err != nil {
		return nil, errors.Wrap(err, "save artifact")
	}
	log.Info().Str("id", a.ID).Str("title", a.Title).Msg("Saved artifact")
	events.PublishEventToContext(ctx, events.NewArtifactEvent(events.MetadataFromContext(ctx), a.ID, a.Title))
	r.Artifact = &a
	return r, nil
}

// lastGeneration finds the most recent generation tool call of the transcript and
// returns the kind it produces and the company it was asked for.
func lastGeneration(t *turns.Turn) (artifacts.Kind, string) {
	kind, company := artifacts.KindGeneric, ""
	if t == nil {
		return kind, company
	}
	for _, b := range t.Blocks {
		c, ok := b.ToolCall()
		if !ok {
			continue
		}
		k, ok := velocity.ArtifactKindForTool(c.Name)
		if !ok {
			continue
		}
		kind = k
		company, _ = c.Arguments["companyName"].(string)
	}
	return kind, company
}

// SaveChat stores a finished chat in the history store.
func (s *Service) SaveChat(ctx context.Context, messages []history.Message) (history.Session, bool, error) {
	return s.history.SaveSession(ctx, messages)
}
