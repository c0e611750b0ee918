package fallback

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/velocity/pkg/artifacts"
	"github.com/go-go-golems/velocity/pkg/crm"
	"github.com/go-go-golems/velocity/pkg/events"
	"github.com/go-go-golems/velocity/pkg/generation"
)

const (
	// OfflinePrefix marks every degraded response that carries an artifact.
	OfflinePrefix = "(Offline Mode)"

	OfflineNotice = "I'm currently running in offline mode. I can still help you generate proposals, handoffs, and meeting briefs. Try saying '@Velocity draft proposal for Acme Corp'."

	defaultCompany = "Client"
)

var intents = []struct {
	kind     artifacts.Kind
	keywords []string
}{
	{artifacts.KindProposal, []string{"proposal"}},
	{artifacts.KindHandoff, []string{"handoff"}},
	{artifacts.KindMeetingBrief, []string{"brief", "prep", "meeting"}},
	{artifacts.KindEmail, []string{"email", "follow up"}},
}

// DetectIntent picks the artifact kind from keywords in the query, first match wins.
func DetectIntent(query string) (artifacts.Kind, bool) {
	q := strings.ToLower(query)
	for _, in := range intents {
		for _, kw := range in.keywords {
			if strings.Contains(q, kw) {
				return in.kind, true
			}
		}
	}
	return "", false
}

// Response is what the responder produced.
type Response struct {
	Text    string
	Kind    artifacts.Kind
	Company string
}

// Responder answers without a backend, from keyword intent and offline templates.
type Responder struct {
	directory crm.Directory
	generator generation.ArtifactGenerator
}

type Option func(*Responder)

// WithGenerator replaces the offline template generator.
func WithGenerator(g generation.ArtifactGenerator) Option {
	return func(r *Responder) {
		r.generator = g
	}
}

func NewResponder(dir crm.Directory, opts ...Option) *Responder {
	r := &Responder{
		directory: dir,
		generator: generation.TemplateGenerator{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Respond handles query in degraded mode. reason is reported in the fallback event.
func (r *Responder) Respond(ctx context.Context, query string, reason string) Response {
	kind, ok := DetectIntent(query)
	events.PublishEventToContext(ctx, events.NewFallbackEvent(events.MetadataFromContext(ctx), reason, string(kind)))
	if !ok {
		log.Debug().Str("reason", reason).Msg("Fallback found no intent")
		return Response{Text: OfflineNotice}
	}

	tc := r.context(kind, query)
	log.Info().Str("kind", string(kind)).Str("company", tc.CompanyName).Str("reason", reason).
		Msg("Answering in offline mode")

	out := r.generator.Generate(ctx, kind, tc, query)
	return Response{
		Text:    OfflinePrefix + " I have generated a **sample** for you.\n\n" + out,
		Kind:    kind,
		Company: tc.CompanyName,
	}
}

func (r *Responder) context(kind artifacts.Kind, query string) artifacts.TemplateContext {
	tc := artifacts.TemplateContext{CompanyName: defaultCompany}
	lead, ok := crm.Lead{}, false
	if r.directory != nil {
		lead, ok = r.directory.LeadMentionedIn(query)
		if !ok {
			if leads := r.directory.Leads(); len(leads) > 0 {
				lead, ok = leads[0], true
			}
		}
	}
	if ok {
		tc.CompanyName = lead.CompanyName
	}

	switch kind {
	case artifacts.KindProposal:
		tc.Industry = lead.Industry
		tc.Needs = lead.Needs
	case artifacts.KindHandoff:
		tc.TargetTeam = "Implementation"
	case artifacts.KindEmail:
		tc.MeetingContext = "recent discussion"
	}
	return tc
}
