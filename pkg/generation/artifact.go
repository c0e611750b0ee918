package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/velocity/pkg/artifacts"
	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/tagged"
	"github.com/go-go-golems/velocity/pkg/turns"
)

// ArtifactGenerator produces a tagged artifact response for one kind of asset.
// Generate never fails: when the model cannot be used the offline template is returned.
type ArtifactGenerator interface {
	Generate(ctx context.Context, kind artifacts.Kind, tc artifacts.TemplateContext, instructions string) string
}

// TemplateGenerator always renders the offline templates.
type TemplateGenerator struct{}

func (TemplateGenerator) Generate(_ context.Context, kind artifacts.Kind, tc artifacts.TemplateContext, _ string) string {
	return Offline(kind, tc)
}

// Offline renders the offline template for kind. A template error still yields a
// minimal artifact so callers always get a parseable response.
func Offline(kind artifacts.Kind, tc artifacts.TemplateContext) string {
	s, err := artifacts.RenderOffline(kind, tc)
	if err == nil {
		return s
	}
	log.Error().Err(err).Str("kind", string(kind)).Msg("Could not render offline template")
	company := tc.CompanyName
	if company == "" {
		company = "Client"
	}
	return tagged.MustEncode(tagged.Envelope{
		Reasoning:  []string{},
		References: []tagged.Reference{},
		Artifact: &tagged.ArtifactPayload{
			DocumentContent:     "# " + kind.Label() + " for " + company,
			PresentationContent: "# " + company,
		},
	})
}

// LLMGenerator asks the model for the artifact in one tool-less call.
type LLMGenerator struct {
	engine engine.Engine
}

var _ ArtifactGenerator = (*LLMGenerator)(nil)

func NewLLMGenerator(e engine.Engine) *LLMGenerator {
	return &LLMGenerator{engine: e}
}

func (g *LLMGenerator) Generate(ctx context.Context, kind artifacts.Kind, tc artifacts.TemplateContext, instructions string) string {
	if g.engine == nil {
		return Offline(kind, tc)
	}
	if engine.IsUnavailable(g.engine) {
		return Offline(kind, tc)
	}

	start := time.Now()
	t := turns.NewTurnBuilder().WithUserPrompt(Prompt(kind, tc, instructions)).Build()
	resp, err := g.engine.RunInference(ctx, &engine.Request{Turn: t})
	if err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Str("company", tc.CompanyName).
			Msg("Artifact generation failed, using offline template")
		return Offline(kind, tc)
	}
	if strings.TrimSpace(resp.Text) == "" {
		log.Warn().Str("kind", string(kind)).Msg("Artifact generation returned no text, using offline template")
		return Offline(kind, tc)
	}
	log.Debug().Str("kind", string(kind)).Str("company", tc.CompanyName).
		Dur("duration", time.Since(start)).Msg("Generated artifact")
	return resp.Text
}

var outputRequirements = map[artifacts.Kind][2]string{
	artifacts.KindProposal: {
		"Markdown proposal (Exec Summary, Solution, Investment Table, Timeline).",
		"Markdown slides (Title, Problem, Solution, Pricing Table, Next Steps).",
	},
	artifacts.KindHandoff: {
		"Markdown handoff document (Deal Overview, Stakeholders, Tech Specs, Risks, Timeline).",
		"Markdown slides for kick-off meeting (Team Intro, Objectives, Roles, Q&A).",
	},
	artifacts.KindMeetingBrief: {
		"Markdown briefing doc (Attendee Bios, Account Status, Recent News, Strategy, Talking Points).",
		"Markdown slides (Agenda, Current Status, Discussion Topics).",
	},
	artifacts.KindEmail: {
		"Markdown email draft (Subject Line, Body, Next Steps).",
		"Markdown slides (Recap of discussion visually).",
	},
}

func promptContext(kind artifacts.Kind, tc artifacts.TemplateContext) string {
	switch kind {
	case artifacts.KindHandoff:
		return fmt.Sprintf("Context: Handoff %s to %s.\nInclude deal context, key stakeholders, technical requirements, and agreed milestones.",
			tc.CompanyName, tc.TargetTeam)
	case artifacts.KindMeetingBrief:
		return fmt.Sprintf("Context: Meeting Brief for %s.\nInclude recent interactions, open issues, stakeholder changes, and talking points.",
			tc.CompanyName)
	case artifacts.KindEmail:
		return fmt.Sprintf("Context: Follow-up email for %s regarding %s.\nInclude action items and next steps.",
			tc.CompanyName, tc.MeetingContext)
	default:
		return fmt.Sprintf("Context: Proposal for %s (%s).\nNeeds: %s.\n"+
			"REQUIREMENT: You MUST include a \"Pricing\" or \"Investment\" section with a Markdown Table "+
			"detailing line items (e.g., Implementation, Subscription, Support) and costs.",
			tc.CompanyName, tc.Industry, strings.Join(tc.Needs, ", "))
	}
}

// Prompt is the single-shot generation prompt for kind.
func Prompt(kind artifacts.Kind, tc artifacts.TemplateContext, instructions string) string {
	req, ok := outputRequirements[kind]
	if !ok {
		req = outputRequirements[artifacts.KindProposal]
	}

	var b strings.Builder
	b.WriteString("You are Velocity, the Contoso Sales Copilot Agent.\n\n")
	fmt.Fprintf(&b, "TASK: Generate assets for a %s.\n", kind)
	b.WriteString(promptContext(kind, tc))
	fmt.Fprintf(&b, "\nUser Instructions: %s\n\n", instructions)
	b.WriteString(`CRITICAL OUTPUT INSTRUCTIONS:
1. First, output your reasoning process inside <reasoning> tags.
2. Second, output a JSON array of references/citations inside <references> tags.
   Format: [{"type": "crm"|"email"|"file", "title": "Source Title", "keyPoint": "Extracted Insight"}]
   Cite the sources this draft relies on (e.g. a "CRM Deal Record" or "Email from CIO").
3. Third, output the JSON artifact inside <artifact_payload> tags.

Structure:
<reasoning>
- Step 1...
</reasoning>
<references>
[{"type": "crm", "title": "...", "keyPoint": "..."}]
</references>
<artifact_payload>
{
`)
	fmt.Fprintf(&b, "  \"documentContent\": %q,\n  \"presentationContent\": %q\n", req[0], req[1])
	b.WriteString("}\n</artifact_payload>\n\nTone: Professional, persuasive, and efficient.\n")
	return b.String()
}
