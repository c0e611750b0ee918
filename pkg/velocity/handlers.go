package velocity

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/velocity/pkg/artifacts"
	"github.com/go-go-golems/velocity/pkg/crm"
	"github.com/go-go-golems/velocity/pkg/generation"
	"github.com/go-go-golems/velocity/pkg/inference/tools"
	"github.com/go-go-golems/velocity/pkg/tagged"
)

// Services are the collaborators the tools call into. Speech and Video may be nil,
// in which case the media tools return their artifact without media.
type Services struct {
	Directory crm.Directory
	Generator generation.ArtifactGenerator
	Speech    generation.SpeechSynthesizer
	Video     generation.VideoGenerator
}

type companyArgs struct {
	CompanyName string `json:"companyName"`
}

type pricingArgs struct {
	ProductKeyword string `json:"productKeyword"`
}

type legalArgs struct {
	Industry string `json:"industry"`
}

type searchArgs struct {
	Query string `json:"query"`
}

type draftArgs struct {
	CompanyName    string `json:"companyName"`
	Instructions   string `json:"instructions"`
	TargetTeam     string `json:"targetTeam,omitempty"`
	MeetingContext string `json:"meetingContext,omitempty"`
}

type voiceOverArgs struct {
	CompanyName string `json:"companyName"`
	Script      string `json:"script"`
}

type demoVideoArgs struct {
	CompanyName string `json:"companyName"`
	Prompt      string `json:"prompt"`
}

// LookupMiss is returned instead of an error when a lookup finds nothing,
// so the model can react to it.
type LookupMiss struct {
	Error string `json:"error"`
}

type NewsResult struct {
	News []string `json:"news"`
}

type EmailsResult struct {
	Emails []crm.Email `json:"emails"`
}

type OrgChangesResult struct {
	Changes []crm.OrgChange `json:"changes"`
}

type ClauseResult struct {
	Clause string `json:"clause"`
}

type SearchResult struct {
	Documents []crm.DocumentHit `json:"documents"`
}

// GenerationResult carries a tagged artifact response.
type GenerationResult struct {
	Result string `json:"result"`
}

type handlers struct {
	svc Services
}

// NewToolbox declares the catalog and binds every tool to its handler.
func NewToolbox(svc Services) (*tools.Toolbox, error) {
	if svc.Directory == nil {
		return nil, errors.New("velocity toolbox needs a directory")
	}
	if svc.Generator == nil {
		svc.Generator = generation.TemplateGenerator{}
	}
	h := &handlers{svc: svc}

	bound := map[string]tools.Handler{
		ToolGetLeadDetails:      tools.NewHandler(h.getLeadDetails),
		ToolGetCompanyNews:      tools.NewHandler(h.getCompanyNews),
		ToolGetRecentEmails:     tools.NewHandler(h.getRecentEmails),
		ToolGetOrgChanges:       tools.NewHandler(h.getOrgChanges),
		ToolGetPricing:          tools.NewHandler(h.getPricing),
		ToolGetLegalClause:      tools.NewHandler(h.getLegalClause),
		ToolSearchKnowledgeBase: tools.NewHandler(h.searchKnowledgeBase),
		ToolDraftProposal:       tools.NewHandler(h.draft(artifacts.KindProposal)),
		ToolDraftHandoff:        tools.NewHandler(h.draft(artifacts.KindHandoff)),
		ToolPrepareMeetingBrief: tools.NewHandler(h.draft(artifacts.KindMeetingBrief)),
		ToolDraftFollowUp:       tools.NewHandler(h.draft(artifacts.KindEmail)),
		ToolDraftVoiceOver:      tools.NewHandler(h.draftVoiceOver),
		ToolCreateDemoVideo:     tools.NewHandler(h.createDemoVideo),
	}

	tb := tools.NewToolbox(tools.NewInMemoryToolRegistry())
	for _, def := range Definitions() {
		if err := tb.Declare(def, bound[def.Name]); err != nil {
			return nil, errors.Wrapf(err, "declare %s", def.Name)
		}
	}
	if err := tb.Validate(); err != nil {
		return nil, err
	}
	return tb, nil
}

func (h *handlers) getLeadDetails(_ context.Context, a companyArgs) (any, error) {
	lead, ok := h.svc.Directory.Lead(a.CompanyName)
	if !ok {
		return LookupMiss{Error: "Lead not found"}, nil
	}
	return lead, nil
}

func (h *handlers) getCompanyNews(_ context.Context, a companyArgs) (NewsResult, error) {
	return NewsResult{News: h.svc.Directory.News(a.CompanyName)}, nil
}

func (h *handlers) getRecentEmails(_ context.Context, a companyArgs) (EmailsResult, error) {
	return EmailsResult{Emails: h.svc.Directory.Emails(a.CompanyName)}, nil
}

func (h *handlers) getOrgChanges(_ context.Context, a companyArgs) (OrgChangesResult, error) {
	return OrgChangesResult{Changes: h.svc.Directory.OrgChanges(a.CompanyName)}, nil
}

func (h *handlers) getPricing(_ context.Context, a pricingArgs) ([]crm.PricingItem, error) {
	return h.svc.Directory.Pricing(a.ProductKeyword), nil
}

func (h *handlers) getLegalClause(_ context.Context, a legalArgs) (ClauseResult, error) {
	return ClauseResult{Clause: h.svc.Directory.LegalClause(a.Industry)}, nil
}

func (h *handlers) searchKnowledgeBase(_ context.Context, a searchArgs) (SearchResult, error) {
	return SearchResult{Documents: h.svc.Directory.SearchKnowledgeBase(a.Query)}, nil
}

// TemplateContextFor resolves the company against the directory. Unknown companies keep
// the name as given; proposals for them get generic industry and needs.
func TemplateContextFor(dir crm.Directory, kind artifacts.Kind, companyName string) artifacts.TemplateContext {
	tc := artifacts.TemplateContext{CompanyName: companyName}
	if lead, ok := dir.Lead(companyName); ok {
		tc.CompanyName = lead.CompanyName
		tc.Industry = lead.Industry
		tc.Needs = lead.Needs
		return tc
	}
	if kind == artifacts.KindProposal {
		tc.Industry = "Technology"
		tc.Needs = []string{"General Services"}
	}
	return tc
}

func (h *handlers) draft(kind artifacts.Kind) func(context.Context, draftArgs) (GenerationResult, error) {
	return func(ctx context.Context, a draftArgs) (GenerationResult, error) {
		tc := TemplateContextFor(h.svc.Directory, kind, a.CompanyName)
		tc.TargetTeam = a.TargetTeam
		tc.MeetingContext = a.MeetingContext
		return GenerationResult{Result: h.svc.Generator.Generate(ctx, kind, tc, a.Instructions)}, nil
	}
}

func (h *handlers) draftVoiceOver(ctx context.Context, a voiceOverArgs) (GenerationResult, error) {
	payload := &tagged.ArtifactPayload{
		DocumentContent:     "## Voice Over Script for " + a.CompanyName + "\n\n" + a.Script,
		PresentationContent: "# Voice Over\n\n- **Client**: " + a.CompanyName + "\n- **Status**: Generated",
	}
	if h.svc.Speech != nil {
		audio, err := h.svc.Speech.Synthesize(ctx, a.Script)
		if err != nil {
			log.Warn().Err(err).Str("company", a.CompanyName).Msg("Speech synthesis failed, returning script only")
		} else {
			payload.AudioContent = audio
		}
	}
	s, err := tagged.Encode(tagged.Envelope{
		Reasoning: []string{"Generating TTS audio..."},
		Artifact:  payload,
	})
	if err != nil {
		return GenerationResult{}, err
	}
	return GenerationResult{Result: s}, nil
}

func (h *handlers) createDemoVideo(ctx context.Context, a demoVideoArgs) (GenerationResult, error) {
	payload := &tagged.ArtifactPayload{
		DocumentContent:     "## Demo Video Prompt for " + a.CompanyName + "\n\n**Prompt Used:** " + a.Prompt,
		PresentationContent: "# Demo Video\n\n- **Client**: " + a.CompanyName + "\n- **Model**: Veo 3.1",
		VideoPrompt:         a.Prompt,
	}
	if h.svc.Video != nil {
		uri, err := h.svc.Video.Generate(ctx, a.Prompt)
		if err != nil {
			log.Warn().Err(err).Str("company", a.CompanyName).Msg("Video generation failed, returning prompt only")
		} else {
			payload.VideoURI = uri
		}
	}
	s, err := tagged.Encode(tagged.Envelope{
		Reasoning: []string{"Generating video with Veo..."},
		Artifact:  payload,
	})
	if err != nil {
		return GenerationResult{}, err
	}
	return GenerationResult{Result: s}, nil
}
