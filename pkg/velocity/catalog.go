package velocity

import (
	"github.com/go-go-golems/velocity/pkg/artifacts"
	"github.com/go-go-golems/velocity/pkg/inference/tools"
)

const (
	ToolGetLeadDetails      = "getLeadDetails"
	ToolGetCompanyNews      = "getCompanyNews"
	ToolGetRecentEmails     = "getRecentEmails"
	ToolGetOrgChanges       = "getOrgChanges"
	ToolGetPricing          = "getPricing"
	ToolGetLegalClause      = "getLegalClause"
	ToolSearchKnowledgeBase = "searchKnowledgeBase"
	ToolDraftProposal       = "draftProposal"
	ToolDraftHandoff        = "draftHandoff"
	ToolPrepareMeetingBrief = "prepareMeetingBrief"
	ToolDraftFollowUp       = "draftFollowUp"
	ToolDraftVoiceOver      = "draftVoiceOver"
	ToolCreateDemoVideo     = "createDemoVideo"
)

var generationKinds = map[string]artifacts.Kind{
	ToolDraftProposal:       artifacts.KindProposal,
	ToolDraftHandoff:        artifacts.KindHandoff,
	ToolPrepareMeetingBrief: artifacts.KindMeetingBrief,
	ToolDraftFollowUp:       artifacts.KindEmail,
	ToolDraftVoiceOver:      artifacts.KindVoiceOver,
	ToolCreateDemoVideo:     artifacts.KindDemoVideo,
}

// ArtifactKindForTool maps a generation tool to the kind of artifact it produces.
func ArtifactKindForTool(name string) (artifacts.Kind, bool) {
	k, ok := generationKinds[name]
	return k, ok
}

func companyName() tools.Parameter {
	return tools.RequiredString("companyName", "Company name, partial names are matched")
}

// Definitions returns the catalog in the order it is sent to the model.
func Definitions() []tools.ToolDefinition {
	return []tools.ToolDefinition{
		tools.NewToolDefinition(ToolGetLeadDetails,
			"Retrieve details about a sales lead or customer from the CRM CSV data.",
			companyName()),
		tools.NewToolDefinition(ToolGetCompanyNews,
			"Fetch the latest news headlines and updates.",
			companyName()),
		tools.NewToolDefinition(ToolGetRecentEmails,
			"Fetch recent email threads and communication signals from the account.",
			companyName()),
		tools.NewToolDefinition(ToolGetOrgChanges,
			"Check for recent leadership or role changes in the organization.",
			companyName()),
		tools.NewToolDefinition(ToolGetPricing,
			"Search for product pricing.",
			tools.RequiredString("productKeyword", "")),
		tools.NewToolDefinition(ToolGetLegalClause,
			"Fetch legal terms.",
			tools.RequiredString("industry", "")),
		tools.NewToolDefinition(ToolSearchKnowledgeBase,
			"Search Google Drive for past proposals and docs.",
			tools.RequiredString("query", "")),
		tools.NewToolDefinition(ToolDraftProposal,
			"Drafts a full sales proposal (Doc + Slides) with pricing and timelines. Trigger via @Velocity draft proposal.",
			companyName(),
			tools.RequiredString("instructions", "")),
		tools.NewToolDefinition(ToolDraftHandoff,
			"Generates a cross-team handoff document. Trigger via @Velocity handoff.",
			companyName(),
			tools.RequiredString("targetTeam", ""),
			tools.RequiredString("instructions", "")),
		tools.NewToolDefinition(ToolPrepareMeetingBrief,
			"Generates a pre-meeting briefing with recent interactions and talking points. Trigger via @Velocity prep meeting.",
			companyName(),
			tools.RequiredString("instructions", "")),
		tools.NewToolDefinition(ToolDraftFollowUp,
			"Drafts a personalized follow-up email after a meeting. Trigger via @Velocity follow up.",
			companyName(),
			tools.RequiredString("meetingContext", ""),
			tools.RequiredString("instructions", "")),
		tools.NewToolDefinition(ToolDraftVoiceOver,
			"Generates an audio voice-over script and audio file for a pitch. Trigger via @Velocity voice over.",
			companyName(),
			tools.RequiredString("script", "The text to speak")),
		tools.NewToolDefinition(ToolCreateDemoVideo,
			"Generates a short demo video concept using Veo. Trigger via @Velocity demo video.",
			companyName(),
			tools.RequiredString("prompt", "Visual description of the video")),
	}
}
