package artifacts

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/go-go-golems/velocity/pkg/tagged"
)

// Kind is the type of generated asset.
type Kind string

const (
	KindProposal     Kind = "proposal"
	KindHandoff      Kind = "handoff"
	KindMeetingBrief Kind = "meeting_brief"
	KindEmail        Kind = "email"
	KindVoiceOver    Kind = "voice_over"
	KindDemoVideo    Kind = "demo_video"
	KindGeneric      Kind = "generic"
)

var kindLabels = map[Kind]string{
	KindProposal:     "Proposal",
	KindHandoff:      "Handoff",
	KindMeetingBrief: "Meeting Brief",
	KindEmail:        "Email",
	KindVoiceOver:    "Voice Over",
	KindDemoVideo:    "Demo Video",
	KindGeneric:      "Generic",
}

// Label is the display name of the kind ("Meeting Brief").
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return kindLabels[KindGeneric]
}

// ParseKind accepts either the key ("meeting_brief") or the label ("Meeting Brief").
// Unknown values map to KindGeneric.
func ParseKind(s string) Kind {
	s = strings.TrimSpace(s)
	for k, l := range kindLabels {
		if strings.EqualFold(string(k), s) || strings.EqualFold(l, s) {
			return k
		}
	}
	return KindGeneric
}

type Status string

const (
	StatusDraft     Status = "Draft"
	StatusInReview  Status = "In Review"
	StatusFinalized Status = "Finalized"
)

// Artifact is a saved generated asset.
type Artifact struct {
	ID           string                 `json:"id" yaml:"id"`
	Title        string                 `json:"title" yaml:"title"`
	Kind         Kind                   `json:"kind" yaml:"kind"`
	Status       Status                 `json:"status" yaml:"status"`
	CompanyName  string                 `json:"companyName" yaml:"companyName"`
	CreatedAt    time.Time              `json:"createdAt" yaml:"createdAt"`
	LastModified time.Time              `json:"lastModified" yaml:"lastModified"`
	Content      tagged.ArtifactPayload `json:"content" yaml:"content"`
}

// New builds a draft artifact titled "<Kind> for <Company>".
func New(kind Kind, companyName string, content tagged.ArtifactPayload) Artifact {
	if companyName == "" {
		companyName = "Client"
	}
	now := time.Now()
	return Artifact{
		ID:           uuid.NewString(),
		Title:        kind.Label() + " for " + companyName,
		Kind:         kind,
		Status:       StatusDraft,
		CompanyName:  companyName,
		CreatedAt:    now,
		LastModified: now,
		Content:      content,
	}
}

// Touch sets LastModified to now; used after edits such as refinement.
func Touch(a Artifact) Artifact {
	a.LastModified = time.Now()
	return a
}
