package tagged

// ReferenceType names the kind of source a Reference cites.
type ReferenceType string

const (
	ReferenceCRM     ReferenceType = "crm"
	ReferenceEmail   ReferenceType = "email"
	ReferenceFile    ReferenceType = "file"
	ReferenceNews    ReferenceType = "news"
	ReferenceMeeting ReferenceType = "meeting"
)

// Reference is a citation accompanying a response.
type Reference struct {
	Type     ReferenceType `json:"type" yaml:"type"`
	Title    string        `json:"title" yaml:"title"`
	KeyPoint string        `json:"keyPoint" yaml:"keyPoint"`
	URL      string        `json:"url,omitempty" yaml:"url,omitempty"`
	ID       string        `json:"id,omitempty" yaml:"id,omitempty"`
}

// ArtifactPayload is the generated document/slide/audio/video bundle.
type ArtifactPayload struct {
	DocumentContent     string `json:"documentContent" yaml:"documentContent"`
	PresentationContent string `json:"presentationContent" yaml:"presentationContent"`
	AudioContent        string `json:"audioContent,omitempty" yaml:"audioContent,omitempty"`
	VideoURI            string `json:"videoUri,omitempty" yaml:"videoUri,omitempty"`
	VideoPrompt         string `json:"videoPrompt,omitempty" yaml:"videoPrompt,omitempty"`
}

// Envelope is the structured form of a tagged text.
// Decode always returns non-nil Reasoning and References, empty when the block is
// absent or could not be parsed; Artifact is nil when absent. Encode writes a block
// for every non-nil field, so an empty list still produces an empty block.
type Envelope struct {
	Reasoning  []string         `json:"reasoning" yaml:"reasoning"`
	References []Reference      `json:"references" yaml:"references"`
	Artifact   *ArtifactPayload `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	// Text is the visible message outside the blocks.
	Text string `json:"text" yaml:"text"`
}

// HasArtifact reports whether an artifact was decoded.
func (e Envelope) HasArtifact() bool {
	return e.Artifact != nil
}
