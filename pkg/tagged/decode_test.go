package tagged

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePlainText(t *testing.T) {
	env := Decode("Sure, happy to help.")
	assert.Equal(t, "Sure, happy to help.", env.Text)
	assert.Empty(t, env.Reasoning)
	assert.NotNil(t, env.Reasoning)
	assert.Empty(t, env.References)
	assert.NotNil(t, env.References)
	assert.Nil(t, env.Artifact)
}

func TestDecodeRoundTrip(t *testing.T) {
	in := Envelope{
		Reasoning: []string{"step one", "step two"},
		References: []Reference{
			{Type: ReferenceCRM, Title: "CRM: Acme Corp", KeyPoint: "Budget $150k"},
			{Type: ReferenceNews, Title: "Expansion", KeyPoint: "New plant", URL: "https://example.com/a"},
		},
		Artifact: &ArtifactPayload{
			DocumentContent:     "# Proposal\n\n| a | b |\n> quoted </artifact_payload> inside",
			PresentationContent: "# Slides",
			VideoPrompt:         "a drone shot",
		},
		Text: "visible",
	}

	text, err := Encode(in)
	require.NoError(t, err)

	out := Decode(text)
	assert.Equal(t, in.Reasoning, out.Reasoning)
	assert.Equal(t, in.References, out.References)
	require.NotNil(t, out.Artifact)
	assert.Equal(t, *in.Artifact, *out.Artifact)
	assert.Equal(t, "visible", out.Text)
}

func TestDecodeIsIdempotent(t *testing.T) {
	text := "<reasoning>\n- a\n</reasoning>\nhello <references>\n[{\"type\":\"file\",\"title\":\"t\",\"keyPoint\":\"k\"}]\n</references>"
	assert.Equal(t, Decode(text), Decode(text))
}

func TestDecodeMalformedReferences(t *testing.T) {
	text := "<reasoning>\n- Step 1: Analyzing\n-   Step 2\n\n</reasoning>\n" +
		"<references>\n[{\"type\": \"crm\", oops\n</references>\n" +
		"<artifact_payload>\n{\"documentContent\":\"doc\",\"presentationContent\":\"deck\"}\n</artifact_payload>\nHere it is."

	env := Decode(text)
	assert.Equal(t, []string{"Step 1: Analyzing", "Step 2"}, env.Reasoning)
	assert.Equal(t, []Reference{}, env.References)
	require.NotNil(t, env.Artifact)
	assert.Equal(t, "doc", env.Artifact.DocumentContent)
	assert.Equal(t, "Here it is.", env.Text)
}

func TestDecodeMalformedArtifactIsDropped(t *testing.T) {
	env := Decode("Draft below.\n<artifact_payload>\n{not json}\n</artifact_payload>")
	assert.Nil(t, env.Artifact)
	assert.Equal(t, "Draft below.", env.Text)
}

func TestDecodeArtifactOnlySubstitutesAcknowledgement(t *testing.T) {
	env := Decode("<artifact_payload>{\"documentContent\":\"d\",\"presentationContent\":\"p\"}</artifact_payload>")
	require.NotNil(t, env.Artifact)
	assert.Equal(t, Acknowledgement, env.Text)
}

func TestDecodeBlocksInAnyOrder(t *testing.T) {
	text := "<artifact_payload>{\"documentContent\":\"d\",\"presentationContent\":\"p\"}</artifact_payload>" +
		"middle" +
		"<reasoning>- r</reasoning>"
	env := Decode(text)
	require.NotNil(t, env.Artifact)
	assert.Equal(t, []string{"r"}, env.Reasoning)
	assert.Equal(t, "middle", env.Text)
}

func TestDecodeOnlyFirstOccurrence(t *testing.T) {
	text := "<reasoning>\n- first\n</reasoning>a<reasoning>\n- second\n</reasoning>"
	env := Decode(text)
	assert.Equal(t, []string{"first"}, env.Reasoning)
	assert.Equal(t, "a<reasoning>\n- second\n</reasoning>", env.Text)
}

func TestDecodeUnterminatedBlockIsLiteral(t *testing.T) {
	text := "<reasoning>\n- never closed\n<references>[]</references>tail"
	env := Decode(text)
	assert.Empty(t, env.Reasoning)
	assert.Equal(t, []Reference{}, env.References)
	assert.Equal(t, "<reasoning>\n- never closed\ntail", env.Text)
}

func TestDecodeOpeningMarkerAtEnd(t *testing.T) {
	env := Decode("hello <artifact_payload>")
	assert.Nil(t, env.Artifact)
	assert.Equal(t, "hello <artifact_payload>", env.Text)
}

func TestDecodeNullReferences(t *testing.T) {
	env := Decode("<references>null</references>ok")
	assert.Equal(t, []Reference{}, env.References)
	assert.Equal(t, "ok", env.Text)
}

func TestEncodeOmitsAbsentBlocks(t *testing.T) {
	text := MustEncode(Envelope{
		Reasoning: []string{"Generating TTS audio..."},
		Artifact:  &ArtifactPayload{DocumentContent: "d", PresentationContent: "p"},
	})
	assert.NotContains(t, text, "<references>")
	assert.Contains(t, text, "<reasoning>\n- Generating TTS audio...\n</reasoning>\n<artifact_payload>\n")
}

func TestDecodedEnvelopeShape(t *testing.T) {
	env := Decode("just text")
	assert.NotNil(t, env.Reasoning)
	assert.NotNil(t, env.References)
	assert.Nil(t, env.Artifact)
	assert.False(t, env.HasArtifact())

	text := MustEncode(Envelope{Reasoning: []string{}, References: []Reference{}, Text: "t"})
	assert.Contains(t, text, "<reasoning>")
	assert.Contains(t, text, "<references>\n[]\n</references>")
	back := Decode(text)
	assert.Empty(t, back.Reasoning)
	assert.Empty(t, back.References)
	assert.Equal(t, "t", back.Text)
}
