package tagged

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
)

// Acknowledgement replaces an empty visible text when an artifact was produced.
const Acknowledgement = "I've generated the requested asset."

type blockKind int

const (
	blockNone blockKind = iota
	blockReasoning
	blockReferences
	blockArtifact
)

const (
	TagReasoning  = "reasoning"
	TagReferences = "references"
	TagArtifact   = "artifact_payload"
)

var tags = map[blockKind]string{
	blockReasoning:  TagReasoning,
	blockReferences: TagReferences,
	blockArtifact:   TagArtifact,
}

func openTag(k blockKind) string  { return "<" + tags[k] + ">" }
func closeTag(k blockKind) string { return "</" + tags[k] + ">" }

// scan splits text into the visible remainder and the inner text of the first
// complete occurrence of each block kind. It walks the text once; an opening marker
// without a matching closing marker is kept as literal text and that kind is not
// looked for again.
func scan(text string) (visible string, inner map[blockKind]string) {
	inner = map[blockKind]string{}
	closed := map[blockKind]bool{}

	var out strings.Builder
	var buf strings.Builder
	state := blockNone
	openAt := 0

	for i := 0; i < len(text); {
		if state == blockNone {
			if text[i] == '<' {
				if k := matchOpen(text[i:], closed); k != blockNone {
					state = k
					openAt = i
					buf.Reset()
					i += len(openTag(k))
					continue
				}
			}
			out.WriteByte(text[i])
			i++
			continue
		}

		ct := closeTag(state)
		if strings.HasPrefix(text[i:], ct) {
			inner[state] = buf.String()
			closed[state] = true
			state = blockNone
			i += len(ct)
			continue
		}
		buf.WriteByte(text[i])
		i++

		if i == len(text) {
			// unterminated block: emit the marker literally and resume right after it
			out.WriteByte('<')
			closed[state] = true
			state = blockNone
			i = openAt + 1
		}
	}
	if state != blockNone {
		// opening marker at the very end of the text
		out.WriteString(text[openAt:])
	}
	return out.String(), inner
}

func matchOpen(s string, closed map[blockKind]bool) blockKind {
	for _, k := range []blockKind{blockReasoning, blockReferences, blockArtifact} {
		if closed[k] {
			continue
		}
		if strings.HasPrefix(s, openTag(k)) {
			return k
		}
	}
	return blockNone
}

// Decode extracts the reasoning, references and artifact blocks from a model
// response and returns them together with the remaining visible text.
// Malformed JSON inside a block drops that block only; decoding never fails.
func Decode(text string) Envelope {
	visible, inner := scan(text)

	env := Envelope{
		Reasoning:  []string{},
		References: []Reference{},
	}

	if raw, ok := inner[blockReasoning]; ok {
		env.Reasoning = parseReasoning(raw)
	}

	if raw, ok := inner[blockReferences]; ok {
		var refs []Reference
		if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &refs); err != nil {
			log.Warn().Err(err).Str("block", TagReferences).Msg("could not parse references block")
		} else if refs != nil {
			env.References = refs
		}
	}

	if raw, ok := inner[blockArtifact]; ok {
		var payload *ArtifactPayload
		if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
			log.Warn().Err(err).Str("block", TagArtifact).Msg("could not parse artifact payload")
		} else {
			env.Artifact = payload
		}
	}

	env.Text = strings.TrimSpace(visible)
	if env.Artifact != nil && env.Text == "" {
		env.Text = Acknowledgement
	}
	return env
}

func parseReasoning(raw string) []string {
	steps := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-") {
			line = strings.TrimSpace(line[1:])
		}
		if line == "" {
			continue
		}
		steps = append(steps, line)
	}
	return steps
}
