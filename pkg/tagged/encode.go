package tagged

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Encode renders an Envelope in the tagged wire format, blocks in the order
// reasoning, references, artifact_payload, followed by the visible text.
// Nil fields are left out, empty lists are not.
func Encode(e Envelope) (string, error) {
	var parts []string

	if e.Reasoning != nil {
		lines := make([]string, 0, len(e.Reasoning))
		for _, r := range e.Reasoning {
			lines = append(lines, "- "+r)
		}
		parts = append(parts, wrap(TagReasoning, strings.Join(lines, "\n")))
	}

	if e.References != nil {
		b, err := json.Marshal(e.References)
		if err != nil {
			return "", errors.Wrap(err, "encode references")
		}
		parts = append(parts, wrap(TagReferences, string(b)))
	}

	if e.Artifact != nil {
		b, err := json.Marshal(e.Artifact)
		if err != nil {
			return "", errors.Wrap(err, "encode artifact payload")
		}
		parts = append(parts, wrap(TagArtifact, string(b)))
	}

	if e.Text != "" {
		parts = append(parts, e.Text)
	}
	return strings.Join(parts, "\n"), nil
}

// MustEncode is Encode for envelopes built from plain strings, which cannot fail to marshal.
func MustEncode(e Envelope) string {
	s, err := Encode(e)
	if err != nil {
		panic(err)
	}
	return s
}

func wrap(tag string, inner string) string {
	return "<" + tag + ">\n" + inner + "\n</" + tag + ">"
}
