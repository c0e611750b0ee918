package serde

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/velocity/pkg/turns"
)

// NormalizeTurn applies serde defaults without mutating order.
func NormalizeTurn(t *turns.Turn) {
	if t == nil {
		return
	}
	for i := range t.Blocks {
		b := &t.Blocks[i]
		if b.Payload == nil {
			b.Payload = map[string]any{}
		}
		if strings.TrimSpace(b.Role) != "" {
			continue
		}
		switch b.Kind {
		case turns.BlockKindLLMText, turns.BlockKindToolCall:
			b.Role = turns.RoleAssistant
		case turns.BlockKindUser:
			b.Role = turns.RoleUser
		case turns.BlockKindSystem:
			b.Role = turns.RoleSystem
		case turns.BlockKindToolUse:
			b.Role = turns.RoleTool
		}
	}
}

// ToYAML marshals a Turn to YAML.
func ToYAML(t *turns.Turn) ([]byte, error) {
	if t == nil {
		return []byte("{}\n"), nil
	}
	snapshot := t.Clone()
	NormalizeTurn(snapshot)
	return yaml.Marshal(snapshot)
}

// FromYAML unmarshals a Turn from YAML.
func FromYAML(b []byte) (*turns.Turn, error) {
	var t turns.Turn
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, errors.Wrap(err, "decode turn yaml")
	}
	NormalizeTurn(&t)
	return &t, nil
}

// SaveTurnYAML writes a Turn to a YAML file.
func SaveTurnYAML(path string, t *turns.Turn) error {
	data, err := ToYAML(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadTurnYAML reads a Turn from a YAML file.
func LoadTurnYAML(path string) (*turns.Turn, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return FromYAML(b)
}
