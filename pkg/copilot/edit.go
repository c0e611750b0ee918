package copilot

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/velocity/pkg/artifacts"
	"github.com/go-go-golems/velocity/pkg/inference/engine"
	"github.com/go-go-golems/velocity/pkg/turns"
)

// DraftEmailPlaceholder is returned when no model is available or it answered nothing.
const DraftEmailPlaceholder = "Draft email content..."

func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.engine.RunInference(ctx, &engine.Request{
		Turn: turns.NewTurnBuilder().WithUserPrompt(prompt).Build(),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

func (s *Service) available() bool {
	return !engine.IsUnavailable(s.engine)
}

func refinePrompt(full, selected, instruction string) string {
	return fmt.Sprintf(`You are an expert document editor.
TASK: Update the document based on the user's instruction.
ORIGINAL: %s
SELECTED: %q
INSTRUCTION: %q
OUTPUT: Return ONLY the full updated markdown content.`, full, selected, instruction)
}

// RefineArtifact rewrites full following instruction, focused on selected. Any failure
// returns full unchanged.
func (s *Service) RefineArtifact(ctx context.Context, full, selected, instruction string) string {
	if !s.available() {
		return full
	}
	out, err := s.complete(ctx, refinePrompt(full, selected, instruction))
	if err != nil {
		log.Warn().Err(err).Msg("Refine failed, keeping original content")
		return full
	}
	if out == "" {
		return full
	}
	return out
}

// RefineAndSave refines the document of a stored artifact and saves the result.
func (s *Service) RefineAndSave(ctx context.Context, id, selected, instruction string) (artifacts.Artifact, error) {
	a, ok, err := s.artifacts.Get(ctx, id)
	if err != nil {
		return artifacts.Artifact{}, err
	}
	if !ok {
		return artifacts.Artifact{}, errors.Errorf("artifact %s not found", id)
	}
	a.Content.DocumentContent = s.RefineArtifact(ctx, a.Content.DocumentContent, selected, instruction)
	a = artifacts.Touch(a)
	if err := s.artifacts.Save(ctx, a); err != nil {
		return artifacts.Artifact{}, errors.Wrap(err, "save refined artifact")
	}
	return a, nil
}

func emailFallback(title string) string {
	return fmt.Sprintf("Subject: %s\n\nPlease find attached the %s for your review.\n\nBest regards,\n[Your Name]", title, title)
}

// DraftEmailForArtifact writes a short cover email for sending a.
func (s *Service) DraftEmailForArtifact(ctx context.Context, a artifacts.Artifact) string {
	if !s.available() {
		return DraftEmailPlaceholder
	}
	prompt := fmt.Sprintf("Draft a concise email to the client %s attaching the %s. Return only the body text.",
		a.CompanyName, a.Title)
	out, err := s.complete(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Str("artifact", a.ID).Msg("Email draft failed, using template")
		return emailFallback(a.Title)
	}
	if out == "" {
		return DraftEmailPlaceholder
	}
	return out
}
