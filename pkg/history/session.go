package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/go-go-golems/velocity/pkg/tagged"
	"github.com/go-go-golems/velocity/pkg/turns"
)

const (
	// MaxSessions is how many sessions a store keeps, newest first.
	MaxSessions = 50

	RoleUser  = "user"
	RoleModel = "model"

	// WelcomeID marks the greeting shown when a chat opens. It is kept in saved
	// sessions but never sent to a model.
	WelcomeID = "welcome"

	titleRunes   = 40
	previewRunes = 60
	newSession   = "New Session"
)

// Message is one entry of a chat as the user saw it.
type Message struct {
	ID        string                  `json:"id" yaml:"id"`
	Role      string                  `json:"role" yaml:"role"`
	Text      string                  `json:"text" yaml:"text"`
	Timestamp time.Time               `json:"timestamp" yaml:"timestamp"`
	Artifact  *tagged.ArtifactPayload `json:"relatedArtifact,omitempty" yaml:"relatedArtifact,omitempty"`
}

func NewMessage(role, text string) Message {
	return Message{ID: uuid.NewString(), Role: role, Text: text, Timestamp: time.Now()}
}

// NewWelcomeMessage returns the greeting a chat starts with.
func NewWelcomeMessage(text string) Message {
	return Message{ID: WelcomeID, Role: RoleModel, Text: text, Timestamp: time.Now()}
}

type Session struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Date        time.Time `json:"date" yaml:"date"`
	Messages    []Message `json:"messages" yaml:"messages"`
	PreviewText string    `json:"previewText" yaml:"previewText"`
}

// Store is an append-only list of chat sessions.
type Store interface {
	// SaveSession stores messages as a new session. ok is false when the chat was too
	// short to keep (one message or less).
	SaveSession(ctx context.Context, messages []Message) (s Session, ok bool, err error)
	// ListSessions returns the sessions newest first.
	ListSessions(ctx context.Context) ([]Session, error)
	Clear(ctx context.Context) error
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// NewSession derives the title and preview of a chat. The title is the first user
// message cut to 40 runes, the preview the last message cut to 60 runes.
func NewSession(messages []Message) Session {
	title := newSession
	for _, m := range messages {
		if m.Role == RoleUser {
			title = truncate(m.Text, titleRunes)
			if title != m.Text {
				title += "..."
			}
			break
		}
	}
	preview := ""
	if len(messages) > 0 {
		preview = truncate(messages[len(messages)-1].Text, previewRunes) + "..."
	}
	return Session{
		ID:          uuid.NewString(),
		Title:       title,
		Date:        time.Now(),
		Messages:    append([]Message(nil), messages...),
		PreviewText: preview,
	}
}

// ToTurnHistory converts a chat into transcript history. Model messages become
// assistant messages; the welcome message is dropped.
func ToTurnHistory(messages []Message) []turns.Message {
	ret := make([]turns.Message, 0, len(messages))
	for _, m := range messages {
		if m.ID == WelcomeID {
			continue
		}
		role := m.Role
		if role == RoleModel {
			role = turns.RoleAssistant
		}
		ret = append(ret, turns.Message{Role: role, Text: m.Text})
	}
	return ret
}
