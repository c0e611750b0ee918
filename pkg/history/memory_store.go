package history

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu       sync.Mutex
	sessions []Session
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) SaveSession(_ context.Context, messages []Message) (Session, bool, error) {
	if len(messages) <= 1 {
		return Session{}, false, nil
	}
	s := NewSession(messages)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append([]Session{s}, m.sessions...)
	if len(m.sessions) > MaxSessions {
		m.sessions = m.sessions[:MaxSessions]
	}
	return s, true, nil
}

func (m *MemoryStore) ListSessions(_ context.Context) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Session{}, m.sessions...), nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = nil
	return nil
}
