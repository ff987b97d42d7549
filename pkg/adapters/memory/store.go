package memory

import (
	"context"
	"sync"

	"github.com/aretw0/agentwizard/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.WizardSession
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.WizardSession),
	}
}

// Save stores a copy of the session. The attached plan is shared, not copied.
func (s *Store) Save(ctx context.Context, session *domain.WizardSession) error {
	copied := session.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[session.SessionID] = copied
	return nil
}

// Load retrieves a copy of the session so callers can't mutate store state by pointer.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.WizardSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[sessionID]
	delete(s.data, sessionID)
	return ok, nil
}

// List returns active sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
