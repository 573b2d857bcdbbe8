package memory

import (
	"context"
	"fmt"
	"sync"

	"crisis-quiz-service/internal/app"
	"crisis-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Sessions are cloned on the way in and out so callers never alias stored state.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.GameSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.GameSession),
	}
}

func (s *SessionStore) Create(_ context.Context, session domain.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domain.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.GameSession{}, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *SessionStore) Update(_ context.Context, id string, mutate app.SessionMutation) (domain.GameSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[id]
	if !ok {
		return domain.GameSession{}, false, domain.ErrSessionNotFound
	}
	working := current.Clone()
	changed, err := mutate(&working)
	if err != nil {
		return domain.GameSession{}, false, err
	}
	if !changed {
		return current.Clone(), false, nil
	}
	s.sessions[id] = working.Clone()
	return working, true, nil
}
