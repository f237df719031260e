package memory

import (
	"context"
	"sync"

	"medmcq/internal/quiz"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]quiz.State
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]quiz.State),
	}
}

func (s *SessionStore) Get(_ context.Context, sessionID string) (quiz.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	return state, ok, nil
}

// Save stores state as is. States are immutable values, so sharing them is safe.
func (s *SessionStore) Save(_ context.Context, sessionID string, state quiz.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = state
	return nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
