package memory

import (
	"sync"

	"kifuliiru-quiz-service/internal/app"
)

// SessionStore is the in-memory implementation of app.SessionRepository,
// keyed by user ID.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Engine
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Engine),
	}
}

func (s *SessionStore) Get(userID string) (*app.Engine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	engine, ok := s.sessions[userID]
	return engine, ok
}

func (s *SessionStore) Put(userID string, engine *app.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = engine
}

func (s *SessionStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
