package memory

import (
	"context"
	"sync"

	"kifuliiru-quiz-service/internal/domain"
)

// AttemptStore keeps finalized attempts in memory, keyed by attempt ID.
type AttemptStore struct {
	mu       sync.Mutex
	attempts map[string]domain.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{attempts: make(map[string]domain.Attempt)}
}

func (s *AttemptStore) SaveAttempt(_ context.Context, attempt domain.Attempt, _ domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ID] = attempt
	return nil
}

// Get is a test helper for inspecting archived attempts.
func (s *AttemptStore) Get(attemptID string) (domain.Attempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[attemptID]
	return attempt, ok
}
