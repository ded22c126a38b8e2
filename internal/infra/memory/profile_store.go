package memory

import (
	"context"
	"sync"

	"kifuliiru-quiz-service/internal/domain"
)

// ProfileStore is an in-memory app.ProfileStore for tests and local runs.
type ProfileStore struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
	applied  map[string]struct{} // attempt IDs already applied
}

func NewProfileStore(profiles map[string]domain.Profile) *ProfileStore {
	if profiles == nil {
		profiles = make(map[string]domain.Profile)
	}
	return &ProfileStore{
		profiles: profiles,
		applied:  make(map[string]struct{}),
	}
}

func (s *ProfileStore) GetProfile(_ context.Context, userID string) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return profile, nil
}

func (s *ProfileStore) ApplyQuizResult(_ context.Context, userID string, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	if _, done := s.applied[result.AttemptID]; done {
		return nil
	}
	s.applied[result.AttemptID] = struct{}{}

	profile.QuizAttempts++
	profile.QuizScore = result.Score
	profile.QuizCompleted = result.Passed
	completedAt := result.CompletedAt
	profile.LastQuizAttempt = &completedAt
	if result.Passed && profile.Role == domain.RoleViewer {
		profile.Role = domain.RoleEditor
	}
	s.profiles[userID] = profile
	return nil
}
