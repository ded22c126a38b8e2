package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"kifuliiru-quiz-service/internal/domain"
)

func TestProfileStoreApplyResult(t *testing.T) {
	store := NewProfileStore(map[string]domain.Profile{
		"u1": {UserID: "u1", Role: domain.RoleViewer},
	})
	result := domain.QuizResult{AttemptID: "a1", Score: 90, Passed: true, CompletedAt: time.Now()}

	if err := store.ApplyQuizResult(context.Background(), "u1", result); err != nil {
		t.Fatalf("apply: %v", err)
	}
	profile, _ := store.GetProfile(context.Background(), "u1")
	if profile.Role != domain.RoleEditor || profile.QuizAttempts != 1 || profile.QuizScore != 90 {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	// Re-applying the same attempt must be a no-op.
	if err := store.ApplyQuizResult(context.Background(), "u1", result); err != nil {
		t.Fatalf("reapply: %v", err)
	}
	profile, _ = store.GetProfile(context.Background(), "u1")
	if profile.QuizAttempts != 1 {
		t.Fatalf("retried write double-applied counters: %+v", profile)
	}
}

func TestProfileStoreNeverDowngrades(t *testing.T) {
	store := NewProfileStore(map[string]domain.Profile{
		"u1": {UserID: "u1", Role: domain.RoleAdmin},
	})
	result := domain.QuizResult{AttemptID: "a1", Score: 100, Passed: true, CompletedAt: time.Now()}
	if err := store.ApplyQuizResult(context.Background(), "u1", result); err != nil {
		t.Fatalf("apply: %v", err)
	}
	profile, _ := store.GetProfile(context.Background(), "u1")
	if profile.Role != domain.RoleAdmin {
		t.Fatalf("role must never move off admin, got %s", profile.Role)
	}
}

func TestProfileStoreUnknownUser(t *testing.T) {
	store := NewProfileStore(nil)
	if _, err := store.GetProfile(context.Background(), "ghost"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	result := domain.QuizResult{AttemptID: "a1", Score: 10, CompletedAt: time.Now()}
	if err := store.ApplyQuizResult(context.Background(), "ghost", result); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected not found on apply, got %v", err)
	}
}
