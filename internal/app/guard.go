package app

import (
	"time"

	"kifuliiru-quiz-service/internal/domain"
)

// attemptWindow is the rolling window for the daily attempt cap, measured
// from the profile's last recorded attempt.
const attemptWindow = 24 * time.Hour

// CheckEligibility verifies the preconditions for opening a quiz session.
// A violation prevents entry; no attempt state is created.
func CheckEligibility(p domain.Profile, now time.Time, maxDailyAttempts int) error {
	if !p.Role.CanTakeQuiz() {
		return domain.ErrUnauthorized
	}
	if p.QuizAttempts >= maxDailyAttempts &&
		p.LastQuizAttempt != nil &&
		now.Sub(*p.LastQuizAttempt) < attemptWindow {
		return domain.ErrRateLimited
	}
	return nil
}
