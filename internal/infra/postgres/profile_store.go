package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kifuliiru-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ProfileStore reads and mutates quiz fields on the profiles table.
type ProfileStore struct {
	pool *pgxpool.Pool
}

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

func (s *ProfileStore) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var (
		profile domain.Profile
		role    string
		last    *time.Time
	)
	err := s.pool.QueryRow(ctx, `
		SELECT role, quiz_completed, quiz_score, quiz_attempts, last_quiz_attempt
		FROM profiles WHERE user_id = $1`, userID).
		Scan(&role, &profile.QuizCompleted, &profile.QuizScore, &profile.QuizAttempts, &last)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	profile.UserID = userID
	profile.Role = domain.Role(role)
	profile.LastQuizAttempt = last
	return profile, nil
}

// ApplyQuizResult advances the counters and records the score. The role
// upgrade is folded into the statement so a stale caller can never downgrade;
// the attempt-ledger insert makes the whole write idempotent per attempt ID.
func (s *ProfileStore) ApplyQuizResult(ctx context.Context, userID string, result domain.QuizResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO quiz_result_ledger (attempt_id) VALUES ($1)
		ON CONFLICT (attempt_id) DO NOTHING`, result.AttemptID)
	if err != nil {
		return fmt.Errorf("ledger insert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// This attempt's result was already applied; a retry is a no-op.
		return tx.Commit(ctx)
	}

	tag, err = tx.Exec(ctx, `
		UPDATE profiles SET
			quiz_attempts = quiz_attempts + 1,
			quiz_score = $2,
			quiz_completed = $3,
			last_quiz_attempt = $4,
			role = CASE WHEN $3 AND role = 'viewer' THEN 'editor' ELSE role END
		WHERE user_id = $1`,
		userID, result.Score, result.Passed, result.CompletedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return tx.Commit(ctx)
}
