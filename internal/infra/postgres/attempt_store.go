package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"kifuliiru-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AttemptStore archives finalized attempts in quiz_attempts.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) SaveAttempt(ctx context.Context, attempt domain.Attempt, result domain.Result) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quiz_attempts (id, user_id, quiz_type, score, passed, answers, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		attempt.ID, attempt.UserID, attempt.QuizType, result.Score, result.Passed,
		string(answers), attempt.StartedAt, attempt.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}
