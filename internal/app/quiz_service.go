package app

import (
	"context"
	"fmt"
	"time"

	"kifuliiru-quiz-service/internal/config"
	"kifuliiru-quiz-service/internal/domain"
	"kifuliiru-quiz-service/internal/logger"
)

// QuestionRepository loads the ordered question set for a quiz type (from
// cache/backing store).
type QuestionRepository interface {
	GetQuestions(ctx context.Context, quizType string) ([]domain.Question, error)
}

// ProfileStore reads and mutates the quiz-relevant slice of user profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
	// ApplyQuizResult advances the attempt counters, records the score, and
	// upgrades viewer→editor when the result passed. It must be idempotent
	// per attempt ID and must never downgrade a role.
	ApplyQuizResult(ctx context.Context, userID string, result domain.QuizResult) error
}

// AttemptStore archives finalized attempts for the admin back-office.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, attempt domain.Attempt, result domain.Result) error
}

// SessionRepository tracks the live engine per user (in-memory; one user has
// at most one attempt in flight).
type SessionRepository interface {
	Get(userID string) (*Engine, bool)
	Put(userID string, engine *Engine)
	Delete(userID string)
}

// QuizService contains the contributor-quiz use cases: gate entry, build an
// engine per session, and persist completed attempts.
type QuizService struct {
	rules      config.Rules
	questions  QuestionRepository
	profiles   ProfileStore
	attempts   AttemptStore
	sessions   SessionRepository
	schedulers SchedulerFactory
	log        *logger.Logger
	now        func() time.Time
}

func NewQuizService(rules config.Rules, questions QuestionRepository, profiles ProfileStore, attempts AttemptStore, sessions SessionRepository, schedulers SchedulerFactory, log *logger.Logger) *QuizService {
	return &QuizService{
		rules:      rules,
		questions:  questions,
		profiles:   profiles,
		attempts:   attempts,
		sessions:   sessions,
		schedulers: schedulers,
		log:        log.With("component", "quiz"),
		now:        time.Now,
	}
}

// Open returns the user's live session, or gates entry and builds a fresh
// one. Eligibility violations and unavailable questions refuse entry before
// any state exists.
func (s *QuizService) Open(ctx context.Context, userID string) (*Engine, error) {
	if engine, ok := s.sessions.Get(userID); ok {
		return engine, nil
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if err := CheckEligibility(profile, s.now(), s.rules.MaxDailyAttempts); err != nil {
		return nil, err
	}

	questions, err := s.questions.GetQuestions(ctx, s.rules.QuizType)
	if err != nil {
		s.log.Error("question fetch failed", "quizType", s.rules.QuizType, "err", err)
		return nil, domain.ErrQuestionsUnavailable
	}
	if len(questions) == 0 {
		return nil, domain.ErrQuestionsUnavailable
	}
	if len(questions) > s.rules.TotalQuestions {
		questions = questions[:s.rules.TotalQuestions]
	}

	engine := NewEngine(userID, s.rules, questions, s.schedulers(), s.persistCompletion)
	s.sessions.Put(userID, engine)
	s.log.Info("quiz session opened", "userID", userID, "questions", len(questions))
	return engine, nil
}

// Release closes and drops the user's session, stopping any running timer.
func (s *QuizService) Release(userID string) {
	engine, ok := s.sessions.Get(userID)
	if !ok {
		return
	}
	engine.Close()
	s.sessions.Delete(userID)
}

// persistCompletion is the engine's completion hook: archive the attempt,
// then apply counters/score/role to the profile.
func (s *QuizService) persistCompletion(ctx context.Context, attempt domain.Attempt, result domain.Result) error {
	if err := s.attempts.SaveAttempt(ctx, attempt, result); err != nil {
		s.log.Error("attempt archive failed", "userID", attempt.UserID, "attemptID", attempt.ID, "err", err)
		return fmt.Errorf("save attempt: %w", err)
	}
	res := domain.QuizResult{
		AttemptID:   attempt.ID,
		Score:       result.Score,
		Passed:      result.Passed,
		CompletedAt: *attempt.CompletedAt,
	}
	if err := s.profiles.ApplyQuizResult(ctx, attempt.UserID, res); err != nil {
		s.log.Error("profile update failed", "userID", attempt.UserID, "attemptID", attempt.ID, "err", err)
		return fmt.Errorf("apply quiz result: %w", err)
	}
	s.log.Info("quiz attempt persisted", "userID", attempt.UserID, "score", result.Score, "passed", result.Passed)
	return nil
}
