package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"kifuliiru-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches question sets from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, quizType string) ([]domain.Question, error)
}

// QuestionRepository caches the ordered question set per quiz type in Redis
// (one JSON value per type) and falls back to the loader on cache miss.
// Stored as: SET quiz:{quizType}:questions {json} EX ttl
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestions(ctx context.Context, quizType string) ([]domain.Question, error) {
	key := r.key(quizType)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
		if questions, err := decodeQuestions(raw); err == nil {
			return questions, nil
		}
		// Corrupt cache entry; drop it and refill below.
		_ = r.client.Del(ctx, key).Err()
	}

	result, err, _ := r.sf.Do(quizType, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
			if questions, err := decodeQuestions(raw); err == nil {
				return questions, nil
			}
		}

		questions, err := r.loader.LoadQuestions(ctx, quizType)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(questions)
		if err != nil {
			return nil, fmt.Errorf("marshal questions: %w", err)
		}
		_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) key(quizType string) string {
	return "quiz:" + quizType + ":questions"
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func decodeQuestions(raw []byte) ([]domain.Question, error) {
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrQuestionsUnavailable
	}
	return questions, nil
}
