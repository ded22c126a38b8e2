package redis

import (
	"context"
	"testing"
	"time"

	"kifuliiru-quiz-service/internal/domain"
	"kifuliiru-quiz-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func sampleSet() map[string][]domain.Question {
	return map[string][]domain.Question{
		"contributor": {
			{ID: "q1", Prompt: "p1", Options: []string{"a", "b"}, Correct: 0, Explanation: "e1", QuizType: "contributor", OrderNumber: 1},
			{ID: "q2", Prompt: "p2", Options: []string{"a", "b"}, Correct: 1, Explanation: "e2", QuizType: "contributor", OrderNumber: 2},
		},
	}
}

type countingLoader struct {
	QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context, quizType string) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx, quizType)
}

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(sampleSet())}
	repo := NewQuestionRepository(client, loader, time.Minute)

	questions, err := repo.GetQuestions(context.Background(), "contributor")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(questions) != 2 || questions[0].ID != "q1" {
		t.Fatalf("unexpected questions: %+v", questions)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:contributor:questions") {
		t.Fatalf("expected cache key set")
	}

	// Second call should hit cache, loader not incremented.
	questions, err = repo.GetQuestions(context.Background(), "contributor")
	if err != nil {
		t.Fatalf("cached get: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if questions[1].Explanation != "e2" {
		t.Fatalf("cached content must round-trip fully, got %+v", questions[1])
	}
}

func TestQuestionRepositoryDropsCorruptEntry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	if err := mr.Set("quiz:contributor:questions", "not-json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(sampleSet())}
	repo := NewQuestionRepository(client, loader, time.Minute)

	questions, err := repo.GetQuestions(context.Background(), "contributor")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(questions) != 2 || loader.calls != 1 {
		t.Fatalf("expected reload past corrupt entry, questions=%d calls=%d", len(questions), loader.calls)
	}
}

func TestQuestionRepositoryLoaderFailure(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewQuestionRepository(client, memory.NewStaticQuestionLoader(nil), time.Minute)

	if _, err := repo.GetQuestions(context.Background(), "contributor"); err == nil {
		t.Fatalf("expected loader failure to surface")
	}
}
