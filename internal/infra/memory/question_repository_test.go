package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"kifuliiru-quiz-service/internal/domain"
)

func sampleSet() map[string][]domain.Question {
	return map[string][]domain.Question{
		"contributor": {
			{ID: "q1", Prompt: "p1", Options: []string{"a", "b"}, Correct: 0, OrderNumber: 1},
			{ID: "q2", Prompt: "p2", Options: []string{"a", "b"}, Correct: 1, OrderNumber: 2},
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

func TestQuestionRepositoryCaches(t *testing.T) {
	loader := &countingLoader{QuestionLoader: NewStaticQuestionLoader(sampleSet())}
	repo := NewQuestionRepository(loader, time.Minute)

	questions, err := repo.GetQuestions(context.Background(), "contributor")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call should hit cache, loader not incremented.
	_, _ = repo.GetQuestions(context.Background(), "contributor")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestQuestionRepositoryExpiry(t *testing.T) {
	loader := &countingLoader{QuestionLoader: NewStaticQuestionLoader(sampleSet())}
	repo := NewQuestionRepository(loader, time.Nanosecond)

	_, _ = repo.GetQuestions(context.Background(), "contributor")
	time.Sleep(time.Millisecond)
	_, _ = repo.GetQuestions(context.Background(), "contributor")
	if loader.calls != 2 {
		t.Fatalf("expected expired entry to reload, calls=%d", loader.calls)
	}
}

func TestStaticLoaderUnknownType(t *testing.T) {
	loader := NewStaticQuestionLoader(sampleSet())
	if _, err := loader.LoadQuestions(context.Background(), "nope"); !errors.Is(err, domain.ErrQuestionsUnavailable) {
		t.Fatalf("expected questions unavailable, got %v", err)
	}
}
