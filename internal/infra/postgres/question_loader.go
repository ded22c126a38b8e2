package postgres

import (
	"context"
	"fmt"

	"kifuliiru-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader reads the contributor quiz content from Postgres, joining
// quiz_questions with its ordered quiz_options rows.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, quizType string) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT q.id, q.question_text, q.explanation, q.order_number,
		       o.option_index, o.option_text, o.is_correct
		FROM quiz_questions q
		JOIN quiz_options o ON o.question_id = q.id
		WHERE q.quiz_type = $1
		ORDER BY q.order_number ASC, o.option_index ASC`, quizType)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	index := map[string]int{}
	for rows.Next() {
		var (
			id, questionText, explanation, optionText string
			orderNumber, optionIndex                  int
			isCorrect                                 bool
		)
		if err := rows.Scan(&id, &questionText, &explanation, &orderNumber, &optionIndex, &optionText, &isCorrect); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		i, ok := index[id]
		if !ok {
			i = len(questions)
			index[id] = i
			questions = append(questions, domain.Question{
				ID:          id,
				Prompt:      questionText,
				Explanation: explanation,
				QuizType:    quizType,
				OrderNumber: orderNumber,
			})
		}
		questions[i].Options = append(questions[i].Options, optionText)
		if isCorrect {
			questions[i].Correct = optionIndex
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read question rows: %w", err)
	}
	return questions, nil
}
