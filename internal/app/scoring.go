package app

import (
	"math"

	"kifuliiru-quiz-service/internal/domain"
)

// Grade computes the final result for an attempt. It is a pure function of
// (questions, answers, passingScore): calling it twice on the same inputs
// yields identical results, so the completion write can be retried safely.
// Unanswered questions grade as the timed-out sentinel.
func Grade(questions []domain.Question, answers map[int]int, passingScore int) domain.Result {
	feedback := make([]domain.QuestionFeedback, 0, len(questions))
	correct := 0
	for i, q := range questions {
		answer, ok := answers[i]
		if !ok {
			answer = domain.AnswerTimedOut
		}
		isCorrect := answer == q.Correct
		if isCorrect {
			correct++
		}
		feedback = append(feedback, domain.QuestionFeedback{
			QuestionID:    q.ID,
			IsCorrect:     isCorrect,
			UserAnswer:    answer,
			CorrectAnswer: q.Correct,
			Explanation:   q.Explanation,
		})
	}

	score := 0
	if len(questions) > 0 {
		score = int(math.Round(float64(correct) / float64(len(questions)) * 100))
	}
	return domain.Result{
		Score:    score,
		Passed:   score >= passingScore,
		Feedback: feedback,
	}
}
