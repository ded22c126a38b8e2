package domain

import "time"

// AnswerTimedOut is recorded when the countdown reaches zero before the user
// picked an option. It never matches a correct index, so it scores as wrong.
const AnswerTimedOut = -1

// Role is the closed set of permission levels a profile can hold.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// CanTakeQuiz reports whether this role may sit the contributor quiz.
// Editors and above already hold contribution rights.
func (r Role) CanTakeQuiz() bool {
	return r == RoleViewer
}

// Status tracks where a quiz session is in its lifecycle.
type Status string

const (
	StatusWelcome    Status = "welcome"
	StatusInProgress Status = "in-progress"
	StatusResults    Status = "results"
)

// Question models an MCQ question with exactly one correct option index.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
	QuizType    string   `json:"quizType"`
	OrderNumber int      `json:"orderNumber"`
}

// Attempt is one user's run through the quiz, from start to scoring.
// Answers maps question index to the selected option index (or AnswerTimedOut).
type Attempt struct {
	ID              string
	UserID          string
	QuizType        string
	CurrentQuestion int
	Answers         map[int]int
	TimeLeft        int
	Score           int
	TotalQuestions  int
	StartedAt       time.Time
	CompletedAt     *time.Time
	IsComplete      bool
}

// QuestionFeedback is the per-question outcome computed at scoring time.
type QuestionFeedback struct {
	QuestionID    string `json:"questionId"`
	IsCorrect     bool   `json:"isCorrect"`
	UserAnswer    int    `json:"userAnswer"`
	CorrectAnswer int    `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// Result is the final grade of an attempt.
type Result struct {
	Score    int                `json:"score"`
	Passed   bool               `json:"passed"`
	Feedback []QuestionFeedback `json:"feedback"`
}

// Profile holds the quiz-relevant slice of a user's account record.
type Profile struct {
	UserID          string
	Role            Role
	QuizCompleted   bool
	QuizScore       int
	QuizAttempts    int
	LastQuizAttempt *time.Time
}

// QuizResult is the completion write applied to a profile: counters advance,
// and the role moves viewer to editor only when Passed is set.
type QuizResult struct {
	AttemptID   string
	Score       int
	Passed      bool
	CompletedAt time.Time
}
