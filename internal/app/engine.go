package app

import (
	"context"
	"sync"
	"time"

	"kifuliiru-quiz-service/internal/config"
	"kifuliiru-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// SaveState reports the outcome of the completion write, separately from the
// locally computed score. A passing result does not grant the role upgrade
// until the write is confirmed.
type SaveState string

const (
	SaveNone    SaveState = "none"
	SavePending SaveState = "pending"
	SaveSaved   SaveState = "saved"
	SaveFailed  SaveState = "failed"
)

// CompletionFunc persists a finalized attempt. Implementations must be
// idempotent per attempt ID so a retried write cannot double-apply counters.
type CompletionFunc func(ctx context.Context, attempt domain.Attempt, result domain.Result) error

// QuestionView is the slice of a question exposed while the quiz is running.
// The correct index and explanation stay server-side until results.
type QuestionView struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Snapshot is the observable state pushed to the presentation layer after
// every transition and every tick.
type Snapshot struct {
	Status               domain.Status             `json:"status"`
	CurrentQuestionIndex int                       `json:"currentQuestionIndex"`
	TotalQuestions       int                       `json:"totalQuestions"`
	TimeLeft             int                       `json:"timeLeft"`
	SelectedAnswer       *int                      `json:"selectedAnswer"`
	Question             *QuestionView             `json:"question,omitempty"`
	Score                int                       `json:"score"`
	Passed               bool                      `json:"passed"`
	Feedback             []domain.QuestionFeedback `json:"feedback,omitempty"`
	SaveState            SaveState                 `json:"saveState"`
}

// Engine is the quiz state machine for a single user session. All mutation
// goes through its mutex; the scheduler's tick goroutine and the transport
// both funnel into it.
type Engine struct {
	userID    string
	rules     config.Rules
	questions []domain.Question
	scheduler Scheduler
	complete  CompletionFunc
	now       func() time.Time

	mu          sync.Mutex
	status      domain.Status
	attempt     *domain.Attempt
	result      *domain.Result
	saveState   SaveState
	closed      bool
	subscribers map[chan Snapshot]struct{}
}

func NewEngine(userID string, rules config.Rules, questions []domain.Question, scheduler Scheduler, complete CompletionFunc) *Engine {
	return newEngineWithClock(userID, rules, questions, scheduler, complete, time.Now)
}

// NewEngineWithClock is test-only for deterministic timestamps.
func NewEngineWithClock(userID string, rules config.Rules, questions []domain.Question, scheduler Scheduler, complete CompletionFunc, now func() time.Time) *Engine {
	return newEngineWithClock(userID, rules, questions, scheduler, complete, now)
}

func newEngineWithClock(userID string, rules config.Rules, questions []domain.Question, scheduler Scheduler, complete CompletionFunc, now func() time.Time) *Engine {
	return &Engine{
		userID:      userID,
		rules:       rules,
		questions:   questions,
		scheduler:   scheduler,
		complete:    complete,
		now:         now,
		status:      domain.StatusWelcome,
		saveState:   SaveNone,
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// Start moves welcome → in-progress with a fresh attempt and starts the
// countdown.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.status != domain.StatusWelcome {
		return domain.ErrInvalidTransition
	}

	e.attempt = &domain.Attempt{
		ID:             uuid.NewString(),
		UserID:         e.userID,
		QuizType:       e.rules.QuizType,
		Answers:        make(map[int]int),
		TimeLeft:       e.rules.TimePerQuestion,
		TotalQuestions: len(e.questions),
		StartedAt:      e.now(),
	}
	e.status = domain.StatusInProgress
	e.result = nil
	e.saveState = SaveNone
	e.scheduler.Start(time.Second, e.tick)
	e.broadcastLocked()
	return nil
}

// Answer records the selected option for the current question. Last write
// wins; the question does not advance and the timer keeps running.
func (e *Engine) Answer(optionIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.status != domain.StatusInProgress {
		return domain.ErrInvalidTransition
	}
	q := e.questions[e.attempt.CurrentQuestion]
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return domain.ErrOptionOutOfRange
	}
	e.attempt.Answers[e.attempt.CurrentQuestion] = optionIndex
	e.broadcastLocked()
	return nil
}

// Next advances to the following question, or finalizes on the last one.
// It requires a recorded answer for the current question; only timer expiry
// bypasses that guard.
func (e *Engine) Next() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.status != domain.StatusInProgress {
		return domain.ErrInvalidTransition
	}
	if _, answered := e.attempt.Answers[e.attempt.CurrentQuestion]; !answered {
		return domain.ErrInvalidTransition
	}
	e.advanceLocked()
	return nil
}

// Previous steps back one question (floored at the first) and resets the
// timer. A previously recorded answer is kept.
func (e *Engine) Previous() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.status != domain.StatusInProgress {
		return domain.ErrInvalidTransition
	}
	if e.attempt.CurrentQuestion > 0 {
		e.attempt.CurrentQuestion--
		e.attempt.TimeLeft = e.rules.TimePerQuestion
	}
	e.broadcastLocked()
	return nil
}

// Retry moves results → welcome with all attempt state cleared. The fetched
// question set is kept; the committed attempt counter is not touched.
func (e *Engine) Retry() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.status != domain.StatusResults {
		return domain.ErrInvalidTransition
	}
	e.attempt = nil
	e.result = nil
	e.saveState = SaveNone
	e.status = domain.StatusWelcome
	e.broadcastLocked()
	return nil
}

// Continue validates the pass-gated exit. It succeeds only when the result
// passed and the completion write is confirmed; the caller performs the
// actual navigation.
func (e *Engine) Continue() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.status != domain.StatusResults || e.result == nil {
		return domain.ErrInvalidTransition
	}
	if !e.result.Passed || e.saveState != SaveSaved {
		return domain.ErrContinueUnavailable
	}
	return nil
}

// RetrySave re-runs a failed completion write.
func (e *Engine) RetrySave() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.status != domain.StatusResults || e.saveState != SaveFailed {
		return domain.ErrInvalidTransition
	}
	e.saveState = SavePending
	attempt := e.attemptCopyLocked()
	result := *e.result
	e.broadcastLocked()
	go e.persist(attempt, result)
	return nil
}

// Close tears the session down: the countdown stops and all subscriber
// channels are closed. Further events are rejected.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.scheduler.Stop()
	for ch := range e.subscribers {
		delete(e.subscribers, ch)
		close(ch)
	}
}

// tick is driven by the scheduler once per second while in-progress. On
// expiry the timed-out sentinel is recorded if needed and the question
// force-advances exactly as Next would.
func (e *Engine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.status != domain.StatusInProgress {
		return
	}
	e.attempt.TimeLeft--
	if e.attempt.TimeLeft > 0 {
		e.broadcastLocked()
		return
	}
	if _, answered := e.attempt.Answers[e.attempt.CurrentQuestion]; !answered {
		e.attempt.Answers[e.attempt.CurrentQuestion] = domain.AnswerTimedOut
	}
	e.advanceLocked()
}

func (e *Engine) advanceLocked() {
	if e.attempt.CurrentQuestion < e.attempt.TotalQuestions-1 {
		e.attempt.CurrentQuestion++
		e.attempt.TimeLeft = e.rules.TimePerQuestion
		e.broadcastLocked()
		return
	}
	e.finalizeLocked()
}

// finalizeLocked scores the attempt exactly once and kicks off the
// completion write. The IsComplete guard makes a duplicate next/tick a no-op.
func (e *Engine) finalizeLocked() {
	if e.attempt.IsComplete {
		return
	}
	e.scheduler.Stop()

	result := Grade(e.questions, e.attempt.Answers, e.rules.PassingScore)
	completedAt := e.now()
	e.attempt.Score = result.Score
	e.attempt.CompletedAt = &completedAt
	e.attempt.IsComplete = true
	e.result = &result
	e.status = domain.StatusResults
	e.saveState = SavePending
	e.broadcastLocked()

	go e.persist(e.attemptCopyLocked(), result)
}

// persist runs the completion write off the engine lock and folds the
// outcome back into the snapshot. Failure is not fatal to showing results,
// but it keeps Continue blocked.
func (e *Engine) persist(attempt domain.Attempt, result domain.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := e.complete(ctx, attempt, result)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != domain.StatusResults || e.saveState != SavePending {
		// Session moved on (retry/teardown) while the write was in flight.
		return
	}
	if err != nil {
		e.saveState = SaveFailed
	} else {
		e.saveState = SaveSaved
	}
	e.broadcastLocked()
}

func (e *Engine) attemptCopyLocked() domain.Attempt {
	cp := *e.attempt
	cp.Answers = make(map[int]int, len(e.attempt.Answers))
	for k, v := range e.attempt.Answers {
		cp.Answers[k] = v
	}
	return cp
}

// Snapshot returns the current observable state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot after every mutation.
// The caller must invoke the returned cancel function to avoid leaks.
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	e.mu.Lock()
	e.subscribers[ch] = struct{}{}
	initial := e.snapshotLocked()
	e.mu.Unlock()

	ch <- initial

	cancel := func() {
		e.mu.Lock()
		if _, ok := e.subscribers[ch]; ok {
			delete(e.subscribers, ch)
			close(ch)
		}
		e.mu.Unlock()
	}
	return ch, cancel
}

func (e *Engine) broadcastLocked() {
	snap := e.snapshotLocked()
	for ch := range e.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow reader never blocks a tick.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Status:         e.status,
		TotalQuestions: len(e.questions),
		SaveState:      e.saveState,
	}
	if e.status == domain.StatusInProgress && e.attempt != nil {
		snap.CurrentQuestionIndex = e.attempt.CurrentQuestion
		snap.TimeLeft = e.attempt.TimeLeft
		q := e.questions[e.attempt.CurrentQuestion]
		snap.Question = &QuestionView{Prompt: q.Prompt, Options: q.Options}
		if answer, ok := e.attempt.Answers[e.attempt.CurrentQuestion]; ok {
			selected := answer
			snap.SelectedAnswer = &selected
		}
	}
	if e.status == domain.StatusResults && e.result != nil {
		snap.Score = e.result.Score
		snap.Passed = e.result.Passed
		snap.Feedback = e.result.Feedback
	}
	return snap
}
