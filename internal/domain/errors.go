package domain

import "errors"

var (
	// ErrQuestionsUnavailable is returned when the question set cannot be
	// loaded or is empty; no quiz can start in that state.
	ErrQuestionsUnavailable = errors.New("quiz questions unavailable")
	// ErrUnauthorized indicates the user is not authenticated or their role
	// is not eligible for this quiz.
	ErrUnauthorized = errors.New("not eligible for this quiz")
	// ErrRateLimited indicates the daily attempt cap has been reached.
	ErrRateLimited = errors.New("daily quiz attempt limit reached")
	// ErrPersistenceFailed indicates the completion write did not succeed;
	// the locally computed result stands, the role upgrade does not.
	ErrPersistenceFailed = errors.New("quiz result could not be saved")
	// ErrProfileNotFound indicates the user has no profile record.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrSessionNotFound is returned when acting on a quiz session that was
	// never opened or has been released.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidTransition is returned for events that are not legal in the
	// session's current state.
	ErrInvalidTransition = errors.New("event not allowed in current quiz state")
	// ErrOptionOutOfRange indicates a submitted option index does not exist
	// on the current question.
	ErrOptionOutOfRange = errors.New("selected option out of range")
	// ErrContinueUnavailable is returned when continue is requested without a
	// confirmed passing result.
	ErrContinueUnavailable = errors.New("continue requires a saved passing result")
)
