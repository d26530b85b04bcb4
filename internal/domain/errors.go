package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no live quiz session exists for a quiz/user pair.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuizNotFound indicates the quiz definition could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrResultNotFound indicates that no stored result matches a query.
	ErrResultNotFound = errors.New("quiz result not found")
	// ErrQuestionNotFound indicates a question ID that is not part of the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidConfig is returned for malformed quiz or question definitions.
	ErrInvalidConfig = errors.New("invalid quiz configuration")
	// ErrUnknownQuestionType is returned when a question variant has no grading rule.
	ErrUnknownQuestionType = errors.New("unknown question type")
	// ErrAnswerTypeMismatch is returned when an answer value does not fit its question variant.
	ErrAnswerTypeMismatch = errors.New("answer type does not match question type")
	// ErrNoAnswer is returned when a question is submitted before it has been answered.
	ErrNoAnswer = errors.New("question has no answer")
	// ErrQuizClosed is returned when answers are changed after the quiz was submitted.
	ErrQuizClosed = errors.New("quiz already submitted")
	// ErrNotSubmitted is returned when grading is requested for a quiz that was not submitted.
	ErrNotSubmitted = errors.New("quiz not submitted")
	// ErrMaxAttemptsReached is returned when a user has used every allowed attempt.
	ErrMaxAttemptsReached = errors.New("maximum number of attempts reached")
	// ErrSessionActive is returned when the user's attempt is live on another instance.
	ErrSessionActive = errors.New("quiz attempt already in progress elsewhere")
	// ErrPersistence wraps failures reported by a result store.
	ErrPersistence = errors.New("result persistence failed")
	// ErrStoreUnavailable is returned when an operation needs a result store and none is configured.
	ErrStoreUnavailable = errors.New("result store not configured")
)
