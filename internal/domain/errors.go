package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the match target for all question-authoring failures.
	ErrValidation = errors.New("invalid question")
	// ErrInvalidInput is returned for an out-of-range answer index.
	ErrInvalidInput = errors.New("invalid input")
	// ErrImportFormat indicates an imported payload is not a quiz-set array.
	ErrImportFormat = errors.New("import payload is not a quiz set array")
	// ErrQuizSetNotFound indicates the named quiz set could not be loaded.
	ErrQuizSetNotFound = errors.New("quiz set not found")
)

// ValidationError carries the reason a question was rejected by the bank.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid question: %s", e.Reason)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validate checks the authoring invariants: non-empty text, at least two
// answers, exactly one marked correct.
func (q Question) Validate() error {
	if q.Text == "" {
		return &ValidationError{Reason: "empty question text"}
	}
	if q.Category == "" {
		return &ValidationError{Reason: "empty category"}
	}
	if len(q.Answers) < 2 {
		return &ValidationError{Reason: "fewer than two answers"}
	}
	correct := 0
	for _, a := range q.Answers {
		if a.Text == "" {
			return &ValidationError{Reason: "empty answer text"}
		}
		if a.Correct {
			correct++
		}
	}
	if correct != 1 {
		return &ValidationError{Reason: fmt.Sprintf("%d answers marked correct, want exactly 1", correct)}
	}
	return nil
}
