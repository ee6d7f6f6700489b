package login

import (
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
)

type OutcomeKind int

const (
	OutcomeLocked OutcomeKind = iota + 1
	OutcomeValidationFailed
	OutcomeAuthFailed
	OutcomeAuthSucceeded
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeLocked:
		return "locked"
	case OutcomeValidationFailed:
		return "validation_failed"
	case OutcomeAuthFailed:
		return "auth_failed"
	case OutcomeAuthSucceeded:
		return "auth_succeeded"
	}

	return "unknown"
}

// Outcome is the result of one submission. Record always holds the attempt record
// the owner must keep afterwards; it is unchanged for Locked and ValidationFailed.
type Outcome struct {
	Kind              OutcomeKind
	Record            models.AttemptRecord
	Remaining         time.Duration
	Errors            []ValidationResult
	RemainingAttempts int
}

// Err maps the outcome onto the error taxonomy. It is nil for AuthSucceeded.
func (o Outcome) Err() error {
	switch o.Kind {
	case OutcomeLocked:
		return &LockoutError{Remaining: o.Remaining}
	case OutcomeValidationFailed:
		return &ValidationError{Results: o.Errors}
	case OutcomeAuthFailed:
		return &AuthError{RemainingAttempts: o.RemainingAttempts}
	}

	return nil
}
