package login

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrSessionClosed      = errors.New("login session closed")
)

type ValidationError struct {
	Results []ValidationResult
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Results))
	for _, r := range e.Results {
		msgs = append(msgs, r.Message)
	}

	return "validation failed: " + strings.Join(msgs, ", ")
}

type LockoutError struct {
	Remaining time.Duration
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("account is temporarily locked for %s", e.Remaining.Round(time.Second))
}

type AuthError struct {
	RemainingAttempts int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("invalid credentials: %d attempts remaining", e.RemainingAttempts)
}
