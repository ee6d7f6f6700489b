package login

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
)

type Lifetimes struct {
	Success time.Duration `yaml:"success" validate:"gt=0"`
	Error   time.Duration `yaml:"error" validate:"gt=0"`
	Warn    time.Duration `yaml:"warn" validate:"gt=0"`
	Info    time.Duration `yaml:"info" validate:"gt=0"`
}

func DefaultLifetimes() Lifetimes {
	return Lifetimes{
		Success: 3 * time.Second,
		Error:   4 * time.Second,
		Warn:    5 * time.Second,
		Info:    3 * time.Second,
	}
}

func (l Lifetimes) For(severity models.Severity) time.Duration {
	switch severity {
	case models.SeveritySuccess:
		return l.Success
	case models.SeverityError:
		return l.Error
	case models.SeverityWarn:
		return l.Warn
	}

	return l.Info
}

// Notification renders the single user-facing message for an outcome.
func Notification(outcome Outcome, username string, security SecurityConfig, lifetimes Lifetimes) models.Notification {
	n := notification(outcome, username, security)
	n.Lifetime = lifetimes.For(n.Severity)

	return n
}

func notification(outcome Outcome, username string, security SecurityConfig) models.Notification {
	switch outcome.Kind {
	case OutcomeLocked:
		return models.Notification{
			Severity: models.SeverityWarn,
			Summary:  "Account Locked",
			Detail: fmt.Sprintf("Account is temporarily locked. Please try again in %d minutes.",
				ceilMinutes(outcome.Remaining)),
		}
	case OutcomeValidationFailed:
		msgs := make([]string, 0, len(outcome.Errors))
		for _, e := range outcome.Errors {
			msgs = append(msgs, e.Message)
		}

		return models.Notification{
			Severity: models.SeverityError,
			Summary:  "Validation Error",
			Detail:   "Please fix the following issues: " + strings.Join(msgs, ", "),
		}
	case OutcomeAuthFailed:
		if outcome.RemainingAttempts <= 0 {
			return models.Notification{
				Severity: models.SeverityError,
				Summary:  "Account Locked",
				Detail: fmt.Sprintf("Too many failed attempts. Account locked for %d minutes.",
					ceilMinutes(security.LockoutDuration)),
			}
		}

		return models.Notification{
			Severity: models.SeverityError,
			Summary:  "Login Failed",
			Detail:   fmt.Sprintf("Invalid credentials. %d attempts remaining.", outcome.RemainingAttempts),
		}
	case OutcomeAuthSucceeded:
		return models.Notification{
			Severity: models.SeveritySuccess,
			Summary:  "Login Successful",
			Detail:   fmt.Sprintf("Welcome back, %s!", strings.TrimSpace(username)),
		}
	}

	return models.Notification{Severity: models.SeverityInfo, Summary: "Login", Detail: outcome.Kind.String()}
}

func ceilMinutes(d time.Duration) int {
	return int(math.Ceil(d.Minutes()))
}
