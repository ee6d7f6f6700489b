package login

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/lib/logger/sl"
)

type Verifier interface {
	Verify(ctx context.Context, username string, password string) (bool, error)
}

type Clock interface {
	Now() time.Time
}

// Counter is satisfied by prometheus.Counter.
type Counter interface {
	Inc()
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Governor decides whether a submission may reach the verifier and how the
// attempt record changes afterwards. It holds no per-session state.
type Governor struct {
	log            *slog.Logger
	verifier       Verifier
	security       SecurityConfig
	rules          ValidationRules
	clock          Clock
	verifyTimeout  time.Duration
	verifierErrors Counter
}

type Option func(*Governor)

func WithClock(clock Clock) Option {
	return func(g *Governor) {
		g.clock = clock
	}
}

// WithVerifyTimeout bounds a single verifier call. A timed out call counts as a failure.
func WithVerifyTimeout(timeout time.Duration) Option {
	return func(g *Governor) {
		g.verifyTimeout = timeout
	}
}

// WithVerifierErrors counts every verifier call that ended in an error.
func WithVerifierErrors(c Counter) Option {
	return func(g *Governor) {
		g.verifierErrors = c
	}
}

// New returns a new instance of the login Governor
func New(
	log *slog.Logger,
	verifier Verifier,
	security SecurityConfig,
	rules ValidationRules,
	opts ...Option,
) *Governor {
	g := &Governor{
		log:      log,
		verifier: verifier,
		security: security,
		rules:    rules,
		clock:    systemClock{},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *Governor) Security() SecurityConfig { return g.security }

func (g *Governor) Rules() ValidationRules { return g.rules }

func (g *Governor) Now() time.Time { return g.clock.Now() }

// Validate checks both fields and returns every failing result.
func (g *Governor) Validate(creds models.Credentials) []ValidationResult {
	var failed []ValidationResult
	for _, res := range []ValidationResult{
		ValidateField(FieldUsername, creds.Username, g.rules),
		ValidateField(FieldPassword, creds.Password, g.rules),
	} {
		if !res.Valid {
			failed = append(failed, res)
		}
	}

	return failed
}

// AttemptLogin runs lock check, field validation, verification and record update in that order.
// Verifier errors and panics are reported as AuthFailed so the counter still advances.
// An error is returned only when ctx is done before the verifier is called.
func (g *Governor) AttemptLogin(ctx context.Context, creds models.Credentials, record models.AttemptRecord) (Outcome, error) {
	const op = "login.AttemptLogin"
	log := g.log.With(slog.String("op", op))

	now := g.clock.Now()
	if IsLocked(record, now, g.security) {
		remaining := RemainingLockout(record, now, g.security)
		log.Warn("login attempt while locked", slog.Duration("remaining", remaining))

		return Outcome{Kind: OutcomeLocked, Record: record, Remaining: remaining}, nil
	}

	if failed := g.Validate(creds); len(failed) > 0 {
		log.Info("credentials failed validation", slog.Int("errors", len(failed)))

		return Outcome{Kind: OutcomeValidationFailed, Record: record, Errors: failed}, nil
	}

	if err := ctx.Err(); err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}

	ok := g.verify(ctx, log, creds)

	now = g.clock.Now()
	if !ok {
		updated := RecordFailure(record, now, g.security)
		remaining := RemainingAttempts(updated, g.security)
		log.Warn("invalid credentials", slog.Int("attempts", updated.Count), slog.Int("remaining", remaining))

		return Outcome{Kind: OutcomeAuthFailed, Record: updated, RemainingAttempts: remaining}, nil
	}

	log.Info("credentials verified")

	return Outcome{Kind: OutcomeAuthSucceeded, Record: RecordSuccess(now)}, nil
}

func (g *Governor) verify(ctx context.Context, log *slog.Logger, creds models.Credentials) (ok bool) {
	if g.verifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.verifyTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("verifier panicked", slog.Any("panic", r))
			g.countVerifierError()
			ok = false
		}
	}()

	ok, err := g.verifier.Verify(ctx, strings.TrimSpace(creds.Username), creds.Password)
	if err != nil {
		log.Error("verifier failed", sl.Err(err))
		g.countVerifierError()
		return false
	}

	return ok
}

func (g *Governor) countVerifierError() {
	if g.verifierErrors != nil {
		g.verifierErrors.Inc()
	}
}
