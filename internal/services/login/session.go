package login

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/lib/logger/sl"
	"github.com/google/uuid"
)

const DefaultLanding = "/home"

type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// OutcomeEvent is handed to observers after an outcome has been applied to the session.
type OutcomeEvent struct {
	SessionID uuid.UUID
	Username  string
	Outcome   Outcome
	At        time.Time
}

type Observer interface {
	ObserveOutcome(ctx context.Context, ev OutcomeEvent)
}

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateClosed:
		return "closed"
	}

	return "unknown"
}

type Result struct {
	Outcome Outcome
	Err     error
}

// Session is one login form. It owns its attempt record and accepts one
// submission at a time: a submission made while another is being verified
// is rejected with ErrSubmissionInFlight and changes nothing.
type Session struct {
	id        uuid.UUID
	log       *slog.Logger
	governor  *Governor
	notifier  Notifier
	navigator Navigator
	observers []Observer
	lifetimes Lifetimes
	landing   string

	mu     sync.Mutex
	record models.AttemptRecord
	state  State
	cancel context.CancelFunc
}

type SessionOption func(*Session)

func WithSessionID(id uuid.UUID) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

func WithLanding(target string) SessionOption {
	return func(s *Session) {
		s.landing = target
	}
}

func WithLifetimes(l Lifetimes) SessionOption {
	return func(s *Session) {
		s.lifetimes = l
	}
}

func WithObservers(observers ...Observer) SessionOption {
	return func(s *Session) {
		s.observers = append(s.observers, observers...)
	}
}

func NewSession(
	log *slog.Logger,
	governor *Governor,
	record models.AttemptRecord,
	notifier Notifier,
	navigator Navigator,
	opts ...SessionOption,
) *Session {
	s := &Session{
		id:        uuid.New(),
		governor:  governor,
		notifier:  notifier,
		navigator: navigator,
		lifetimes: DefaultLifetimes(),
		landing:   DefaultLanding,
		record:    record,
	}

	for _, opt := range opts {
		opt(s)
	}
	s.log = log.With(slog.String("session", s.id.String()))

	return s
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Record() models.AttemptRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.record
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Locked reports the lockout state derived from the owned record.
func (s *Session) Locked() (bool, time.Duration) {
	s.mu.Lock()
	record := s.record
	s.mu.Unlock()

	now := s.governor.Now()
	security := s.governor.Security()

	return IsLocked(record, now, security), RemainingLockout(record, now, security)
}

// Submit runs one submission to completion.
func (s *Session) Submit(ctx context.Context, creds models.Credentials) (Outcome, error) {
	verifyCtx, record, err := s.begin(ctx)
	if err != nil {
		return Outcome{}, err
	}

	return s.finish(ctx, verifyCtx, creds, record)
}

// SubmitAsync admits the submission synchronously and verifies in the background,
// so of two calls the first one made is the one that runs.
func (s *Session) SubmitAsync(ctx context.Context, creds models.Credentials) <-chan Result {
	ch := make(chan Result, 1)

	verifyCtx, record, err := s.begin(ctx)
	if err != nil {
		ch <- Result{Err: err}
		close(ch)
		return ch
	}

	go func() {
		defer close(ch)
		outcome, err := s.finish(ctx, verifyCtx, creds, record)
		ch <- Result{Outcome: outcome, Err: err}
	}()

	return ch
}

// Close tears the session down and cancels a pending verification. A result
// that arrives afterwards is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = StateClosed
}

func (s *Session) begin(ctx context.Context) (context.Context, models.AttemptRecord, error) {
	const op = "login.Session.begin"

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateSubmitting:
		s.log.Debug("submission rejected, verification pending", slog.String("op", op))
		return nil, models.AttemptRecord{}, ErrSubmissionInFlight
	case StateSucceeded, StateClosed:
		return nil, models.AttemptRecord{}, ErrSessionClosed
	}

	verifyCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = StateSubmitting

	return verifyCtx, s.record, nil
}

func (s *Session) finish(
	ctx context.Context,
	verifyCtx context.Context,
	creds models.Credentials,
	record models.AttemptRecord,
) (Outcome, error) {
	const op = "login.Session.Submit"
	log := s.log.With(slog.String("op", op))

	outcome, err := s.governor.AttemptLogin(verifyCtx, creds, record)

	s.mu.Lock()
	if s.state != StateSubmitting {
		s.mu.Unlock()
		log.Info("discarding result for closed session")
		return Outcome{}, ErrSessionClosed
	}

	s.cancel()
	s.cancel = nil

	if err != nil {
		s.state = StateIdle
		s.mu.Unlock()
		log.Warn("submission aborted", sl.Err(err))
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}

	s.record = outcome.Record
	s.state = StateIdle
	if outcome.Kind == OutcomeAuthSucceeded {
		s.state = StateSucceeded
	}
	s.mu.Unlock()

	log.Info("submission finished", slog.String("outcome", outcome.Kind.String()))

	s.notifier.Notify(ctx, Notification(outcome, creds.Username, s.governor.Security(), s.lifetimes))

	ev := OutcomeEvent{SessionID: s.id, Username: creds.Username, Outcome: outcome, At: s.governor.Now()}
	for _, o := range s.observers {
		o.ObserveOutcome(ctx, ev)
	}

	if outcome.Kind == OutcomeAuthSucceeded {
		if err := s.navigator.Navigate(ctx, s.landing); err != nil {
			log.Error("failed to navigate after login", slog.String("target", s.landing), sl.Err(err))
		}
	}

	return outcome, nil
}
