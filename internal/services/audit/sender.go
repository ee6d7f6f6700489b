package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/lib/logger/sl"
	"github.com/cenkalti/backoff/v4"
)

type EventPublisher interface {
	Publish(ctx context.Context, key, data []byte) error
}

// EventProvider hands out buffered events and takes back the ones that could not be published.
type EventProvider interface {
	NewEvents(ctx context.Context, limit int) ([]models.AuditEvent, error)
	Requeue(ctx context.Context, event models.AuditEvent) error
}

const (
	defaultPublishRetries  = 3
	defaultPublishInterval = 100 * time.Millisecond
)

type Sender struct {
	log            *slog.Logger
	eventPublisher EventPublisher
	eventProvider  EventProvider

	retries         uint64
	initialInterval time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	done     sync.WaitGroup
}

type SenderOption func(*Sender)

// WithPublishRetry sets how often a failed publish is retried within one tick
// before the event goes back to the provider.
func WithPublishRetry(retries uint64, initialInterval time.Duration) SenderOption {
	return func(s *Sender) {
		s.retries = retries
		s.initialInterval = initialInterval
	}
}

func NewSender(
	log *slog.Logger,
	eventPublisher EventPublisher,
	eventProvider EventProvider,
	opts ...SenderOption,
) *Sender {
	s := &Sender{
		log:             log,
		eventPublisher:  eventPublisher,
		eventProvider:   eventProvider,
		retries:         defaultPublishRetries,
		initialInterval: defaultPublishInterval,
		stopChan:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// StartProducing publishes up to limit buffered events every interval until ctx
// is done or StopSending is called. Events still buffered on StopSending are flushed.
func (s *Sender) StartProducing(ctx context.Context, limit int, interval time.Duration) {
	const op = "audit.Sender.StartProducing"
	log := s.log.With(slog.String("op", op))

	limit = max(limit, 1)
	log.Info("starting producing events", slog.Int("limit", limit), slog.Duration("interval", interval))

	if err := ctx.Err(); err != nil {
		log.Info("stopping event producing", sl.Err(err))
		return
	}

	ticker := time.NewTicker(interval)

	s.done.Add(1)
	go func() {
		defer s.done.Done()
		defer ticker.Stop()
		defer log.Info("stopping event producing")

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				s.flush(ctx, limit)
				return
			case <-ticker.C:
				s.produce(ctx, limit)
			}
		}
	}()
}

// StopSending stops the producing loop and waits for it to exit.
func (s *Sender) StopSending() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.done.Wait()
}

// flush drains the provider until a batch comes back short or nothing in it
// could be published. Undelivered events stay with the provider.
func (s *Sender) flush(ctx context.Context, limit int) {
	for {
		taken, published := s.produce(ctx, limit)
		if taken < limit || published == 0 {
			return
		}
	}
}

func (s *Sender) produce(ctx context.Context, limit int) (int, int) {
	const op = "audit.Sender.produce"
	log := s.log.With(slog.String("op", op))

	events, err := s.eventProvider.NewEvents(ctx, limit)
	if err != nil {
		log.Error("failed to get new events", sl.Err(err))
		return 0, 0
	}

	var published atomic.Int32
	wg := &sync.WaitGroup{}
	for _, event := range events {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.processEvent(ctx, event) {
				published.Add(1)
			}
		}()
	}
	wg.Wait()

	return len(events), int(published.Load())
}

func (s *Sender) processEvent(ctx context.Context, event models.AuditEvent) bool {
	const op = "audit.Sender.processEvent"
	log := s.log.With(slog.String("op", op), slog.String("eventId", event.ID.String()))

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to encode event", sl.Err(err))
		return false
	}

	publish := func() error {
		return s.eventPublisher.Publish(ctx, []byte(event.Outcome), payload)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("failed to publish event, retrying", sl.Err(err), slog.Duration("wait", wait))
	}

	if err := backoff.RetryNotify(publish, s.newBackOff(ctx), notify); err != nil {
		log.Error("failed to Publish event", sl.Err(err))

		if err := s.eventProvider.Requeue(ctx, event); err != nil {
			log.Error("failed to requeue event, dropping", sl.Err(err))
		}

		return false
	}

	return true
}

func (s *Sender) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialInterval
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, s.retries), ctx)
}
