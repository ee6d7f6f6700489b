package audit

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/services/login"
	"github.com/google/uuid"
)

var ErrBufferFull = errors.New("audit buffer is full")

// Recorder turns login outcomes into audit events and buffers them for the Sender.
// When the buffer is full new events are dropped.
type Recorder struct {
	log    *slog.Logger
	events chan models.AuditEvent
}

func NewRecorder(log *slog.Logger, bufferSize int) *Recorder {
	return &Recorder{
		log:    log,
		events: make(chan models.AuditEvent, max(bufferSize, 1)),
	}
}

func (r *Recorder) ObserveOutcome(_ context.Context, ev login.OutcomeEvent) {
	const op = "audit.Recorder.ObserveOutcome"

	event := models.AuditEvent{
		ID:         uuid.New(),
		SessionID:  ev.SessionID,
		Outcome:    ev.Outcome.Kind.String(),
		Username:   strings.TrimSpace(ev.Username),
		Attempts:   ev.Outcome.Record.Count,
		OccurredAt: ev.At,
	}

	select {
	case r.events <- event:
	default:
		r.log.Warn("audit buffer full, dropping event",
			slog.String("op", op),
			slog.String("outcome", event.Outcome),
			slog.Int("capacity", cap(r.events)),
		)
	}
}

// NewEvents takes up to limit buffered events without blocking.
func (r *Recorder) NewEvents(ctx context.Context, limit int) ([]models.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	events := make([]models.AuditEvent, 0, min(limit, len(r.events)))
	for len(events) < limit {
		select {
		case ev := <-r.events:
			events = append(events, ev)
		default:
			return events, nil
		}
	}

	return events, nil
}

// Requeue puts back an event the Sender could not publish.
func (r *Recorder) Requeue(ctx context.Context, event models.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case r.events <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// Pending reports how many events wait in the buffer.
func (r *Recorder) Pending() int {
	return len(r.events)
}
