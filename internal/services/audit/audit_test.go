package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/lib/logger/sl"
	"github.com/BariVakhidov/academyhub/internal/services/audit"
	"github.com/BariVakhidov/academyhub/internal/services/login"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type message struct {
	key   string
	event models.AuditEvent
}

type memoryPublisher struct {
	mu       sync.Mutex
	messages []message
	calls    int
	// failures is how many upcoming calls fail; a negative value fails every call.
	failures int
}

func (p *memoryPublisher) Publish(_ context.Context, key, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.failures != 0 {
		if p.failures > 0 {
			p.failures--
		}
		return errors.New("broker down")
	}

	var ev models.AuditEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	p.messages = append(p.messages, message{key: string(key), event: ev})

	return nil
}

func (p *memoryPublisher) SetFailures(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failures = n
}

func (p *memoryPublisher) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls
}

func (p *memoryPublisher) Messages() []message {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]message(nil), p.messages...)
}

var at = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func outcomeEvent(kind login.OutcomeKind, count int) login.OutcomeEvent {
	return login.OutcomeEvent{
		SessionID: uuid.New(),
		Username:  " " + gofakeit.Username() + " ",
		Outcome: login.Outcome{
			Kind:   kind,
			Record: models.AttemptRecord{Timestamp: at, Count: count},
		},
		At: at,
	}
}

func TestRecorder_BuildsEvent(t *testing.T) {
	r := audit.NewRecorder(sl.Discard(), 4)
	ev := outcomeEvent(login.OutcomeAuthFailed, 2)

	r.ObserveOutcome(context.Background(), ev)

	events, err := r.NewEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, ev.SessionID, got.SessionID)
	assert.Equal(t, "auth_failed", got.Outcome)
	assert.Equal(t, ev.Username[1:len(ev.Username)-1], got.Username)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, at, got.OccurredAt)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	r := audit.NewRecorder(sl.Discard(), 2)

	for range 5 {
		r.ObserveOutcome(context.Background(), outcomeEvent(login.OutcomeLocked, 5))
	}

	assert.Equal(t, 2, r.Pending())
}

func TestRecorder_NewEventsLimit(t *testing.T) {
	r := audit.NewRecorder(sl.Discard(), 10)
	for range 5 {
		r.ObserveOutcome(context.Background(), outcomeEvent(login.OutcomeAuthSucceeded, 0))
	}

	first, err := r.NewEvents(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, first, 3)

	rest, err := r.NewEvents(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.NewEvents(ctx, 3)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSender_PublishesOnInterval(t *testing.T) {
	ctx := context.Background()
	r := audit.NewRecorder(sl.Discard(), 16)
	pub := &memoryPublisher{}
	s := audit.NewSender(sl.Discard(), pub, r)

	s.StartProducing(ctx, 10, 5*time.Millisecond)
	defer s.StopSending()

	r.ObserveOutcome(ctx, outcomeEvent(login.OutcomeAuthFailed, 1))
	r.ObserveOutcome(ctx, outcomeEvent(login.OutcomeAuthSucceeded, 0))

	require.Eventually(t, func() bool {
		return len(pub.Messages()) == 2
	}, time.Second, 5*time.Millisecond)

	keys := []string{pub.Messages()[0].key, pub.Messages()[1].key}
	assert.ElementsMatch(t, []string{"auth_failed", "auth_succeeded"}, keys)
}

func TestSender_StopFlushesBuffer(t *testing.T) {
	ctx := context.Background()
	r := audit.NewRecorder(sl.Discard(), 16)
	pub := &memoryPublisher{}
	s := audit.NewSender(sl.Discard(), pub, r)

	s.StartProducing(ctx, 2, time.Hour)
	for range 5 {
		r.ObserveOutcome(ctx, outcomeEvent(login.OutcomeValidationFailed, 0))
	}

	s.StopSending()
	s.StopSending()

	assert.Len(t, pub.Messages(), 5)
	assert.Zero(t, r.Pending())
}

func TestSender_RetriesFailedPublish(t *testing.T) {
	ctx := context.Background()
	r := audit.NewRecorder(sl.Discard(), 16)
	pub := &memoryPublisher{failures: 2}
	s := audit.NewSender(sl.Discard(), pub, r, audit.WithPublishRetry(3, time.Millisecond))

	s.StartProducing(ctx, 10, time.Hour)
	r.ObserveOutcome(ctx, outcomeEvent(login.OutcomeAuthFailed, 1))
	s.StopSending()

	require.Len(t, pub.Messages(), 1)
	assert.Equal(t, 3, pub.Calls())
	assert.Zero(t, r.Pending())
}

func TestSender_KeepsEventUntilBrokerRecovers(t *testing.T) {
	ctx := context.Background()
	r := audit.NewRecorder(sl.Discard(), 16)
	pub := &memoryPublisher{failures: -1}
	s := audit.NewSender(sl.Discard(), pub, r, audit.WithPublishRetry(0, time.Millisecond))

	s.StartProducing(ctx, 10, 5*time.Millisecond)
	defer s.StopSending()

	r.ObserveOutcome(ctx, outcomeEvent(login.OutcomeAuthFailed, 1))

	require.Eventually(t, func() bool {
		return pub.Calls() >= 3
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, pub.Messages())

	pub.SetFailures(0)

	require.Eventually(t, func() bool {
		return len(pub.Messages()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "auth_failed", pub.Messages()[0].key)
	assert.Zero(t, r.Pending())
}

func TestSender_StopKeepsUndeliveredEvents(t *testing.T) {
	ctx := context.Background()
	r := audit.NewRecorder(sl.Discard(), 16)
	pub := &memoryPublisher{failures: -1}
	s := audit.NewSender(sl.Discard(), pub, r, audit.WithPublishRetry(0, time.Millisecond))

	s.StartProducing(ctx, 1, time.Hour)
	r.ObserveOutcome(ctx, outcomeEvent(login.OutcomeLocked, 5))
	r.ObserveOutcome(ctx, outcomeEvent(login.OutcomeLocked, 5))
	s.StopSending()

	assert.Empty(t, pub.Messages())
	assert.Equal(t, 2, r.Pending())
}

func TestRecorder_Requeue(t *testing.T) {
	ctx := context.Background()
	r := audit.NewRecorder(sl.Discard(), 1)

	require.NoError(t, r.Requeue(ctx, models.AuditEvent{ID: uuid.New()}))
	require.ErrorIs(t, r.Requeue(ctx, models.AuditEvent{ID: uuid.New()}), audit.ErrBufferFull)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, r.Requeue(cancelled, models.AuditEvent{}), context.Canceled)
}

func TestSender_ContextDoneStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := audit.NewRecorder(sl.Discard(), 1)
	s := audit.NewSender(sl.Discard(), &memoryPublisher{}, r)

	s.StartProducing(ctx, 1, time.Hour)
	cancel()
	s.StopSending()

	cancelled, cancel2 := context.WithCancel(context.Background())
	cancel2()
	s2 := audit.NewSender(sl.Discard(), &memoryPublisher{}, r)
	s2.StartProducing(cancelled, 1, time.Millisecond)
	s2.StopSending()
}
