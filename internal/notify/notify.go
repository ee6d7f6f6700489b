package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
)

const fallbackLifetime = 3 * time.Second

type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

type Toast struct {
	models.Notification
	ShownAt   time.Time
	ExpiresAt time.Time
}

// Toasts is an in-memory toast stack. Entries disappear once their lifetime
// has passed and an identical active toast is never stacked twice.
type Toasts struct {
	now func() time.Time

	mu    sync.Mutex
	items []Toast
}

type ToastsOption func(*Toasts)

func WithClock(now func() time.Time) ToastsOption {
	return func(t *Toasts) {
		t.now = now
	}
}

func NewToasts(opts ...ToastsOption) *Toasts {
	t := &Toasts{now: time.Now}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *Toasts) Notify(_ context.Context, n models.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.prune(now)

	if slices.ContainsFunc(t.items, func(active Toast) bool {
		return sameMessage(active.Notification, n)
	}) {
		return
	}

	lifetime := n.Lifetime
	if lifetime <= 0 {
		lifetime = fallbackLifetime
	}

	t.items = append(t.items, Toast{Notification: n, ShownAt: now, ExpiresAt: now.Add(lifetime)})
}

// Active returns the toasts still on screen, oldest first.
func (t *Toasts) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.prune(t.now())

	return slices.Clone(t.items)
}

func (t *Toasts) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.items = nil
}

func (t *Toasts) prune(now time.Time) {
	t.items = slices.DeleteFunc(t.items, func(active Toast) bool {
		return !now.Before(active.ExpiresAt)
	})
}

func sameMessage(a, b models.Notification) bool {
	return a.Severity == b.Severity && a.Summary == b.Summary && a.Detail == b.Detail
}

// LogNotifier writes every notification to the structured log.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(ctx context.Context, n models.Notification) {
	l.log.Log(ctx, level(n.Severity), n.Summary,
		slog.String("severity", string(n.Severity)),
		slog.String("detail", n.Detail),
	)
}

func level(s models.Severity) slog.Level {
	switch s {
	case models.SeverityError:
		return slog.LevelError
	case models.SeverityWarn:
		return slog.LevelWarn
	}

	return slog.LevelInfo
}

type fanout []Notifier

// Fanout delivers each notification to every notifier in order.
func Fanout(notifiers ...Notifier) Notifier {
	return fanout(slices.DeleteFunc(slices.Clone(notifiers), func(n Notifier) bool { return n == nil }))
}

func (f fanout) Notify(ctx context.Context, n models.Notification) {
	for _, notifier := range f {
		notifier.Notify(ctx, n)
	}
}
