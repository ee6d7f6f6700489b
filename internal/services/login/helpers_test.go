package login_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/brianvoe/gofakeit/v7"
)

var epoch = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: epoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type verifierFunc func(ctx context.Context, username, password string) (bool, error)

func (f verifierFunc) Verify(ctx context.Context, username, password string) (bool, error) {
	return f(ctx, username, password)
}

// countingVerifier accepts exactly one username/password pair.
type countingVerifier struct {
	username string
	password string
	calls    atomic.Int32
}

func (v *countingVerifier) Verify(_ context.Context, username, password string) (bool, error) {
	v.calls.Add(1)
	return username == v.username && password == v.password, nil
}

// gatedVerifier blocks every call until release is closed or ctx is done.
type gatedVerifier struct {
	started chan struct{}
	release chan struct{}
	result  bool
}

func newGatedVerifier(result bool) *gatedVerifier {
	return &gatedVerifier{started: make(chan struct{}, 8), release: make(chan struct{}), result: result}
}

func (v *gatedVerifier) Verify(ctx context.Context, _, _ string) (bool, error) {
	v.started <- struct{}{}
	select {
	case <-v.release:
		return v.result, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []models.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, note models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.notes = append(n.notes, note)
}

func (n *recordingNotifier) All() []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]models.Notification(nil), n.notes...)
}

type recordingNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (n *recordingNavigator) Navigate(_ context.Context, target string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.targets = append(n.targets, target)
	return nil
}

func (n *recordingNavigator) Targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.targets...)
}

func validCredentials() models.Credentials {
	return models.Credentials{
		Username: "user_" + gofakeit.LetterN(8),
		Password: gofakeit.Password(true, true, true, false, false, 10) + "Aa1!",
	}
}
