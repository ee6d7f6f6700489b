package dashboard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/lib/logger/sl"
	"github.com/BariVakhidov/academyhub/internal/services/dashboard"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errUnavailable = errors.New("service unavailable")

// scriptedSource fails with the queued errors before returning metrics.
type scriptedSource struct {
	mu      sync.Mutex
	errs    []error
	metrics models.DashboardMetrics
	calls   int
}

func (s *scriptedSource) FetchMetrics(ctx context.Context) (models.DashboardMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return models.DashboardMetrics{}, err
	}

	return s.metrics, nil
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

type blockingSource struct{}

func (blockingSource) FetchMetrics(ctx context.Context) (models.DashboardMetrics, error) {
	<-ctx.Done()
	return models.DashboardMetrics{}, ctx.Err()
}

func fastConfig() dashboard.Config {
	return dashboard.Config{
		CacheTTL:        5 * time.Minute,
		Timeout:         time.Second,
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
	}
}

func randomMetrics() models.DashboardMetrics {
	return models.DashboardMetrics{
		TotalPlayers:   gofakeit.IntRange(100, 2000),
		ActiveTeams:    gofakeit.IntRange(1, 80),
		ActiveBranches: gofakeit.IntRange(1, 20),
		SportsOffered:  gofakeit.IntRange(1, 12),
		MonthlyGrowth:  gofakeit.Float64Range(0, 20),
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := dashboard.DefaultConfig()

	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.InitialInterval)
}

func TestMetrics_CachesWithinTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	src := &scriptedSource{metrics: randomMetrics()}
	p := dashboard.New(sl.Discard(), src, fastConfig()).WithClock(func() time.Time { return now })

	first, err := p.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, src.metrics, first)

	now = now.Add(4 * time.Minute)
	second, err := p.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.Calls())

	now = now.Add(time.Minute)
	_, err = p.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.Calls())
}

func TestMetrics_ClearCache(t *testing.T) {
	ctx := context.Background()
	src := &scriptedSource{metrics: randomMetrics()}
	p := dashboard.New(sl.Discard(), src, fastConfig())

	_, err := p.Metrics(ctx)
	require.NoError(t, err)

	p.ClearCache()

	_, err = p.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.Calls())
}

func TestMetrics_RetriesTransientErrors(t *testing.T) {
	src := &scriptedSource{
		errs:    []error{errUnavailable, errUnavailable},
		metrics: randomMetrics(),
	}
	p := dashboard.New(sl.Discard(), src, fastConfig())

	got, err := p.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, src.metrics, got)
	assert.Equal(t, 3, src.Calls())
}

func TestMetrics_GivesUpAfterMaxRetries(t *testing.T) {
	src := &scriptedSource{
		errs: []error{errUnavailable, errUnavailable, errUnavailable, errUnavailable, errUnavailable},
	}
	p := dashboard.New(sl.Discard(), src, fastConfig())

	_, err := p.Metrics(context.Background())
	require.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, 4, src.Calls())

	// A failed fetch is not cached.
	got, err := p.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, src.metrics, got)
}

func TestMetrics_InvalidPayloadIsNotRetried(t *testing.T) {
	bad := randomMetrics()
	bad.ActiveTeams = -1
	src := &scriptedSource{metrics: bad}
	p := dashboard.New(sl.Discard(), src, fastConfig())

	_, err := p.Metrics(context.Background())
	require.ErrorIs(t, err, dashboard.ErrInvalidMetrics)
	assert.Equal(t, 1, src.Calls())
}

func TestMetrics_TimeoutPerAttempt(t *testing.T) {
	cfg := fastConfig()
	cfg.Timeout = 10 * time.Millisecond
	cfg.MaxRetries = 1
	p := dashboard.New(sl.Discard(), blockingSource{}, cfg)

	_, err := p.Metrics(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMetrics_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := dashboard.New(sl.Discard(), blockingSource{}, fastConfig())

	_, err := p.Metrics(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
