package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/lib/logger/sl"
	"github.com/cenkalti/backoff/v4"
)

var ErrInvalidMetrics = errors.New("invalid dashboard metrics")

type Source interface {
	FetchMetrics(ctx context.Context) (models.DashboardMetrics, error)
}

type Config struct {
	CacheTTL        time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	Timeout         time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxRetries      int           `yaml:"max_retries" validate:"gte=0"`
	InitialInterval time.Duration `yaml:"initial_interval" validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{
		CacheTTL:        5 * time.Minute,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: time.Second,
	}
}

type cached struct {
	metrics   models.DashboardMetrics
	fetchedAt time.Time
}

// Provider serves dashboard metrics from a TTL cache backed by a Source.
type Provider struct {
	log    *slog.Logger
	source Source
	cfg    Config
	now    func() time.Time

	mu    sync.Mutex
	cache *cached
}

func New(log *slog.Logger, source Source, cfg Config) *Provider {
	return &Provider{
		log:    log,
		source: source,
		cfg:    cfg,
		now:    time.Now,
	}
}

// WithClock replaces the wall clock used for cache expiry.
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.now = now
	return p
}

// Metrics returns the cached metrics while they are younger than CacheTTL,
// otherwise fetches, validates and caches a fresh copy.
func (p *Provider) Metrics(ctx context.Context) (models.DashboardMetrics, error) {
	const op = "dashboard.Metrics"
	log := p.log.With(slog.String("op", op))

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cache != nil && p.now().Sub(p.cache.fetchedAt) < p.cfg.CacheTTL {
		log.Debug("serving cached metrics")
		return p.cache.metrics, nil
	}

	metrics, err := p.fetch(ctx, log)
	if err != nil {
		return models.DashboardMetrics{}, fmt.Errorf("%s: %w", op, err)
	}

	p.cache = &cached{metrics: metrics, fetchedAt: p.now()}

	return metrics, nil
}

func (p *Provider) ClearCache() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cache = nil
}

func (p *Provider) fetch(ctx context.Context, log *slog.Logger) (models.DashboardMetrics, error) {
	var metrics models.DashboardMetrics

	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()

		m, err := p.source.FetchMetrics(attemptCtx)
		if err != nil {
			return err
		}

		if err := validate(m); err != nil {
			return backoff.Permanent(err)
		}

		metrics = m
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.Warn("metrics fetch failed, retrying", slog.Duration("wait", wait), sl.Err(err))
	}

	if err := backoff.RetryNotify(attempt, p.policy(ctx), notify); err != nil {
		return models.DashboardMetrics{}, err
	}

	return metrics, nil
}

// policy doubles the wait after each failed attempt: 1s, 2s, 4s with the defaults.
func (p *Provider) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.InitialInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = p.cfg.InitialInterval << max(p.cfg.MaxRetries, 1)
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(p.cfg.MaxRetries, 0))), ctx)
}

func validate(m models.DashboardMetrics) error {
	switch {
	case m.TotalPlayers < 0:
		return fmt.Errorf("%w: total players %d", ErrInvalidMetrics, m.TotalPlayers)
	case m.ActiveTeams < 0:
		return fmt.Errorf("%w: active teams %d", ErrInvalidMetrics, m.ActiveTeams)
	case m.ActiveBranches < 0:
		return fmt.Errorf("%w: active branches %d", ErrInvalidMetrics, m.ActiveBranches)
	case m.SportsOffered < 0:
		return fmt.Errorf("%w: sports offered %d", ErrInvalidMetrics, m.SportsOffered)
	}

	return nil
}
