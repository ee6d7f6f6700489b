package storageapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BariVakhidov/academyhub/internal/config"
	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/lib/logger/sl"
	"github.com/BariVakhidov/academyhub/internal/services/login"
	"github.com/BariVakhidov/academyhub/internal/services/verifier"
	"github.com/BariVakhidov/academyhub/internal/storage"
	"github.com/BariVakhidov/academyhub/internal/storage/memory"
	"github.com/BariVakhidov/academyhub/internal/storage/postgres"
	"github.com/BariVakhidov/academyhub/internal/storage/redis"
	"github.com/BariVakhidov/academyhub/internal/storage/sqlite"
)

type UserStore interface {
	verifier.UserSaver
	verifier.UserProvider
}

type AttemptStore interface {
	FailedLoginAttempts(ctx context.Context, key string) (models.AttemptRecord, error)
	SaveFailedLoginAttempts(ctx context.Context, key string, record models.AttemptRecord) error
	RemoveFailedLoginAttempts(ctx context.Context, key string) error
}

type App struct {
	log      *slog.Logger
	Users    UserStore
	Attempts AttemptStore
	closers  []func() error
}

// New opens the user and attempt stores selected by cfg.
func New(ctx context.Context, log *slog.Logger, cfg config.StorageConfig, attemptsTTL time.Duration) (*App, error) {
	const op = "storageapp.New"
	log = log.With(slog.String("op", op))

	a := &App{log: log}

	var mem *memory.Storage
	inMemory := func() *memory.Storage {
		if mem == nil {
			mem = memory.New()
		}
		return mem
	}

	switch cfg.Users {
	case "postgres":
		pg, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.Users = pg
		a.closers = append(a.closers, pg.Stop)
	case "sqlite":
		lite, err := sqlite.New(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.Users = lite
		a.closers = append(a.closers, lite.Stop)
	default:
		a.Users = inMemory()
	}

	switch cfg.Attempts {
	case "redis":
		rdb := redis.New(cfg.RedisAddr, attemptsTTL)
		a.closers = append(a.closers, rdb.Stop)
		if err := rdb.Ping(ctx); err != nil {
			_ = a.Stop()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.Attempts = rdb
	default:
		a.Attempts = inMemory()
	}

	log.Info("storage ready", slog.String("users", cfg.Users), slog.String("attempts", cfg.Attempts))

	return a, nil
}

func MustCreateApp(ctx context.Context, log *slog.Logger, cfg config.StorageConfig, attemptsTTL time.Duration) *App {
	a, err := New(ctx, log, cfg, attemptsTTL)
	if err != nil {
		panic(err)
	}

	return a
}

// Seed registers the configured accounts. Accounts that already exist are kept.
func (a *App) Seed(ctx context.Context, v *verifier.Service, users []config.SeedUser) error {
	const op = "storageapp.Seed"

	for _, u := range users {
		if _, err := v.RegisterUser(ctx, u.Username, u.Password); err != nil {
			if errors.Is(err, verifier.ErrUserExists) {
				continue
			}
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// LoadRecord returns the persisted attempt record for key or a fresh one stamped now.
func (a *App) LoadRecord(ctx context.Context, key string, now time.Time) (models.AttemptRecord, error) {
	const op = "storageapp.LoadRecord"

	record, err := a.Attempts.FailedLoginAttempts(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrAttemptsNotFound) {
			return models.AttemptRecord{Timestamp: now}, nil
		}
		return models.AttemptRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	return record, nil
}

// Persister returns an observer that writes every applied attempt record back under key.
func (a *App) Persister(key string) login.Observer {
	return &attemptPersister{log: a.log, store: a.Attempts, key: key}
}

func (a *App) Stop() error {
	const op = "storageapp.Stop"
	a.log.With(slog.String("op", op)).Info("stopping storage app")

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}

type attemptPersister struct {
	log   *slog.Logger
	store AttemptStore
	key   string
}

func (p *attemptPersister) ObserveOutcome(ctx context.Context, ev login.OutcomeEvent) {
	const op = "storageapp.attemptPersister.ObserveOutcome"
	log := p.log.With(slog.String("op", op))

	var err error
	switch ev.Outcome.Kind {
	case login.OutcomeAuthFailed:
		err = p.store.SaveFailedLoginAttempts(ctx, p.key, ev.Outcome.Record)
	case login.OutcomeAuthSucceeded:
		err = p.store.RemoveFailedLoginAttempts(ctx, p.key)
	default:
		return
	}

	if err != nil {
		log.Error("failed to persist attempt record", sl.Err(err))
	}
}
