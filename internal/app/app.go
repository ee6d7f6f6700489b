package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	prometheusapp "github.com/BariVakhidov/academyhub/internal/app/prometheus"
	storageapp "github.com/BariVakhidov/academyhub/internal/app/storage"
	"github.com/BariVakhidov/academyhub/internal/config"
	"github.com/BariVakhidov/academyhub/internal/kafka"
	"github.com/BariVakhidov/academyhub/internal/lib/jwt"
	"github.com/BariVakhidov/academyhub/internal/notify"
	"github.com/BariVakhidov/academyhub/internal/services/audit"
	"github.com/BariVakhidov/academyhub/internal/services/catalog"
	"github.com/BariVakhidov/academyhub/internal/services/dashboard"
	"github.com/BariVakhidov/academyhub/internal/services/login"
	"github.com/BariVakhidov/academyhub/internal/services/verifier"
	"golang.org/x/sync/errgroup"
)

type App struct {
	log *slog.Logger
	cfg *config.Config

	Storage   *storageapp.App
	Metrics   *prometheusapp.App
	Verifier  *verifier.Service
	Governor  *login.Governor
	Catalog   *catalog.Catalog
	Dashboard *dashboard.Provider
	Toasts    *notify.Toasts

	recorder  *audit.Recorder
	sender    *audit.Sender
	producer  *kafka.Producer
	observers []login.Observer
	notifiers []notify.Notifier
	group     *errgroup.Group
}

type Option func(*options)

type options struct {
	governor []login.Option
	catalog  []catalog.Option
}

// WithGovernorOptions passes extra options to the login governor.
func WithGovernorOptions(opts ...login.Option) Option {
	return func(o *options) {
		o.governor = append(o.governor, opts...)
	}
}

func WithCatalogOptions(opts ...catalog.Option) Option {
	return func(o *options) {
		o.catalog = append(o.catalog, opts...)
	}
}

// New wires every component selected by cfg. Background workers start with Start.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config, opts ...Option) (*App, error) {
	const op = "app.New"

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	storage, err := storageapp.New(ctx, log, cfg.Storage, cfg.AttemptsTTL())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &App{
		log:     log,
		cfg:     cfg,
		Storage: storage,
		Toasts:  notify.NewToasts(),
	}

	a.Verifier = verifier.New(log, storage.Users, storage.Users)
	if err := storage.Seed(ctx, a.Verifier, cfg.Storage.Seed); err != nil {
		_ = storage.Stop()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	governorOpts := []login.Option{login.WithVerifyTimeout(cfg.Verify.Timeout)}
	if cfg.Metrics.Enabled {
		a.Metrics = prometheusapp.New(log, cfg.Metrics.Port)
		a.observers = append(a.observers, a.Metrics)
		governorOpts = append(governorOpts, login.WithVerifierErrors(a.Metrics.VerifierErrors))
	}
	a.Governor = login.New(log, a.Verifier, cfg.Security, cfg.Validation, append(governorOpts, o.governor...)...)

	a.observers = append(a.observers, storage.Persister(cfg.ClientID))

	if cfg.Audit.Enabled {
		a.recorder = audit.NewRecorder(log, cfg.Audit.BufferSize)
		a.producer = kafka.NewProducer(cfg.Audit.Brokers, cfg.Audit.Topic)
		a.sender = audit.NewSender(log, a.producer, a.recorder)
		a.observers = append(a.observers, a.recorder)
	}

	a.notifiers = append(a.notifiers, a.Toasts)
	if cfg.Env != config.EnvLocal {
		a.notifiers = append(a.notifiers, notify.NewLogNotifier(log))
	}

	a.Catalog, err = catalog.New(log, o.catalog...)
	if err != nil {
		_ = storage.Stop()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.Dashboard = dashboard.New(log, catalog.NewMetricsSource(a.Catalog, cfg.Dashboard.MonthlyGrowth), cfg.Dashboard.Config)

	return a, nil
}

func MustNew(ctx context.Context, log *slog.Logger, cfg *config.Config, opts ...Option) *App {
	a, err := New(ctx, log, cfg, opts...)
	if err != nil {
		panic(err)
	}

	return a
}

// NewSession opens a login form session for this console. The attempt record is
// loaded from the attempt store so a lockout outlives a single session.
func (a *App) NewSession(ctx context.Context, notifier login.Notifier, navigator login.Navigator) (*login.Session, error) {
	const op = "app.NewSession"

	record, err := a.Storage.LoadRecord(ctx, a.cfg.ClientID, a.Governor.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	notifiers := append([]notify.Notifier{notifier}, a.notifiers...)

	return login.NewSession(
		a.log,
		a.Governor,
		record,
		notify.Fanout(notifiers...),
		navigator,
		login.WithLanding(a.cfg.Landing),
		login.WithLifetimes(a.cfg.Toasts),
		login.WithObservers(a.observers...),
	), nil
}

// IssueToken signs a console token for username valid for the configured TTL.
func (a *App) IssueToken(username string) (string, error) {
	const op = "app.IssueToken"

	token, err := jwt.NewToken(username, a.cfg.Auth.Secret, a.Governor.Now(), a.cfg.Auth.TokenTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// ValidateToken returns the username a token was issued for, or an error once it has expired.
func (a *App) ValidateToken(token string) (string, error) {
	const op = "app.ValidateToken"

	username, err := jwt.ParseToken(token, a.cfg.Auth.Secret, a.Governor.Now())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return username, nil
}

// Start launches the metrics server and the audit sender when enabled.
func (a *App) Start(ctx context.Context) {
	group, ctx := errgroup.WithContext(ctx)
	a.group = group

	if a.Metrics != nil {
		group.Go(func() error {
			if err := a.Metrics.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	if a.sender != nil {
		a.sender.StartProducing(ctx, a.cfg.Audit.BatchLimit, a.cfg.Audit.Interval)
	}
}

func (a *App) Stop() error {
	const op = "app.Stop"
	a.log.With(slog.String("op", op)).Info("stopping application")

	var errs []error

	if a.Metrics != nil {
		if err := a.Metrics.Stop(); err != nil {
			errs = append(errs, err)
		}
	}

	if a.sender != nil {
		a.sender.StopSending()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if a.group != nil {
		if err := a.group.Wait(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := a.Storage.Stop(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
