package prometheusapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/BariVakhidov/academyhub/internal/lib/logger/sl"
	"github.com/BariVakhidov/academyhub/internal/services/login"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	log    *slog.Logger
	port   int
	reg    *prometheus.Registry
	server *http.Server

	LoginOutcomes  *prometheus.CounterVec
	Lockouts       prometheus.Counter
	VerifierErrors prometheus.Counter
}

func New(log *slog.Logger, port int) *App {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	outcomes := promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "login_outcomes_total",
		Help: "Total number of login submissions by outcome.",
	}, []string{"outcome"})
	lockouts := promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "login_lockouts_total",
		Help: "Total number of failed logins that locked the account.",
	})
	verifierErrors := promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "login_verifier_errors_total",
		Help: "Total number of credential checks that failed with an error.",
	})

	for _, kind := range []login.OutcomeKind{
		login.OutcomeLocked,
		login.OutcomeValidationFailed,
		login.OutcomeAuthFailed,
		login.OutcomeAuthSucceeded,
	} {
		outcomes.WithLabelValues(kind.String())
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		reg,
		promhttp.HandlerOpts{
			// Opt into OpenMetrics e.g. to support exemplars.
			EnableOpenMetrics: true,
		},
	))

	return &App{
		log:  log,
		port: port,
		reg:  reg,
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		LoginOutcomes:  outcomes,
		Lockouts:       lockouts,
		VerifierErrors: verifierErrors,
	}
}

func (a *App) Registry() *prometheus.Registry {
	return a.reg
}

// ObserveOutcome counts the outcome, and a lockout when a failure used up the last attempt.
func (a *App) ObserveOutcome(_ context.Context, ev login.OutcomeEvent) {
	a.LoginOutcomes.WithLabelValues(ev.Outcome.Kind.String()).Inc()

	if ev.Outcome.Kind == login.OutcomeAuthFailed && ev.Outcome.RemainingAttempts == 0 {
		a.Lockouts.Inc()
	}
}

func (a *App) MustRun() {
	err := a.Run()
	if errors.Is(err, http.ErrServerClosed) {
		a.log.Info("Prometheus server closed", sl.Err(err))
	} else if err != nil {
		a.log.Error("Failed to start Prometheus", sl.Err(err))
		panic(err)
	}
}

func (a *App) Run() error {
	const op = "prometheusapp.Run"
	log := a.log.With(slog.String("op", op), slog.Int("port", a.port))

	l, err := net.Listen("tcp", fmt.Sprintf(":%d", a.port))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("exposing Prometheus metrics", slog.String("addr", l.Addr().String()))

	return a.Serve(l)
}

// Serve exposes /metrics on an existing listener until Stop is called.
func (a *App) Serve(l net.Listener) error {
	return a.server.Serve(l)
}

func (a *App) Stop() error {
	const op = "prometheusapp.Stop"
	a.log.With(slog.String("op", op)).Info("stopping Prometheus server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
