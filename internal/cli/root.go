package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/BariVakhidov/academyhub/internal/app"
	"github.com/BariVakhidov/academyhub/internal/config"
	"github.com/BariVakhidov/academyhub/internal/lib/logger/sl"
	"github.com/BariVakhidov/academyhub/internal/services/login"
	"github.com/spf13/cobra"
)

var ErrLoginRequired = errors.New("login required")

// CLI holds the state shared by every command: the loaded application and,
// inside the console, the login session and current location.
type CLI struct {
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	cfgPath string
	appOpts []app.Option

	cfg *config.Config
	log *slog.Logger
	app *app.App

	interactive bool
	session     *login.Session
	location    string
	username    string
	token       string
}

type Option func(*CLI)

// WithConfig skips config file loading.
func WithConfig(cfg *config.Config) Option {
	return func(c *CLI) {
		c.cfg = cfg
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *CLI) {
		c.log = log
	}
}

func WithAppOptions(opts ...app.Option) Option {
	return func(c *CLI) {
		c.appOpts = append(c.appOpts, opts...)
	}
}

func New(in io.Reader, out, errOut io.Writer, opts ...Option) *CLI {
	c := &CLI{in: in, out: out, errOut: errOut}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Execute runs one command line and stops the application afterwards.
func Execute(ctx context.Context) error {
	c := New(os.Stdin, os.Stdout, os.Stderr)

	return c.Run(ctx, os.Args[1:])
}

func (c *CLI) Run(ctx context.Context, args []string) error {
	root := c.Root()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if stopErr := c.teardown(); stopErr != nil {
		err = errors.Join(err, stopErr)
	}

	return err
}

func (c *CLI) Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "academyhub",
		Short:         "NexAcademyHub administration console",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context())
		},
	}

	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)
	root.PersistentFlags().StringVar(&c.cfgPath, "config", c.cfgPath, "path to config file (defaults to $CONFIG_PATH)")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.statusCmd(),
		c.consoleCmd(),
		c.ageGroupsCmd(),
		c.branchesCmd(),
		c.dashboardCmd(),
		c.usersCmd(),
	)

	return root
}

func (c *CLI) setup(ctx context.Context) error {
	const op = "cli.setup"

	if c.app != nil {
		return nil
	}

	if c.cfg == nil {
		cfg, err := config.Load(c.cfgPath)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		c.cfg = cfg
	}

	if c.log == nil {
		c.log = setupLogger(c.cfg.Env, c.errOut)
	}
	c.log.Debug("starting application", slog.String("env", c.cfg.Env))

	a, err := app.New(ctx, c.log, c.cfg, c.appOpts...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	a.Start(ctx)
	c.app = a

	return nil
}

func (c *CLI) teardown() error {
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}

	if c.app == nil {
		return nil
	}

	err := c.app.Stop()
	if err != nil {
		c.log.Error("failed to stop application", sl.Err(err))
	}
	c.app = nil

	return err
}

// requireLogin guards console commands behind an unexpired login token.
// An expired token ends the console login.
func (c *CLI) requireLogin() error {
	if !c.interactive {
		return nil
	}

	if c.token == "" {
		return ErrLoginRequired
	}

	if _, err := c.app.ValidateToken(c.token); err != nil {
		c.log.Info("console login expired", sl.Err(err))
		c.logout()
		return fmt.Errorf("%w: session expired", ErrLoginRequired)
	}

	return nil
}

func (c *CLI) logout() {
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
	c.location = ""
	c.token = ""
}

func setupLogger(env string, w io.Writer) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case config.EnvLocal:
		logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvDev:
		logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return logger
}
