package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/services/login"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func (c *CLI) loginCmd() *cobra.Command {
	var (
		username      string
		password      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Submit credentials to the login form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passwordStdin {
				p, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}

			s, err := c.loginSession(cmd.Context())
			if err != nil {
				return err
			}

			c.username = strings.TrimSpace(username)
			outcome, err := s.Submit(cmd.Context(), models.Credentials{Username: username, Password: password})
			if err != nil {
				return err
			}

			if c.interactive {
				return nil
			}

			return outcome.Err()
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")

	return cmd
}

func (c *CLI) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the console session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.logout()
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")

			return nil
		},
	}
}

func (c *CLI) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the login lockout state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.loginSession(cmd.Context())
			if err != nil {
				return err
			}

			record := s.Record()
			security := c.app.Governor.Security()
			locked, remaining := s.Locked()

			t := table.NewWriter()
			t.SetStyle(table.StyleRounded)
			t.AppendRows([]table.Row{
				{"Session", s.State().String()},
				{"Location", orDash(c.location)},
				{"Failed attempts", record.Count},
				{"Remaining attempts", login.RemainingAttempts(record, security)},
				{"Locked", locked},
			})
			if locked {
				t.AppendRow(table.Row{"Unlocks in", remaining.Round(time.Second).String()})
			}
			for _, toast := range c.app.Toasts.Active() {
				t.AppendRow(table.Row{"Toast", fmt.Sprintf("%s: %s", toast.Summary, toast.Detail)})
			}

			fmt.Fprintln(cmd.OutOrStdout(), t.Render())

			return nil
		},
	}
}

// loginSession returns the console session, opening a new one when none is
// usable. Outside the console every invocation gets a fresh session.
func (c *CLI) loginSession(ctx context.Context) (*login.Session, error) {
	if c.session != nil {
		switch c.session.State() {
		case login.StateIdle, login.StateSubmitting:
			return c.session, nil
		}
		c.session.Close()
	}

	s, err := c.app.NewSession(ctx, &printNotifier{w: c.out}, c)
	if err != nil {
		return nil, err
	}
	c.session = s

	return s, nil
}

// Navigate records the landing target after a successful login and issues
// the token that console commands are checked against.
func (c *CLI) Navigate(_ context.Context, target string) error {
	token, err := c.app.IssueToken(c.username)
	if err != nil {
		return err
	}
	c.token = token
	c.location = target

	_, err = fmt.Fprintf(c.out, "navigated to %s\n", target)
	return err
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
