package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
)

func (c *CLI) consoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Start an interactive console session",
		Long: `Start an interactive console session.

Every other command can be typed at the prompt. Age group, branch, dashboard and
user commands require a successful login first. Type "exit" to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.interactive {
				return errors.New("console is already running")
			}

			c.interactive = true
			defer func() {
				c.interactive = false
				c.location = ""
				c.token = ""
			}()

			return c.repl(cmd)
		},
	}
}

func (c *CLI) repl(cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	out := cmd.OutOrStdout()

	lines := make(chan string)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(out, `NexAcademyHub console. Type "help" for commands, "exit" to leave.`)

	for {
		fmt.Fprintf(out, "academyhub%s> ", c.location)

		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}

			args, err := parseLine(line)
			if err != nil {
				fmt.Fprintf(c.errOut, "error: %v\n", err)
				continue
			}
			if len(args) == 0 {
				continue
			}

			switch args[0] {
			case "exit", "quit":
				return nil
			case "console":
				fmt.Fprintln(c.errOut, "error: console is already running")
				continue
			}

			root := c.Root()
			root.SetArgs(args)
			if err := root.ExecuteContext(ctx); err != nil {
				fmt.Fprintf(c.errOut, "error: %v\n", err)
			}
		}
	}
}

// parseLine splits a prompt line into arguments the way a POSIX shell would.
func parseLine(line string) ([]string, error) {
	args, err := shellquote.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parse line: %w", err)
	}

	return args, nil
}
