package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BariVakhidov/academyhub/internal/services/login"
	"github.com/spf13/cobra"
)

func (c *CLI) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage console accounts",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.setup(cmd.Context()); err != nil {
				return err
			}
			return c.requireLogin()
		},
	}

	var username, password string
	add := &cobra.Command{
		Use:   "add",
		Short: "Register an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules := c.app.Governor.Rules()

			var problems []string
			for _, res := range []login.ValidationResult{
				login.ValidateField(login.FieldUsername, username, rules),
				login.ValidateField(login.FieldPassword, password, rules),
			} {
				if !res.Valid {
					problems = append(problems, res.Message)
				}
			}
			if len(problems) > 0 {
				return errors.New(strings.Join(problems, ", "))
			}

			id, err := c.app.Verifier.RegisterUser(cmd.Context(), strings.TrimSpace(username), password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s), password strength: %s\n",
				strings.TrimSpace(username), id, login.PasswordStrength(password))

			return nil
		},
	}
	add.Flags().StringVarP(&username, "username", "u", "", "account username")
	add.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = add.MarkFlagRequired("username")
	_ = add.MarkFlagRequired("password")

	cmd.AddCommand(add)

	return cmd
}
