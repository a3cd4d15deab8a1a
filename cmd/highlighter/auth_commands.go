package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RaufunNazin/Highlighter/internal/auth"
	"github.com/RaufunNazin/Highlighter/internal/gateway"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Authenticate against the remote service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}

			if err := ctx.flow.Login(cmd.Context(), args[0], args[1]); err != nil {
				return authError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", args[0])
			return nil
		},
	}
}

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var email string
	var role int

	cmd := &cobra.Command{
		Use:   "register <username> <password> <confirm-password>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}

			err := ctx.flow.Register(cmd.Context(), auth.RegisterInput{
				Username:        args[0],
				Email:           email,
				Password:        args[1],
				ConfirmPassword: args[2],
				Role:            role,
			})
			if err != nil {
				return authError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email address")
	cmd.Flags().IntVar(&role, "role", 0, "Account role (defaults to regular user)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}

			if err := ctx.flow.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}

			if ctx.store.Token() == "" {
				return errors.New("not logged in")
			}

			if remote {
				profile, err := ctx.gw.Me(cmd.Context())
				if err != nil {
					return authError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %d)\n", profile.Username, profile.Email, profile.ID)
				return nil
			}

			profile, err := ctx.store.User(cmd.Context())
			if err != nil {
				return err
			}
			if profile == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Logged in (profile not cached; try --remote)")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %d)\n", profile.Username, profile.Email, profile.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Fetch the profile from the remote service")
	return cmd
}

// authError rewrites a gateway rejection into the message the service meant
// the user to see.
func authError(err error) error {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		return errors.New(gwErr.Message())
	}
	return err
}
