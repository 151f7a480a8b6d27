// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sentinel-vault/sentinel/internal/session"
)

func newLoginCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "login [email]",
		Short: "Log in and store the session credential",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			email := ""
			if len(args) > 0 {
				email = args[0]
			} else if email, err = e.promptLine(cmd, "cli.prompt.email"); err != nil {
				return err
			}
			password, err := e.promptSecret(cmd, "cli.prompt.password")
			if err != nil {
				return err
			}
			defer password.Zero()

			if err := app.Client.Login(cmd.Context(), email, password); err != nil {
				return fail(err)
			}
			app.Catalog.Invalidate()
			printf(cmd.OutOrStdout(), "cli.login.success", email)
			return nil
		},
	}
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session credential and purge the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			if err := app.Logout(); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "cli.logout.done")
			return nil
		},
	}
}

func newRegisterCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "register <email>",
		Short: "Create a vault account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			password, err := e.promptNewSecret(cmd)
			if err != nil {
				return err
			}
			defer password.Zero()
			msg, err := app.Client.Register(cmd.Context(), args[0], password)
			if err != nil {
				return fail(err)
			}
			printMessage(cmd, msg, "cli.register.done")
			return nil
		},
	}
}

func newForgotPasswordCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Request a password reset mail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			msg, err := app.Client.ForgotPassword(cmd.Context(), args[0])
			if err != nil {
				return fail(err)
			}
			printMessage(cmd, msg, "cli.forgot.done")
			return nil
		},
	}
}

func newResetPasswordCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <reset-token>",
		Short: "Set a new password with a reset token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			password, err := e.promptNewSecret(cmd)
			if err != nil {
				return err
			}
			defer password.Zero()
			msg, err := app.Client.ResetPassword(cmd.Context(), args[0], password)
			if err != nil {
				return fail(err)
			}
			printMessage(cmd, msg, "cli.reset.done")
			return nil
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who the stored credential belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			cred, err := app.Holder.Require()
			if err != nil {
				return fail(err)
			}
			cred.Zero()

			out := cmd.OutOrStdout()
			claims, err := app.Holder.Claims()
			if errors.Is(err, session.ErrOpaqueCredential) {
				printf(out, "cli.whoami.opaque")
				return nil
			}
			if err != nil {
				return err
			}
			printf(out, "cli.whoami.subject", claims.Subject)
			if !claims.ExpiresAt.IsZero() {
				printf(out, "cli.whoami.expires", claims.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

// printMessage prints the server's message, or a translated fallback when
// the vault sent none.
func printMessage(cmd *cobra.Command, msg, fallbackID string) {
	if msg == "" {
		printf(cmd.OutOrStdout(), fallbackID)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
}
