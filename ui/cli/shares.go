// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sentinel-vault/sentinel/internal/i18n"
	"github.com/sentinel-vault/sentinel/internal/logging"
	"github.com/sentinel-vault/sentinel/internal/share"
)

func newShareCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Manage who an artifact is shared with",
	}
	cmd.AddCommand(newShareListCmd(e), newShareGrantCmd(e), newShareRevokeCmd(e))
	return cmd
}

func newShareListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <id>",
		Short: "List the identities an artifact is shared with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			grantees, err := app.Shares.List(cmd.Context(), id)
			if err != nil {
				return fail(err)
			}
			printGrantees(cmd, grantees)
			return nil
		},
	}
}

func newShareGrantCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "grant <id> <email>",
		Short: "Share an artifact with another registered user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			res, err := app.Shares.Grant(cmd.Context(), id, args[1])
			if err != nil {
				return fail(err)
			}
			printOutcome(cmd, res, "cli.share.granted")
			return nil
		},
	}
}

func newShareRevokeCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "revoke <id> <email>",
		Short: "Take back access to an artifact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			c := e.confirmer(cmd, yes, i18n.T("cli.share.revoke_confirm", args[1]))
			res, err := app.Shares.Revoke(cmd.Context(), id, args[1], c)
			if errors.Is(err, share.ErrNotConfirmed) {
				printf(cmd.OutOrStdout(), "cli.aborted")
				return nil
			}
			if err != nil {
				return fail(err)
			}
			printOutcome(cmd, res, "cli.share.revoked")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func printGrantees(cmd *cobra.Command, grantees []string) {
	out := cmd.OutOrStdout()
	if len(grantees) == 0 {
		printf(out, "cli.share.none")
		return
	}
	for _, g := range grantees {
		fmt.Fprintln(out, "  "+g)
	}
}

func printOutcome(cmd *cobra.Command, res share.Outcome, fallbackID string) {
	printMessage(cmd, res.Message, fallbackID)
	if res.RefreshErr != nil {
		logging.Warnf("%s", i18n.T("cli.refresh_failed", res.RefreshErr))
		return
	}
	printGrantees(cmd, res.Grantees)
}
