// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/sentinel-vault/sentinel/internal/i18n"
	"github.com/sentinel-vault/sentinel/internal/logging"
	"github.com/sentinel-vault/sentinel/internal/token"
)

func newTokenCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Work with offline .sntl access tokens",
	}
	cmd.AddCommand(
		newTokenFetchCmd(e),
		newTokenOpenCmd(e),
		newTokenNameCmd(),
		newTokenParseCmd(),
		newTokenVerifyCmd(e),
	)
	return cmd
}

func newTokenFetchCmd(e *env) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "fetch <id>",
		Short: "Download the encrypted .sntl token of an artifact",
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
			got, err := app.Actions.FetchToken(cmd.Context(), id, dir)
			if err != nil {
				return fail(err)
			}
			out := cmd.OutOrStdout()
			printf(out, "cli.token.saved", got.Path, got.Size)
			printf(out, "cli.token.digest", got.Digest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to save the token in")
	return cmd
}

func newTokenOpenCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "open <file.sntl>",
		Short: "View the artifact a token file names",
		Long: `Decodes the artifact id from the token's file name and views it like
'sentinel view'. Renamed downloads such as "report.pdf_id_42 (1).sntl" are
accepted. A name without the _id_ stamp is rejected without contacting the
vault.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Decode before wiring anything so a bad name costs nothing.
			if _, err := token.Decode(args[0]); err != nil {
				return fail(err)
			}
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			h, err := app.Actions.OpenToken(ctx, args[0])
			if err != nil {
				return fail(err)
			}
			out := cmd.OutOrStdout()
			printf(out, "cli.view.opened", h.Name(), h.Kind().String(), app.Router.For(h.Kind()).Describe())
			if err := app.Actions.Present(ctx, h); err != nil {
				return fail(err)
			}
			printf(out, "cli.view.closed")
			return nil
		},
	}
}

func newTokenNameCmd() *cobra.Command {
	var copyName bool
	cmd := &cobra.Command{
		Use:   "name <original-name> <id>",
		Short: "Print the token file name for an artifact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			name, err := token.Encode(args[0], id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			if copyName {
				if err := clipboard.WriteAll(name); err != nil {
					logging.Warnf("%s", i18n.T("cli.clipboard_failed", err))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&copyName, "copy", "c", false, "Also copy the name to the clipboard")
	return cmd
}

func newTokenParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file.sntl>",
		Short: "Show the artifact id and original name a token file carries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := token.Decode(args[0])
			if err != nil {
				return fail(err)
			}
			out := cmd.OutOrStdout()
			printf(out, "cli.token.id", n.ArtifactID)
			printf(out, "cli.token.original", n.OriginalName)
			return nil
		},
	}
}

func newTokenVerifyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file.sntl>",
		Short: "Check a token file against the digest recorded when it was fetched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := token.Decode(args[0]); err != nil {
				return fail(err)
			}
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			v, err := app.Actions.VerifyToken(cmd.Context(), args[0])
			if err != nil {
				return fail(err)
			}
			printf(cmd.OutOrStdout(), "cli.token.verified", v.Name.ArtifactID, v.RecordedAt.Local().Format(time.DateTime))
			return nil
		},
	}
}
