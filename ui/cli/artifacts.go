// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sentinel-vault/sentinel/internal/catalog"
	"github.com/sentinel-vault/sentinel/internal/i18n"
	"github.com/sentinel-vault/sentinel/internal/logging"
	"github.com/sentinel-vault/sentinel/internal/media"
	"github.com/sentinel-vault/sentinel/internal/vault"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s", i18n.T("cli.error_bad_id", arg))
	}
	return id, nil
}

func newListCmd(e *env) *cobra.Command {
	var refresh, cached bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List the artifacts you own or that are shared with you",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var list []vault.Descriptor
			switch {
			case cached:
				var at time.Time
				list, at, err = app.Catalog.Cached(ctx)
				if err != nil {
					return err
				}
				if !at.IsZero() {
					printf(out, "cli.ls.cached_at", at.Local().Format(time.DateTime))
				}
			case refresh:
				list, err = app.Catalog.Refresh(ctx)
			default:
				list, err = app.Catalog.List(ctx)
			}
			if err != nil {
				return fail(err)
			}
			if len(list) == 0 {
				printf(out, "cli.ls.empty")
				return nil
			}
			fmt.Fprintln(out, renderArtifacts(list))
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Always fetch the listing from the vault")
	cmd.Flags().BoolVar(&cached, "cached", false, "Show the cached listing without contacting the vault")
	cmd.MarkFlagsMutuallyExclusive("refresh", "cached")
	return cmd
}

func renderArtifacts(list []vault.Descriptor) string {
	rows := make([][]string, 0, len(list))
	for _, d := range list {
		uploaded := ""
		if !d.UploadTime.IsZero() {
			uploaded = d.UploadTime.Format(time.DateTime)
		}
		rows = append(rows, []string{
			strconv.FormatInt(d.ID, 10),
			d.FileName,
			media.Classify(d.FileType).String(),
			d.FileType,
			uploaded,
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(
			i18n.T("column.id"),
			i18n.T("column.name"),
			i18n.T("column.kind"),
			i18n.T("column.type"),
			i18n.T("column.uploaded"),
		).
		Rows(rows...).
		String()
}

func newViewCmd(e *env) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "view <id>",
		Short: "Decrypt an artifact and present it without writing it to disk",
		Long: `Fetches the decrypted artifact and hands it to the viewer configured for
its media kind: an external command reading stdin, or a one-time loopback URL
opened in your browser. The viewer stays open until it exits or you press
Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			h, err := app.Actions.ViewArtifact(ctx, id, name)
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
	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the cached file name)")
	return cmd
}

func newRemoveCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an artifact you own",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			label := args[0]
			if d, ok := app.Catalog.Lookup(ctx, id); ok {
				label = d.FileName
			}
			ok, _ := e.confirmer(cmd, yes, i18n.T("cli.rm.confirm", label)).Confirm(ctx, "")
			if !ok {
				printf(cmd.OutOrStdout(), "cli.aborted")
				return nil
			}
			res, err := app.Catalog.Delete(ctx, id)
			if err != nil {
				return fail(err)
			}
			printResult(cmd, res, "cli.rm.done")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newUploadCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document, video or audio file to the vault",
		Long:  "Accepted extensions: " + joinExtensions() + ".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := media.CheckUpload(path); err != nil {
				return fmt.Errorf("%s", i18n.T("error.upload_extension", joinExtensions()))
			}
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			res, err := app.Catalog.Upload(cmd.Context(), filepath.Base(path), f)
			if err != nil {
				return fail(err)
			}
			printResult(cmd, res, "cli.upload.done")
			return nil
		},
	}
}

func joinExtensions() string {
	return strings.Join(media.UploadExtensions, " ")
}

func printResult(cmd *cobra.Command, res catalog.Result, fallbackID string) {
	printMessage(cmd, res.Message, fallbackID)
	if res.RefreshErr != nil {
		logging.Warnf("%s", i18n.T("cli.refresh_failed", res.RefreshErr))
	}
}

func newExportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export the cached artifact listing as zstd-compressed JSON",
		Long:  "Writes metadata only. Use '-' to write to stdout.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "sentinel-export.json.zst"
			if len(args) > 0 {
				target = args[0]
			}
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			var w io.Writer
			if target == "-" {
				w = cmd.OutOrStdout()
			} else {
				f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			n, err := app.Catalog.Export(cmd.Context(), w)
			if err != nil {
				return err
			}
			if target != "-" {
				printf(cmd.OutOrStdout(), "cli.export.done", n, target)
			}
			return nil
		},
	}
}

func newTUICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().RunE(cmd, args)
		},
	}
}
