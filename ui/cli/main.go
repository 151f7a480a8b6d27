// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the root command, configuration loading and the lazily
// wired application shared by every subcommand.

package cli

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/sentinel-vault/sentinel/buildvars"
	"github.com/sentinel-vault/sentinel/internal/config"
	"github.com/sentinel-vault/sentinel/internal/core"
	"github.com/sentinel-vault/sentinel/internal/db"
	"github.com/sentinel-vault/sentinel/internal/i18n"
	"github.com/sentinel-vault/sentinel/internal/logging"
	"github.com/sentinel-vault/sentinel/internal/tui"
)

var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

// modulePath is used to find our version when built as a dependency.
const modulePath = "github.com/sentinel-vault/sentinel"

// env carries the state one command invocation needs. Tests build it with
// injected app options.
type env struct {
	cfgFile string
	verbose bool

	cfg     config.Config
	appOpts core.Options
	app     *core.App
	reader  *bufio.Reader

	// runTUI replaces tui.Run in tests.
	runTUI func(*core.App) error
}

// Execute runs the CLI entrypoint. main calls it and handles process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates a fresh root command with production wiring.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&env{})
}

func newRootCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentinel",
		Short: "Sentinel is a terminal client for the Secure Vault service.",
		Long: `Sentinel lists, views and shares the encrypted artifacts held by a
Secure Vault. Decrypted content is never written to disk: it is piped into a
configured player or served once on a loopback address for your browser.

Running without a subcommand will launch the interactive TUI.`,
		SilenceUsage:      true,
		PersistentPreRunE: e.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return e.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.open(cmd)
			if err != nil {
				return err
			}
			run := e.runTUI
			if run == nil {
				run = tui.Run
			}
			return run(app)
		},
	}

	v, c, d := resolveBuildVersion(nil)
	cmd.Version = compositeVersion(v, c, d)

	cmd.PersistentFlags().StringVar(&e.cfgFile, "config", "", "config file")
	cmd.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "Enable verbose output (debug logs, including cache SQL)")
	cmd.PersistentFlags().String("vault-url", config.DefaultVaultURL, "Base URL of the vault service")
	cmd.PersistentFlags().String("vault-timeout", "30s", "Timeout of a single vault request")
	cmd.PersistentFlags().String("cache-type", "sqlite", "Cache database type (sqlite, postgres, mysql)")
	cmd.PersistentFlags().String("cache-dsn", "", "Cache database connection string (DSN)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("language", "en", `Interface language ("en", "de")`)

	cmd.AddCommand(
		newLoginCmd(e),
		newLogoutCmd(e),
		newRegisterCmd(e),
		newForgotPasswordCmd(e),
		newResetPasswordCmd(e),
		newWhoamiCmd(e),
		newListCmd(e),
		newViewCmd(e),
		newRemoveCmd(e),
		newUploadCmd(e),
		newExportCmd(e),
		newTokenCmd(e),
		newShareCmd(e),
		newConfigCmd(e),
		newTUICmd(e),
		newVersionCmd(),
	)
	return cmd
}

// setup loads configuration and initializes logging and translations. The
// app itself is wired on first use so that offline commands never touch the
// cache or the session file.
func (e *env) setup(cmd *cobra.Command, args []string) error {
	explicit, err := e.configPath()
	if err != nil {
		return err
	}

	defaults := config.Defaults()
	e.cfg, err = config.LoadConfig[config.Config](cmd, defaults, explicit)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// Persist a default file on first run so users have something to edit.
	if _, found := config.FindConfigFile(); explicit == nil && !found {
		if path, werr := config.WriteConfigFile(&e.cfg, false); werr != nil {
			logging.Warnf("could not write default config file: %v", werr)
		} else {
			logging.Debugf("wrote default config to %s", path)
		}
	}

	if e.cfg.Cache.Dsn == "" {
		e.cfg.Cache.Dsn, _ = defaults["cache.dsn"].(string)
	}
	if e.cfg.Session.File == "" {
		e.cfg.Session.File, _ = defaults["session.file"].(string)
	}
	if e.cfg.Language == "" {
		e.cfg.Language = "en"
	}

	logging.SetLevel(e.cfg.Log.Level)
	if e.verbose {
		logging.SetDebug(true)
		db.SetDebug(true)
	}
	i18n.Init(e.cfg.Language)
	return nil
}

func (e *env) configPath() (*string, error) {
	if e.cfgFile == "" {
		return nil, nil
	}
	if _, err := os.Stat(e.cfgFile); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	path := e.cfgFile
	return &path, nil
}

// open wires the application on first use.
func (e *env) open(cmd *cobra.Command) (*core.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	opts := e.appOpts
	if opts.Announce == nil {
		out := cmd.OutOrStdout()
		opts.Announce = func(u *url.URL) {
			fmt.Fprintln(out, i18n.T("cli.view.url", u.String()))
		}
	}
	if opts.PipeOutput == nil {
		opts.PipeOutput = cmd.OutOrStdout()
	}
	app, err := core.NewApp(e.cfg, opts)
	if err != nil {
		return nil, err
	}
	e.app = app
	return app, nil
}

func (e *env) close() error {
	if e.app == nil {
		return nil
	}
	err := e.app.Close()
	e.app = nil
	return err
}

// input returns a line reader over the command's stdin, shared across
// prompts of one invocation.
func (e *env) input(cmd *cobra.Command) *bufio.Reader {
	if e.reader == nil {
		e.reader = bufio.NewReader(cmd.InOrStdin())
	}
	return e.reader
}

// fail renders err for the user. The returned error keeps the original for
// errors.Is checks by callers.
func fail(err error) error {
	if err == nil {
		return nil
	}
	return &userError{msg: core.Describe(err), err: err}
}

type userError struct {
	msg string
	err error
}

func (u *userError) Error() string { return u.msg }
func (u *userError) Unwrap() error { return u.err }

func compositeVersion(v, c, d string) string {
	out := v
	if c != "" && c != "dev" {
		out = out + " (" + c + ")"
	}
	if d != "" {
		out = out + " built: " + d
	}
	return out
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		// version needs neither config nor translations.
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %s\n", v)
			fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If info is nil, it reads build info from the
// runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault("dev")
	resolvedCommit := gitCommit
	if buildvars.Commit != "" {
		resolvedCommit = buildvars.Commit
	}
	resolvedDate := buildDate

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}

	if info != nil {
		if resolvedVersion == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// Built as a dependency: Main does not carry our version.
		if resolvedVersion == "dev" || resolvedVersion == "(devel)" {
			for _, dep := range info.Deps {
				if dep.Path == modulePath && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && resolvedCommit != "dev" && resolvedCommit != "" {
		resolvedVersion = resolvedCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}

// printf writes a translated line to the command's stdout.
func printf(w io.Writer, id string, args ...any) {
	fmt.Fprintln(w, i18n.T(id, args...))
}
