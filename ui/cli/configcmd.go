// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sentinel-vault/sentinel/internal/config"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the configuration file",
	}

	var system bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteConfigFile(&e.cfg, system)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "cli.config.written", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&system, "system", false, "Write the system-wide file instead of the user file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if e.cfgFile != "" {
				fmt.Fprintln(out, e.cfgFile)
				return
			}
			if p, ok := config.FindConfigFile(); ok {
				fmt.Fprintln(out, p)
				return
			}
			printf(out, "cli.config.none")
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}
