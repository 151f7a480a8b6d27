// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Sentinel.
//
// Usage:
//
//	go run . [flags]
//	./sentinel [flags] [command]
//
// Without a command the interactive TUI starts. See --help for options.
package main

import (
	"os"

	"github.com/sentinel-vault/sentinel/ui/cli"
)

func main() {
	// Cobra has already printed the error.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
