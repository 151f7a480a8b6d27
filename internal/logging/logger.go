// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package logging wraps the charmbracelet logger used across Sentinel.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger. Callers should use the helper functions
// below rather than reaching for L directly.
var L = clog.NewWithOptions(os.Stderr, clog.Options{Prefix: "sentinel"})

// SetLevel sets the minimum level by name (debug, info, warn, error).
// Unknown names fall back to info.
func SetLevel(name string) {
	lvl, err := clog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		lvl = clog.InfoLevel
	}
	L.SetLevel(lvl)
}

// SetDebug enables or disables debug output.
func SetDebug(enabled bool) {
	if enabled {
		L.SetLevel(clog.DebugLevel)
		return
	}
	L.SetLevel(clog.InfoLevel)
}

// SetOutput redirects log output, e.g. away from the terminal while the TUI
// owns it.
func SetOutput(w io.Writer) {
	L.SetOutput(w)
}

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...interface{}) {
	L.Debug(fmt.Sprintf(format, v...))
}

// Infof logs an info-level formatted message.
func Infof(format string, v ...interface{}) {
	L.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...interface{}) {
	L.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...interface{}) {
	L.Error(fmt.Sprintf(format, v...))
}
