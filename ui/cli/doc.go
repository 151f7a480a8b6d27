// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for Sentinel using Cobra.
// It loads configuration, wires a core.App and provides commands that delegate
// to it. CLI code stays thin: vault calls, caching and viewing live in the
// internal packages.
package cli
