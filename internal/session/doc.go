// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package session owns the vault bearer credential. A Holder is created once
// per process and passed to every component that talks to the vault; it is
// the only authority on whether a session exists.
package session
