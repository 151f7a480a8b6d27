// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"strings"
)

var (
	// ErrDuplicate is returned when attempting to insert a record that already exists.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned when a cached row does not exist.
	ErrNotFound = errors.New("not cached")
)

// MapDBError maps common constraint violations from any of the three drivers
// to ErrDuplicate. The mapping is string based so this file needs no driver
// imports.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return ErrDuplicate
	}
	return err
}
