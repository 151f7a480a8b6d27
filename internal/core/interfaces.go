// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package core contains the user actions shared by the CLI and the TUI, and
// the small interfaces that describe their side-effect boundaries.
package core

import (
	"context"
	"io"

	"github.com/sentinel-vault/sentinel/internal/db"
	"github.com/sentinel-vault/sentinel/internal/render"
	"github.com/sentinel-vault/sentinel/internal/security"
	"github.com/sentinel-vault/sentinel/internal/vault"
)

// Fetcher retrieves artifact bytes from the vault.
type Fetcher interface {
	FetchPlaintext(ctx context.Context, id int64) (*vault.Stream, error)
	FetchToken(ctx context.Context, id int64) (*vault.Stream, error)
}

// Presenter shows a handle to the user.
type Presenter interface {
	Present(ctx context.Context, h *render.Handle) error
}

// Ledger records and checks token digests.
type Ledger interface {
	RecordToken(ctx context.Context, id int64, name string, data []byte) (string, error)
	VerifyToken(ctx context.Context, id int64, r io.Reader) (*db.TokenDigest, error)
}

// Names resolves an artifact id to its original file name, if known.
type Names interface {
	Lookup(ctx context.Context, id int64) (vault.Descriptor, bool)
}

// Credentials is the session check every action starts with.
type Credentials interface {
	Require() (security.Secret, error)
}
