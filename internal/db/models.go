// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"time"

	"github.com/uptrace/bun"
)

// Artifact is one cached row of the vault listing. Position keeps the
// vault's order.
type Artifact struct {
	bun.BaseModel `bun:"table:artifacts"`
	ID            int64     `bun:"id,pk"`
	Position      int       `bun:"position"`
	FileName      string    `bun:"file_name"`
	FileType      string    `bun:"file_type"`
	UploadTime    time.Time `bun:"upload_time,nullzero"`
	CachedAt      time.Time `bun:"cached_at"`
}

// TokenDigest records the blake2b-256 digest of the last .sntl token fetched
// for an artifact.
type TokenDigest struct {
	bun.BaseModel `bun:"table:token_digests"`
	ArtifactID    int64     `bun:"artifact_id,pk"`
	FileName      string    `bun:"file_name"`
	Digest        string    `bun:"digest"`
	Size          int64     `bun:"size"`
	RecordedAt    time.Time `bun:"recorded_at"`
}
