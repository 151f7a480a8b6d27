// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// Store is the bun-backed cache.
type Store struct {
	bun    *bun.DB
	dbType string
}

// Type returns the backend name.
func (s *Store) Type() string { return s.dbType }

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.bun.Close() }

// ReplaceArtifacts swaps the cached listing for rows in one transaction.
func (s *Store) ReplaceArtifacts(ctx context.Context, rows []Artifact) error {
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Bun requires a WHERE clause on Delete; clearing the table is intended.
		if _, err := ExecRaw(ctx, tx, "DELETE FROM artifacts"); err != nil {
			return fmt.Errorf("clearing artifact cache: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("caching artifacts: %w", MapDBError(err))
		}
		return nil
	})
}

// Artifacts returns the cached listing in vault order.
func (s *Store) Artifacts(ctx context.Context) ([]Artifact, error) {
	var rows []Artifact
	if err := s.bun.NewSelect().Model(&rows).Order("position ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

// Artifact returns one cached row or ErrNotFound.
func (s *Store) Artifact(ctx context.Context, id int64) (*Artifact, error) {
	var row Artifact
	err := s.bun.NewSelect().Model(&row).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteArtifact drops one cached row and its digest.
func (s *Store) DeleteArtifact(ctx context.Context, id int64) error {
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*Artifact)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().Model((*TokenDigest)(nil)).Where("artifact_id = ?", id).Exec(ctx)
		return err
	})
}

// PutDigest records d, replacing any earlier digest for the same artifact.
func (s *Store) PutDigest(ctx context.Context, d TokenDigest) error {
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*TokenDigest)(nil)).Where("artifact_id = ?", d.ArtifactID).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(&d).Exec(ctx); err != nil {
			return MapDBError(err)
		}
		return nil
	})
}

// Digest returns the recorded digest for an artifact or ErrNotFound.
func (s *Store) Digest(ctx context.Context, artifactID int64) (*TokenDigest, error) {
	var d TokenDigest
	err := s.bun.NewSelect().Model(&d).Where("artifact_id = ?", artifactID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Purge empties the cache. Used on logout.
func (s *Store) Purge(ctx context.Context) error {
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, table := range []string{"artifacts", "token_digests"} {
			if _, err := ExecRaw(ctx, tx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("purging %s: %w", table, err)
			}
		}
		return nil
	})
}
