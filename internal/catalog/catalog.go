// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package catalog keeps the local, read-only copy of the artifact listing.
// The copy is replaced wholesale from the vault after every mutation; a
// local change is applied only after the vault confirmed it.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/sentinel-vault/sentinel/internal/db"
	"github.com/sentinel-vault/sentinel/internal/logging"
	"github.com/sentinel-vault/sentinel/internal/token"
	"github.com/sentinel-vault/sentinel/internal/vault"
)

// Source is the part of the vault client the catalog needs.
type Source interface {
	ListArtifacts(ctx context.Context) ([]vault.Descriptor, error)
	DeleteArtifact(ctx context.Context, id int64) (string, error)
	UploadArtifact(ctx context.Context, name string, content io.Reader) (string, error)
}

// Result is the outcome of a confirmed mutation. RefreshErr reports a failed
// follow-up listing and never changes the mutation's outcome.
type Result struct {
	Message    string
	Artifacts  []vault.Descriptor
	RefreshErr error
}

// Catalog couples a vault source with the local cache.
type Catalog struct {
	src   Source
	store *db.Store
	now   func() time.Time

	mu    sync.Mutex
	stale bool
}

func New(src Source, store *db.Store) *Catalog {
	return &Catalog{src: src, store: store, now: time.Now, stale: true}
}

// Refresh fetches the listing from the vault and replaces the cache.
func (c *Catalog) Refresh(ctx context.Context) ([]vault.Descriptor, error) {
	list, err := c.src.ListArtifacts(ctx)
	if err != nil {
		return nil, err
	}
	now := c.now().UTC()
	rows := make([]db.Artifact, 0, len(list))
	for i, d := range list {
		rows = append(rows, db.Artifact{
			ID:         d.ID,
			Position:   i,
			FileName:   d.FileName,
			FileType:   d.FileType,
			UploadTime: d.UploadTime,
			CachedAt:   now,
		})
	}
	if err := c.store.ReplaceArtifacts(ctx, rows); err != nil {
		logging.Warnf("could not cache artifact listing: %v", err)
	} else {
		c.mu.Lock()
		c.stale = false
		c.mu.Unlock()
	}
	return list, nil
}

// Cached returns the cached listing and when it was taken. The time is zero
// when nothing is cached.
func (c *Catalog) Cached(ctx context.Context) ([]vault.Descriptor, time.Time, error) {
	rows, err := c.store.Artifacts(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	out := make([]vault.Descriptor, 0, len(rows))
	var at time.Time
	for _, r := range rows {
		out = append(out, vault.Descriptor{ID: r.ID, FileName: r.FileName, FileType: r.FileType, UploadTime: r.UploadTime})
		if r.CachedAt.After(at) {
			at = r.CachedAt
		}
	}
	return out, at, nil
}

// List returns the cached listing unless it was invalidated, in which case
// it refreshes first.
func (c *Catalog) List(ctx context.Context) ([]vault.Descriptor, error) {
	c.mu.Lock()
	stale := c.stale
	c.mu.Unlock()
	if !stale {
		list, _, err := c.Cached(ctx)
		if err == nil {
			return list, nil
		}
		logging.Debugf("catalog: cache read failed, refreshing: %v", err)
	}
	return c.Refresh(ctx)
}

// Invalidate marks the cached listing as outdated.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
}

// Lookup returns the cached descriptor for id.
func (c *Catalog) Lookup(ctx context.Context, id int64) (vault.Descriptor, bool) {
	row, err := c.store.Artifact(ctx, id)
	if err != nil {
		return vault.Descriptor{}, false
	}
	return vault.Descriptor{ID: row.ID, FileName: row.FileName, FileType: row.FileType, UploadTime: row.UploadTime}, true
}

// Delete removes an artifact in the vault, then locally.
func (c *Catalog) Delete(ctx context.Context, id int64) (Result, error) {
	msg, err := c.src.DeleteArtifact(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if err := c.store.DeleteArtifact(ctx, id); err != nil {
		logging.Warnf("could not drop artifact %d from cache: %v", id, err)
	}
	return c.afterMutation(ctx, msg), nil
}

// Upload sends a new artifact, then refreshes the listing.
func (c *Catalog) Upload(ctx context.Context, name string, content io.Reader) (Result, error) {
	msg, err := c.src.UploadArtifact(ctx, name, content)
	if err != nil {
		return Result{}, err
	}
	return c.afterMutation(ctx, msg), nil
}

func (c *Catalog) afterMutation(ctx context.Context, msg string) Result {
	c.Invalidate()
	res := Result{Message: msg}
	list, err := c.Refresh(ctx)
	if err != nil {
		logging.Warnf("refreshing listing after mutation: %v", err)
		res.RefreshErr = err
		return res
	}
	res.Artifacts = list
	return res
}

// Purge empties the local cache. Registered as a session clear observer.
func (c *Catalog) Purge(ctx context.Context) error {
	c.Invalidate()
	return c.store.Purge(ctx)
}

// RecordToken stores the digest of fetched token bytes.
func (c *Catalog) RecordToken(ctx context.Context, id int64, name string, data []byte) (string, error) {
	sum := token.Digest(data)
	err := c.store.PutDigest(ctx, db.TokenDigest{
		ArtifactID: id,
		FileName:   name,
		Digest:     sum,
		Size:       int64(len(data)),
		RecordedAt: c.now().UTC(),
	})
	return sum, err
}

// ErrUnknownToken is returned by VerifyToken when no digest was recorded.
var ErrUnknownToken = errors.New("no digest recorded for this token")

// ErrTokenMismatch is returned by VerifyToken when the bytes changed.
var ErrTokenMismatch = errors.New("token contents do not match the recorded digest")

// VerifyToken compares r against the recorded digest for id.
func (c *Catalog) VerifyToken(ctx context.Context, id int64, r io.Reader) (*db.TokenDigest, error) {
	rec, err := c.store.Digest(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrUnknownToken
	}
	if err != nil {
		return nil, err
	}
	sum, err := token.DigestReader(r)
	if err != nil {
		return nil, err
	}
	if sum != rec.Digest {
		return rec, ErrTokenMismatch
	}
	return rec, nil
}

// exportDocument is the on-disk shape of an export.
type exportDocument struct {
	ExportedAt time.Time          `json:"exportedAt"`
	Artifacts  []vault.Descriptor `json:"artifacts"`
}

// Export writes the cached listing as zstd-compressed JSON. Only metadata is
// exported.
func (c *Catalog) Export(ctx context.Context, w io.Writer) (int, error) {
	list, _, err := c.Cached(ctx)
	if err != nil {
		return 0, err
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return 0, fmt.Errorf("create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exportDocument{ExportedAt: c.now().UTC(), Artifacts: list}); err != nil {
		_ = zw.Close()
		return 0, fmt.Errorf("encode export: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finish export: %w", err)
	}
	return len(list), nil
}

// ReadExport decodes a file written by Export.
func ReadExport(r io.Reader) ([]vault.Descriptor, time.Time, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()
	var doc exportDocument
	if err := json.NewDecoder(zr).Decode(&doc); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode export: %w", err)
	}
	return doc.Artifacts, doc.ExportedAt, nil
}
