// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateBunDB_VariousDialects(t *testing.T) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory: %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	for _, c := range []string{"sqlite", "postgres", "mysql", "unknown"} {
		if b := createBunDB(sqlDB, c); b == nil {
			t.Fatalf("createBunDB returned nil for dialect %s", c)
		}
	}
}

func TestOpen_RejectsUnknownType(t *testing.T) {
	if _, err := Open("oracle", "x"); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	sqlDB, err := sql.Open("sqlite", "file:migr_idem?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sqlDB.Close()
	sqlDB.SetMaxOpenConns(1)

	for i := 0; i < 2; i++ {
		if err := RunMigrations(sqlDB, "sqlite"); err != nil {
			t.Fatalf("RunMigrations run %d: %v", i+1, err)
		}
	}
	var n int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 recorded migration, got %d", n)
	}
}

func TestOpen_FileDSNCreatesDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "cache.db")
	s, err := Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if s.Type() != "sqlite" {
		t.Fatalf("Type = %s", s.Type())
	}
}

func TestArtifacts_ReplaceKeepsOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	rows := []Artifact{
		{ID: 9, Position: 0, FileName: "z.pdf", FileType: "application/pdf", UploadTime: now, CachedAt: now},
		{ID: 3, Position: 1, FileName: "a.mp4", FileType: "video/mp4", CachedAt: now},
	}
	if err := s.ReplaceArtifacts(ctx, rows); err != nil {
		t.Fatalf("ReplaceArtifacts: %v", err)
	}
	got, err := s.Artifacts(ctx)
	if err != nil {
		t.Fatalf("Artifacts: %v", err)
	}
	if len(got) != 2 || got[0].ID != 9 || got[1].ID != 3 {
		t.Fatalf("order not preserved: %+v", got)
	}
	if !got[0].UploadTime.Equal(now) || !got[1].UploadTime.IsZero() {
		t.Fatalf("upload times = %v, %v", got[0].UploadTime, got[1].UploadTime)
	}

	if err := s.ReplaceArtifacts(ctx, rows[1:]); err != nil {
		t.Fatalf("second ReplaceArtifacts: %v", err)
	}
	got, _ = s.Artifacts(ctx)
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("replace did not drop stale rows: %+v", got)
	}
	if _, err := s.Artifact(ctx, 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDigests(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := s.Digest(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	for _, d := range []string{"aa", "bb"} {
		if err := s.PutDigest(ctx, TokenDigest{ArtifactID: 42, FileName: "r.pdf_id_42.sntl", Digest: d, Size: 3, RecordedAt: now}); err != nil {
			t.Fatalf("PutDigest(%s): %v", d, err)
		}
	}
	got, err := s.Digest(ctx, 42)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if got.Digest != "bb" || got.Size != 3 {
		t.Fatalf("unexpected digest %+v", got)
	}

	if err := s.ReplaceArtifacts(ctx, []Artifact{{ID: 42, FileName: "r.pdf", CachedAt: now}}); err != nil {
		t.Fatalf("ReplaceArtifacts: %v", err)
	}
	if err := s.DeleteArtifact(ctx, 42); err != nil {
		t.Fatalf("DeleteArtifact: %v", err)
	}
	if _, err := s.Digest(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("digest should go with its artifact, got %v", err)
	}
}

func TestPurge(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	_ = s.ReplaceArtifacts(ctx, []Artifact{{ID: 1, FileName: "a", CachedAt: now}})
	_ = s.PutDigest(ctx, TokenDigest{ArtifactID: 1, FileName: "a_id_1.sntl", Digest: "x", RecordedAt: now})

	if err := s.Purge(ctx); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	rows, _ := s.Artifacts(ctx)
	if len(rows) != 0 {
		t.Fatalf("artifacts survived purge")
	}
	if _, err := s.Digest(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("digest survived purge")
	}
	if err := s.RunMaintenance(ctx); err != nil {
		t.Fatalf("RunMaintenance: %v", err)
	}
}

func TestSplitStatementsAndPlaceholders(t *testing.T) {
	stmts := splitStatements("-- comment\nCREATE TABLE a (x INT);\n\nCREATE TABLE b (y INT);\n")
	if len(stmts) != 2 || !strings.HasPrefix(stmts[1], "CREATE TABLE b") {
		t.Fatalf("splitStatements = %q", stmts)
	}
	if got := placeholders("postgres", "a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("placeholders = %q", got)
	}
	if got := placeholders("mysql", "a = ?"); got != "a = ?" {
		t.Fatalf("placeholders mysql = %q", got)
	}
}

func TestMapDBError(t *testing.T) {
	if MapDBError(nil) != nil {
		t.Fatalf("nil should map to nil")
	}
	if !errors.Is(MapDBError(errors.New("UNIQUE constraint failed: artifacts.id")), ErrDuplicate) {
		t.Fatalf("sqlite unique violation not mapped")
	}
	other := errors.New("disk full")
	if MapDBError(other) != other {
		t.Fatalf("unrelated error altered")
	}
}
