// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sentinel-vault/sentinel/internal/db"
	"github.com/sentinel-vault/sentinel/internal/vault"
)

type fakeSource struct {
	list      []vault.Descriptor
	lists     int
	listErr   error
	deleteErr error
	uploaded  []string
}

func (f *fakeSource) ListArtifacts(ctx context.Context) ([]vault.Descriptor, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]vault.Descriptor(nil), f.list...), nil
}

func (f *fakeSource) DeleteArtifact(ctx context.Context, id int64) (string, error) {
	if f.deleteErr != nil {
		return "", f.deleteErr
	}
	for i, d := range f.list {
		if d.ID == id {
			f.list = append(f.list[:i], f.list[i+1:]...)
			break
		}
	}
	return "File deleted successfully", nil
}

func (f *fakeSource) UploadArtifact(ctx context.Context, name string, content io.Reader) (string, error) {
	f.uploaded = append(f.uploaded, name)
	f.list = append(f.list, vault.Descriptor{ID: int64(100 + len(f.uploaded)), FileName: name, FileType: "application/pdf"})
	return "File uploaded successfully", nil
}

func newTestCatalog(t *testing.T, src *fakeSource) *Catalog {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	store, err := db.Open("sqlite", "file:catalog_"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return New(src, store)
}

func sampleList() []vault.Descriptor {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return []vault.Descriptor{
		{ID: 7, FileName: "clip.mp4", FileType: "video/mp4", UploadTime: ts},
		{ID: 2, FileName: "report.pdf", FileType: "application/pdf", UploadTime: ts.Add(time.Hour)},
	}
}

func TestRefreshAndCached(t *testing.T) {
	src := &fakeSource{list: sampleList()}
	c := newTestCatalog(t, src)
	ctx := context.Background()

	if _, at, err := c.Cached(ctx); err != nil || !at.IsZero() {
		t.Fatalf("empty cache: at=%v err=%v", at, err)
	}
	list, err := c.Refresh(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("Refresh = %v, %v", list, err)
	}
	cached, at, err := c.Cached(ctx)
	if err != nil {
		t.Fatalf("Cached: %v", err)
	}
	if at.IsZero() || len(cached) != 2 || cached[0].ID != 7 || cached[1].ID != 2 {
		t.Fatalf("cached listing %+v at %v", cached, at)
	}
	if d, ok := c.Lookup(ctx, 2); !ok || d.FileName != "report.pdf" {
		t.Fatalf("Lookup = %+v, %v", d, ok)
	}
}

func TestList_UsesCacheUntilInvalidated(t *testing.T) {
	src := &fakeSource{list: sampleList()}
	c := newTestCatalog(t, src)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.List(ctx); err != nil {
			t.Fatalf("List: %v", err)
		}
	}
	if src.lists != 1 {
		t.Fatalf("expected 1 vault listing, got %d", src.lists)
	}
	c.Invalidate()
	if _, err := c.List(ctx); err != nil {
		t.Fatalf("List: %v", err)
	}
	if src.lists != 2 {
		t.Fatalf("invalidate did not force a refresh (%d listings)", src.lists)
	}
}

func TestDelete_OnlyAfterConfirmation(t *testing.T) {
	src := &fakeSource{list: sampleList(), deleteErr: &vault.MutationError{Op: "delete", StatusCode: 409, Message: "File is locked"}}
	c := newTestCatalog(t, src)
	ctx := context.Background()
	if _, err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if _, err := c.Delete(ctx, 7); err == nil || err.Error() != "File is locked" {
		t.Fatalf("expected server message, got %v", err)
	}
	if _, ok := c.Lookup(ctx, 7); !ok {
		t.Fatalf("failed delete removed the local row")
	}

	src.deleteErr = nil
	res, err := c.Delete(ctx, 7)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if res.Message != "File deleted successfully" || len(res.Artifacts) != 1 || res.RefreshErr != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, ok := c.Lookup(ctx, 7); ok {
		t.Fatalf("deleted artifact still cached")
	}
}

func TestUpload_RefreshFailureKeepsSuccess(t *testing.T) {
	src := &fakeSource{}
	c := newTestCatalog(t, src)
	src.listErr = errors.New("network down")

	res, err := c.Upload(context.Background(), "new.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.Message == "" || res.RefreshErr == nil {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestTokenLedger(t *testing.T) {
	c := newTestCatalog(t, &fakeSource{})
	ctx := context.Background()
	data := []byte{0x53, 0x4e, 0x54, 0x4c}

	if _, err := c.VerifyToken(ctx, 42, bytes.NewReader(data)); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected ErrUnknownToken, got %v", err)
	}
	sum, err := c.RecordToken(ctx, 42, "report.pdf_id_42.sntl", data)
	if err != nil || len(sum) != 64 {
		t.Fatalf("RecordToken = %q, %v", sum, err)
	}
	rec, err := c.VerifyToken(ctx, 42, bytes.NewReader(data))
	if err != nil || rec.FileName != "report.pdf_id_42.sntl" {
		t.Fatalf("VerifyToken = %+v, %v", rec, err)
	}
	if _, err := c.VerifyToken(ctx, 42, bytes.NewReader([]byte("tampered"))); !errors.Is(err, ErrTokenMismatch) {
		t.Fatalf("expected ErrTokenMismatch, got %v", err)
	}
}

func TestExportRoundTrip(t *testing.T) {
	src := &fakeSource{list: sampleList()}
	c := newTestCatalog(t, src)
	ctx := context.Background()
	if _, err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	var buf bytes.Buffer
	n, err := c.Export(ctx, &buf)
	if err != nil || n != 2 {
		t.Fatalf("Export = %d, %v", n, err)
	}
	list, at, err := ReadExport(&buf)
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	if at.IsZero() || len(list) != 2 || list[0].FileName != "clip.mp4" || !list[1].UploadTime.Equal(sampleList()[1].UploadTime) {
		t.Fatalf("export content %+v at %v", list, at)
	}
}

func TestPurge(t *testing.T) {
	src := &fakeSource{list: sampleList()}
	c := newTestCatalog(t, src)
	ctx := context.Background()
	_, _ = c.Refresh(ctx)

	if err := c.Purge(ctx); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if list, _, _ := c.Cached(ctx); len(list) != 0 {
		t.Fatalf("cache survived purge: %+v", list)
	}
	if _, err := c.List(ctx); err != nil || src.lists != 2 {
		t.Fatalf("purge must force the next List to the vault (lists=%d, err=%v)", src.lists, err)
	}
}
