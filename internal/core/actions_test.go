// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sentinel-vault/sentinel/internal/catalog"
	"github.com/sentinel-vault/sentinel/internal/db"
	"github.com/sentinel-vault/sentinel/internal/media"
	"github.com/sentinel-vault/sentinel/internal/render"
	"github.com/sentinel-vault/sentinel/internal/security"
	"github.com/sentinel-vault/sentinel/internal/session"
	"github.com/sentinel-vault/sentinel/internal/token"
	"github.com/sentinel-vault/sentinel/internal/vault"
	"github.com/sentinel-vault/sentinel/internal/viewer"
)

type fakeFetcher struct {
	requests  []int64
	mediaType string
	body      string
	suggested string
	err       error
}

func (f *fakeFetcher) FetchPlaintext(ctx context.Context, id int64) (*vault.Stream, error) {
	f.requests = append(f.requests, id)
	if f.err != nil {
		return nil, f.err
	}
	return &vault.Stream{MediaType: f.mediaType, Length: -1, Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func (f *fakeFetcher) FetchToken(ctx context.Context, id int64) (*vault.Stream, error) {
	f.requests = append(f.requests, id)
	if f.err != nil {
		return nil, f.err
	}
	return &vault.Stream{MediaType: "application/octet-stream", SuggestedName: f.suggested, Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

type recordingTarget struct {
	name  string
	shown []string
}

func (r *recordingTarget) Present(ctx context.Context, h *render.Handle) error {
	r.shown = append(r.shown, h.Name())
	return nil
}
func (r *recordingTarget) Describe() string { return r.name }

type fakeLedger struct {
	digests map[int64]string
}

func (l *fakeLedger) RecordToken(ctx context.Context, id int64, name string, data []byte) (string, error) {
	sum := token.Digest(data)
	l.digests[id] = sum
	return sum, nil
}

func (l *fakeLedger) VerifyToken(ctx context.Context, id int64, r io.Reader) (*db.TokenDigest, error) {
	want, ok := l.digests[id]
	if !ok {
		return nil, catalog.ErrUnknownToken
	}
	got, err := token.DigestReader(r)
	if err != nil {
		return nil, err
	}
	rec := &db.TokenDigest{ArtifactID: id, Digest: want, RecordedAt: time.Now()}
	if got != want {
		return rec, catalog.ErrTokenMismatch
	}
	return rec, nil
}

type fakeNames map[int64]string

func (n fakeNames) Lookup(ctx context.Context, id int64) (vault.Descriptor, bool) {
	name, ok := n[id]
	return vault.Descriptor{ID: id, FileName: name}, ok
}

func newActions(t *testing.T, cred string, f *fakeFetcher) (*Actions, *viewer.Router, map[media.Kind]*recordingTarget) {
	t.Helper()
	var store *session.MemoryStore
	if cred == "" {
		store = session.NewMemoryStore()
	} else {
		store = session.NewMemoryStore(security.FromString(cred))
	}
	holder, err := session.NewHolder(store)
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	targets := map[media.Kind]*recordingTarget{
		media.Document: {name: "document"},
		media.Video:    {name: "video"},
		media.Audio:    {name: "audio"},
	}
	router := viewer.NewRouter(targets[media.Document])
	router.Route(media.Video, targets[media.Video])
	router.Route(media.Audio, targets[media.Audio])
	return &Actions{
		Session: holder,
		Fetcher: f,
		Surface: render.NewSession(0),
		Viewer:  router,
		Ledger:  &fakeLedger{digests: map[int64]string{}},
		Names:   fakeNames{42: "report.pdf"},
	}, router, targets
}

func TestViewArtifact_NoSessionShortCircuits(t *testing.T) {
	f := &fakeFetcher{mediaType: "application/pdf", body: "%PDF"}
	a, _, _ := newActions(t, "", f)

	h, err := a.ViewArtifact(context.Background(), 5, "")
	if h != nil || !errors.Is(err, session.ErrSessionMissing) {
		t.Fatalf("ViewArtifact = %v, %v", h, err)
	}
	if len(f.requests) != 0 {
		t.Fatalf("expected zero vault requests, got %v", f.requests)
	}
	if a.Surface.State() != render.Idle {
		t.Fatalf("surface left in %s", a.Surface.State())
	}
	if Describe(err) == "" {
		t.Fatalf("SessionMissing must have a message")
	}
}

func TestViewArtifact_VideoRoutesToVideoTarget(t *testing.T) {
	f := &fakeFetcher{mediaType: "video/mp4", body: "frames"}
	a, router, targets := newActions(t, "tok", f)
	ctx := context.Background()

	h, err := a.ViewArtifact(ctx, 7, "clip.mp4")
	if err != nil {
		t.Fatalf("ViewArtifact: %v", err)
	}
	if h.Kind() != media.Video {
		t.Fatalf("classified as %s", h.Kind())
	}
	if router.For(h.Kind()).Describe() != "video" {
		t.Fatalf("router selected %s", router.For(h.Kind()).Describe())
	}
	if err := a.Present(ctx, h); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if len(targets[media.Video].shown) != 1 || len(targets[media.Document].shown) != 0 {
		t.Fatalf("video shown on the wrong target: %+v", targets)
	}
	if a.Surface.Current() != nil {
		t.Fatalf("Present must release the handle")
	}
}

func TestOpenToken_RejectsBadNamesWithoutRequest(t *testing.T) {
	f := &fakeFetcher{mediaType: "application/pdf", body: "%PDF"}
	a, _, _ := newActions(t, "tok", f)
	ctx := context.Background()

	_, err := a.OpenToken(ctx, "/downloads/report.pdf")
	if !errors.Is(err, &token.DecodeError{Kind: token.WrongExtension}) {
		t.Fatalf("expected WrongExtension, got %v", err)
	}
	if Describe(err) != "Invalid file! You must upload a .sntl token file." {
		t.Fatalf("unexpected message %q", Describe(err))
	}
	_, err = a.OpenToken(ctx, "/downloads/report.pdf.sntl")
	if !errors.Is(err, &token.DecodeError{Kind: token.MissingStamp}) {
		t.Fatalf("expected MissingStamp, got %v", err)
	}
	if len(f.requests) != 0 {
		t.Fatalf("invalid tokens must not reach the vault: %v", f.requests)
	}
}

func TestOpenToken_DecoratedName(t *testing.T) {
	f := &fakeFetcher{mediaType: "application/pdf", body: "%PDF"}
	a, _, _ := newActions(t, "tok", f)

	h, err := a.OpenToken(context.Background(), "/downloads/report.pdf_id_42 (1).sntl")
	if err != nil {
		t.Fatalf("OpenToken: %v", err)
	}
	defer h.Close()
	if len(f.requests) != 1 || f.requests[0] != 42 || h.Name() != "report.pdf" {
		t.Fatalf("requests=%v name=%q", f.requests, h.Name())
	}
}

func TestViewArtifact_DeniedKeepsMessage(t *testing.T) {
	f := &fakeFetcher{err: &vault.DeniedError{Op: "fetch artifact", StatusCode: 403}}
	a, _, _ := newActions(t, "tok", f)

	_, err := a.ViewArtifact(context.Background(), 9, "x")
	if !errors.Is(err, vault.ErrAuthorizationDenied) {
		t.Fatalf("expected denied, got %v", err)
	}
	if got := Describe(err); got != "ACCESS DENIED: The owner has not granted you permission for this file." {
		t.Fatalf("unexpected message %q", got)
	}
	if a.Surface.State() != render.Idle || a.Surface.LastError() == nil {
		t.Fatalf("failed view must end idle with an error")
	}
}

func TestFetchTokenAndVerify(t *testing.T) {
	f := &fakeFetcher{body: "ciphertext", suggested: "other.pdf_id_99.sntl"}
	a, _, _ := newActions(t, "tok", f)
	ctx := context.Background()
	dir := t.TempDir()

	got, err := a.FetchToken(ctx, 42, dir)
	if err != nil {
		t.Fatalf("FetchToken: %v", err)
	}
	if filepath.Base(got.Path) != "report.pdf_id_42.sntl" {
		t.Fatalf("mismatched suggestion must be ignored, saved as %s", got.Path)
	}
	if got.Name.ArtifactID != 42 || got.Digest != token.Digest([]byte("ciphertext")) {
		t.Fatalf("unexpected result %+v", got)
	}
	info, err := os.Stat(got.Path)
	if err != nil || info.Mode().Perm() != 0o600 {
		t.Fatalf("token file: %v %v", info, err)
	}

	v, err := a.VerifyToken(ctx, got.Path)
	if err != nil || v.Name.ArtifactID != 42 {
		t.Fatalf("VerifyToken = %+v, %v", v, err)
	}
	if err := os.WriteFile(got.Path, []byte("tampered"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := a.VerifyToken(ctx, got.Path); !errors.Is(err, catalog.ErrTokenMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
}

func TestFetchToken_UsesMatchingSuggestion(t *testing.T) {
	f := &fakeFetcher{body: "x", suggested: "Quarterly Report.pdf_id_7.sntl"}
	a, _, _ := newActions(t, "tok", f)

	got, err := a.FetchToken(context.Background(), 7, t.TempDir())
	if err != nil {
		t.Fatalf("FetchToken: %v", err)
	}
	if filepath.Base(got.Path) != "Quarterly Report.pdf_id_7.sntl" {
		t.Fatalf("saved as %s", got.Path)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&vault.ShareRejectedError{Reason: "User not registered"}, "User not registered"},
		{&vault.MutationError{Op: "delete", Message: "File is locked"}, "File is locked"},
		{&vault.FetchError{Op: "fetch", StatusCode: 500}, "Decryption Failed: File not found or server error."},
		{errors.New("plain"), "plain"},
	}
	for _, tc := range tests {
		if got := Describe(tc.err); got != tc.want {
			t.Errorf("Describe(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
	if Describe(nil) != "" {
		t.Fatalf("nil error must describe as empty")
	}
	var buf bytes.Buffer
	buf.WriteString(Describe(&token.DecodeError{Kind: token.MissingStamp}))
	if !strings.Contains(buf.String(), "_id_NUMBER") {
		t.Fatalf("missing stamp message not actionable: %q", buf.String())
	}
}
