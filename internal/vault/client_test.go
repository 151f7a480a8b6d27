// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sentinel-vault/sentinel/internal/security"
	"github.com/sentinel-vault/sentinel/internal/session"
)

func newTestClient(t *testing.T, handler http.Handler, cred string) (*Client, *session.Holder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var store *session.MemoryStore
	if cred != "" {
		store = session.NewMemoryStore(security.FromString(cred))
	} else {
		store = session.NewMemoryStore()
	}
	holder, err := session.NewHolder(store)
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	c, err := New(srv.URL, holder, Options{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, holder
}

func TestNew_RejectsBadURL(t *testing.T) {
	h, _ := session.NewHolder(nil)
	if _, err := New("ftp://vault", h, Options{}); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
	if _, err := New("http://vault", nil, Options{}); err == nil {
		t.Fatalf("expected error for nil holder")
	}
}

func TestNoSession_SendsNothing(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}), "")

	ctx := context.Background()
	calls := map[string]func() error{
		"list":      func() error { _, err := c.ListArtifacts(ctx); return err },
		"plaintext": func() error { _, err := c.FetchPlaintext(ctx, 5); return err },
		"token":     func() error { _, err := c.FetchToken(ctx, 5); return err },
		"delete":    func() error { _, err := c.DeleteArtifact(ctx, 5); return err },
		"shares":    func() error { _, err := c.ListShares(ctx, 5); return err },
		"grant":     func() error { _, err := c.GrantShare(ctx, 5, "a@b.c"); return err },
		"revoke":    func() error { _, err := c.RevokeShare(ctx, 5, "a@b.c"); return err },
		"upload": func() error {
			_, err := c.UploadArtifact(ctx, "a.pdf", strings.NewReader("%PDF"))
			return err
		},
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, session.ErrSessionMissing) {
			t.Errorf("%s: expected ErrSessionMissing, got %v", name, err)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Fatalf("expected zero vault requests, got %d", n)
	}
}

func TestFetchPlaintext_PreservesMediaType(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/files/download/7" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("frames"))
	}), "tok")

	s, err := c.FetchPlaintext(context.Background(), 7)
	if err != nil {
		t.Fatalf("FetchPlaintext: %v", err)
	}
	defer s.Body.Close()
	if s.MediaType != "video/mp4" {
		t.Fatalf("media type lost: %q", s.MediaType)
	}
	b, _ := io.ReadAll(s.Body)
	if string(b) != "frames" {
		t.Fatalf("unexpected body %q", b)
	}
}

func TestFetchToken_SuggestedName(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="report.pdf_id_42.sntl"`)
		_, _ = w.Write([]byte{1, 2, 3})
	}), "tok")

	s, err := c.FetchToken(context.Background(), 42)
	if err != nil {
		t.Fatalf("FetchToken: %v", err)
	}
	s.Body.Close()
	if s.SuggestedName != "report.pdf_id_42.sntl" {
		t.Fatalf("unexpected suggested name %q", s.SuggestedName)
	}
}

func TestAuthorizationPolicy(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		call        func(*Client) error
		wantCleared bool
	}{
		{"403 on artifact keeps session", http.StatusForbidden, func(c *Client) error {
			_, err := c.FetchPlaintext(context.Background(), 1)
			return err
		}, false},
		{"403 on list ends session", http.StatusForbidden, func(c *Client) error {
			_, err := c.ListArtifacts(context.Background())
			return err
		}, true},
		{"401 on artifact ends session", http.StatusUnauthorized, func(c *Client) error {
			_, err := c.FetchPlaintext(context.Background(), 1)
			return err
		}, true},
		{"403 on shares keeps session", http.StatusForbidden, func(c *Client) error {
			_, err := c.ListShares(context.Background(), 1)
			return err
		}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, holder := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tc.status)
			}), "tok")
			var reasons []session.ClearReason
			holder.OnClear(func(r session.ClearReason) { reasons = append(reasons, r) })

			err := tc.call(c)
			if !errors.Is(err, ErrAuthorizationDenied) {
				t.Fatalf("expected ErrAuthorizationDenied, got %v", err)
			}
			if IsSessionEnding(err) != tc.wantCleared {
				t.Fatalf("IsSessionEnding = %v, want %v", IsSessionEnding(err), tc.wantCleared)
			}
			_, ok := holder.Get()
			if ok == tc.wantCleared {
				t.Fatalf("credential present = %v, want %v", ok, !tc.wantCleared)
			}
			if tc.wantCleared && (len(reasons) != 1 || reasons[0] != session.ReasonDenied) {
				t.Fatalf("expected one ReasonDenied clear, got %v", reasons)
			}
		})
	}
}

func TestFetchPlaintext_NotFoundAndServerError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/404") {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}), "tok")

	if _, err := c.FetchPlaintext(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err := c.FetchPlaintext(context.Background(), 500)
	var fe *FetchError
	if !errors.As(err, &fe) || fe.StatusCode != 500 || fe.Message != "boom" {
		t.Fatalf("expected FetchError 500 boom, got %#v", err)
	}
}

func TestListArtifacts_Timestamps(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"id":1,"fileName":"a.pdf","fileType":"application/pdf","uploadTime":"2025-03-01T10:20:30.123456"},
			{"id":2,"fileName":"b.mp4","fileType":"video/mp4","uploadTime":"2025-03-02T08:00:00Z"},
			{"id":3,"fileName":"c.wav","fileType":"audio/wav","uploadTime":[2025,3,3,9,30,0]},
			{"id":4,"fileName":"d.pdf","fileType":"application/pdf","uploadTime":null}
		]`)
	}), "tok")

	list, err := c.ListArtifacts(context.Background())
	if err != nil {
		t.Fatalf("ListArtifacts: %v", err)
	}
	if len(list) != 4 || list[0].ID != 1 || list[3].ID != 4 {
		t.Fatalf("unexpected listing %+v", list)
	}
	if got := list[0].UploadTime; got.Year() != 2025 || got.Second() != 30 || got.Nanosecond() != 123456000 {
		t.Fatalf("zone-less timestamp parsed as %v", got)
	}
	if list[2].UploadTime.Day() != 3 || list[2].UploadTime.Hour() != 9 {
		t.Fatalf("array timestamp parsed as %v", list[2].UploadTime)
	}
	if !list[3].UploadTime.IsZero() {
		t.Fatalf("null timestamp should be zero")
	}
}

func TestGrantShare_SurfacesServerReason(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("email") != "unknown@example.com" || r.URL.Query().Get("fileId") != "9" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"User not registered"}`)
	}), "tok")

	_, err := c.GrantShare(context.Background(), 9, "unknown@example.com")
	var rej *ShareRejectedError
	if !errors.As(err, &rej) {
		t.Fatalf("expected ShareRejectedError, got %v", err)
	}
	if rej.Reason != "User not registered" || err.Error() != "User not registered" {
		t.Fatalf("reason paraphrased: %q", rej.Reason)
	}
}

func TestRevokeAndDelete_Messages(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/api/files/revoke":
			fmt.Fprint(w, "Access revoked")
		case r.Method == http.MethodDelete && r.URL.Path == "/api/files/delete/3":
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, "File is locked")
		case r.Method == http.MethodDelete && r.URL.Path == "/api/files/delete/4":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}), "tok")
	ctx := context.Background()

	msg, err := c.RevokeShare(ctx, 1, "x@y.z")
	if err != nil || msg != "Access revoked" {
		t.Fatalf("RevokeShare = %q, %v", msg, err)
	}
	_, err = c.DeleteArtifact(ctx, 3)
	var me *MutationError
	if !errors.As(err, &me) || me.Error() != "File is locked" {
		t.Fatalf("expected server message, got %v", err)
	}
	_, err = c.DeleteArtifact(ctx, 4)
	if !errors.As(err, &me) || !strings.Contains(me.Error(), "delete failed") {
		t.Fatalf("expected generic failure, got %v", err)
	}
}

func TestRefusedMutations_KeepServerReason(t *testing.T) {
	c, holder := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/files/delete/5", "/api/files/revoke":
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, "Unauthorized: You do not own this file")
		case "/api/files/delete/6":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, "expired")
		}
	}), "tok")
	ctx := context.Background()

	_, err := c.DeleteArtifact(ctx, 5)
	var me *MutationError
	if !errors.As(err, &me) || me.Message != "Unauthorized: You do not own this file" || me.StatusCode != http.StatusForbidden {
		t.Fatalf("delete: expected MutationError with server reason, got %v", err)
	}
	_, err = c.RevokeShare(ctx, 5, "x@y.z")
	if !errors.As(err, &me) || me.Message != "Unauthorized: You do not own this file" {
		t.Fatalf("revoke: expected MutationError with server reason, got %v", err)
	}
	_, err = c.DeleteArtifact(ctx, 6)
	if !errors.Is(err, ErrAuthorizationDenied) || IsSessionEnding(err) {
		t.Fatalf("silent 403: expected artifact denial, got %v", err)
	}
	if _, ok := holder.Get(); !ok {
		t.Fatalf("artifact refusals must keep the session")
	}

	_, err = c.DeleteArtifact(ctx, 7)
	if !errors.Is(err, ErrAuthorizationDenied) || !IsSessionEnding(err) {
		t.Fatalf("401: expected session-ending denial, got %v", err)
	}
}

func TestUploadArtifact(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		if hdr.Filename != "song.mp3" || string(b) != "ID3" {
			t.Errorf("unexpected upload %s %q", hdr.Filename, b)
		}
		fmt.Fprint(w, "File uploaded successfully")
	}), "tok")

	msg, err := c.UploadArtifact(context.Background(), "/tmp/song.mp3", strings.NewReader("ID3"))
	if err != nil || msg != "File uploaded successfully" {
		t.Fatalf("UploadArtifact = %q, %v", msg, err)
	}
	if _, err := c.UploadArtifact(context.Background(), "x.exe", strings.NewReader("MZ")); err == nil {
		t.Fatalf("expected pre-flight rejection")
	}
}

func TestLogin_StoresCredential(t *testing.T) {
	c, holder := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected login request %s auth=%q", r.URL.Path, r.Header.Get("Authorization"))
		}
		if !strings.Contains(r.Header.Get("Content-Type"), "json") {
			t.Errorf("login must send JSON")
		}
		fmt.Fprint(w, "opaque-token\n")
	}), "")

	if err := c.Login(context.Background(), " me@example.com ", security.FromString("pw")); err != nil {
		t.Fatalf("Login: %v", err)
	}
	cred, ok := holder.Get()
	if !ok || cred.Reveal() != "opaque-token" {
		t.Fatalf("credential not stored")
	}
}

func TestLogin_Rejected(t *testing.T) {
	c, holder := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "Invalid email or password")
	}), "")

	err := c.Login(context.Background(), "me@example.com", security.FromString("bad"))
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Message != "Invalid email or password" {
		t.Fatalf("expected FetchError with message, got %v", err)
	}
	if _, ok := holder.Get(); ok {
		t.Fatalf("rejected login must not produce a credential")
	}
}

func TestServerMessage(t *testing.T) {
	tests := map[string]string{
		`{"message":"nope"}`: "nope",
		`{"error":"bad"}`:    "bad",
		`"quoted"`:           "quoted",
		"  plain text \n":    "plain text",
		"":                   "",
		`{"unrelated":true}`: `{"unrelated":true}`,
	}
	for in, want := range tests {
		if got := serverMessage([]byte(in)); got != want {
			t.Errorf("serverMessage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractCredential(t *testing.T) {
	for _, in := range []string{"abc", `"abc"`, `{"token":"abc"}`, " abc\n"} {
		if got := extractCredential([]byte(in)); got.Reveal() != "abc" {
			t.Errorf("extractCredential(%q) = %q", in, got.Reveal())
		}
	}
}
