// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sentinel-vault/sentinel/internal/logging"
	"github.com/sentinel-vault/sentinel/internal/render"
	"github.com/sentinel-vault/sentinel/internal/token"
)

// maxTokenBytes bounds a downloaded .sntl file.
const maxTokenBytes = 1 << 30

// Actions runs the view, token and verify flows against one viewer surface.
type Actions struct {
	Session Credentials
	Fetcher Fetcher
	Surface *render.Session
	Viewer  Presenter
	Ledger  Ledger
	Names   Names
}

// ViewArtifact fetches id and returns a live handle on the surface. Without a
// session it returns session.ErrSessionMissing and the surface is untouched.
func (a *Actions) ViewArtifact(ctx context.Context, id int64, name string) (*render.Handle, error) {
	cred, err := a.Session.Require()
	if err != nil {
		return nil, err
	}
	cred.Zero()
	if name == "" {
		name = a.displayName(ctx, id)
	}
	return a.Surface.Open(ctx, name, func(ctx context.Context) (render.Payload, error) {
		s, err := a.Fetcher.FetchPlaintext(ctx, id)
		if err != nil {
			return render.Payload{}, err
		}
		return render.Payload{MediaType: s.MediaType, Body: s.Body}, nil
	})
}

// Present shows h and releases it on every exit path.
func (a *Actions) Present(ctx context.Context, h *render.Handle) error {
	defer h.Close()
	return a.Viewer.Present(ctx, h)
}

// OpenToken decodes a .sntl file name and views the artifact it names. A bad
// name is rejected before any request.
func (a *Actions) OpenToken(ctx context.Context, path string) (*render.Handle, error) {
	n, err := token.Decode(path)
	if err != nil {
		return nil, err
	}
	logging.Debugf("token %s names artifact %d", filepath.Base(path), n.ArtifactID)
	return a.ViewArtifact(ctx, n.ArtifactID, n.OriginalName)
}

// FetchedToken describes a token written by FetchToken.
type FetchedToken struct {
	Path   string
	Name   token.Name
	Digest string
	Size   int64
}

// FetchToken downloads the encrypted token of id into dir under its encoded
// name and records its digest.
func (a *Actions) FetchToken(ctx context.Context, id int64, dir string) (*FetchedToken, error) {
	s, err := a.Fetcher.FetchToken(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.Body.Close()

	data, err := io.ReadAll(io.LimitReader(s.Body, maxTokenBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}
	if len(data) > maxTokenBytes {
		return nil, fmt.Errorf("token for artifact %d exceeds %d bytes", id, maxTokenBytes)
	}

	fileName, err := a.tokenFileName(ctx, id, s.SuggestedName)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fileName)
	if err := writeFileAtomic(path, data); err != nil {
		return nil, err
	}

	out := &FetchedToken{Path: path, Size: int64(len(data))}
	out.Name, _ = token.Decode(fileName)
	if a.Ledger != nil {
		sum, err := a.Ledger.RecordToken(ctx, id, fileName, data)
		if err != nil {
			logging.Warnf("could not record token digest: %v", err)
		}
		out.Digest = sum
	} else {
		out.Digest = token.Digest(data)
	}
	return out, nil
}

// tokenFileName prefers the vault's suggested name when it names the same
// artifact, then the cached original name.
func (a *Actions) tokenFileName(ctx context.Context, id int64, suggested string) (string, error) {
	if suggested != "" {
		if n, err := token.Decode(suggested); err == nil && n.ArtifactID == id {
			return suggested, nil
		}
		logging.Debugf("ignoring suggested token name %q for artifact %d", suggested, id)
	}
	return token.Encode(a.displayName(ctx, id), id)
}

func (a *Actions) displayName(ctx context.Context, id int64) string {
	if a.Names != nil {
		if d, ok := a.Names.Lookup(ctx, id); ok && d.FileName != "" {
			return d.FileName
		}
	}
	return fmt.Sprintf("artifact-%d", id)
}

// Verification is the result of VerifyToken.
type Verification struct {
	Name       token.Name
	Digest     string
	RecordedAt time.Time
}

// VerifyToken checks a token file against the digest recorded when it was
// fetched. Name errors come back as *token.DecodeError.
func (a *Actions) VerifyToken(ctx context.Context, path string) (*Verification, error) {
	n, err := token.Decode(path)
	if err != nil {
		return nil, err
	}
	if a.Ledger == nil {
		return nil, errors.New("no token ledger configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rec, err := a.Ledger.VerifyToken(ctx, n.ArtifactID, f)
	if err != nil {
		return nil, err
	}
	return &Verification{Name: n, Digest: rec.Digest, RecordedAt: rec.RecordedAt}, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".sentinel-*")
	if err != nil {
		return fmt.Errorf("creating token file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
