// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sentinel-vault/sentinel/internal/media"
)

// Descriptor is the vault's metadata for one artifact.
type Descriptor struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	UploadTime time.Time `json:"uploadTime"`
}

// timestampLayouts are the encodings the vault uses for uploadTime. Zone-less
// values are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         int64           `json:"id"`
		FileName   string          `json:"fileName"`
		FileType   string          `json:"fileType"`
		UploadTime json.RawMessage `json:"uploadTime"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, err := parseTimestamp(raw.UploadTime)
	if err != nil {
		return fmt.Errorf("artifact %d: %w", raw.ID, err)
	}
	*d = Descriptor{ID: raw.ID, FileName: raw.FileName, FileType: raw.FileType, UploadTime: ts}
	return nil
}

func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}
	// Some server configurations emit LocalDateTime as [y,m,d,h,min,s,nanos].
	if raw[0] == '[' {
		var parts []int
		if err := json.Unmarshal(raw, &parts); err != nil {
			return time.Time{}, fmt.Errorf("invalid uploadTime %s: %w", raw, err)
		}
		for len(parts) < 7 {
			parts = append(parts, 0)
		}
		return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], parts[6], time.UTC), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("invalid uploadTime %s: %w", raw, err)
	}
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised uploadTime %q", s)
}

// Stream is a response body together with the metadata needed to route it.
// The caller owns Body and must close it.
type Stream struct {
	MediaType string
	// SuggestedName is the filename from Content-Disposition, if any.
	SuggestedName string
	// Length is -1 when the vault did not announce it.
	Length int64
	Body   io.ReadCloser
}

// ListArtifacts returns the artifacts visible to the current user in the
// vault's order.
func (c *Client) ListArtifacts(ctx context.Context) ([]Descriptor, error) {
	resp, err := c.authorized(ctx, request{op: "list artifacts", method: http.MethodGet, path: "/api/files", scope: accountScope})
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		code, msg := failure(resp)
		return nil, &FetchError{Op: "list artifacts", StatusCode: code, Message: msg}
	}
	defer resp.Body.Close()

	var out []Descriptor
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &FetchError{Op: "list artifacts", StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding listing: %w", err)}
	}
	return out, nil
}

// FetchPlaintext opens the decrypted bytes of an artifact. The vault's
// declared media type is carried unchanged on the stream.
func (c *Client) FetchPlaintext(ctx context.Context, id int64) (*Stream, error) {
	return c.fetch(ctx, "fetch artifact", "/api/files/download/"+strconv.FormatInt(id, 10))
}

// FetchToken opens the encrypted token form of an artifact.
func (c *Client) FetchToken(ctx context.Context, id int64) (*Stream, error) {
	return c.fetch(ctx, "fetch token", "/api/files/download-sntl/"+strconv.FormatInt(id, 10))
}

func (c *Client) fetch(ctx context.Context, op, path string) (*Stream, error) {
	resp, err := c.authorized(ctx, request{op: op, method: http.MethodGet, path: path, scope: artifactScope})
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		code, msg := failure(resp)
		if code == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, &FetchError{Op: op, StatusCode: code, Message: msg}
	}
	return &Stream{
		MediaType:     resp.Header.Get("Content-Type"),
		SuggestedName: dispositionName(resp.Header.Get("Content-Disposition")),
		Length:        resp.ContentLength,
		Body:          resp.Body,
	}, nil
}

func dispositionName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return filepath.Base(params["filename"])
}

// DeleteArtifact removes an artifact and returns the vault's confirmation.
func (c *Client) DeleteArtifact(ctx context.Context, id int64) (string, error) {
	resp, err := c.authorized(ctx, request{
		op:     "delete",
		method: http.MethodDelete,
		path:   "/api/files/delete/" + strconv.FormatInt(id, 10),
		scope:  artifactScope,
	})
	if err != nil {
		return "", refusedMutation("delete", err)
	}
	code, msg := failure(resp)
	if !isSuccess(code) {
		if code == http.StatusNotFound && msg == "" {
			return "", fmt.Errorf("delete: %w", ErrNotFound)
		}
		return "", &MutationError{Op: "delete", StatusCode: code, Message: msg}
	}
	return msg, nil
}

// UploadArtifact sends a new artifact as the multipart field "file". The
// name must carry one of media.UploadExtensions; anything else is refused
// before a request is made.
func (c *Client) UploadArtifact(ctx context.Context, name string, content io.Reader) (string, error) {
	if err := media.CheckUpload(name); err != nil {
		return "", err
	}
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	contentType := mw.FormDataContentType()

	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(name))
		if err == nil {
			_, err = io.Copy(part, content)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	resp, err := c.authorized(ctx, request{
		op:          "upload",
		method:      http.MethodPost,
		path:        "/api/files/upload",
		body:        pr,
		contentType: contentType,
		scope:       accountScope,
	})
	if err != nil {
		pr.CloseWithError(err)
		return "", err
	}
	code, msg := failure(resp)
	if !isSuccess(code) {
		return "", &MutationError{Op: "upload", StatusCode: code, Message: msg}
	}
	return msg, nil
}

// IsSessionEnding reports whether err cleared the session.
func IsSessionEnding(err error) bool {
	var denied *DeniedError
	return errors.As(err, &denied) && denied.SessionEnded
}
