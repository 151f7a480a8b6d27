// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package secret

import (
	"errors"
	"io"
	"testing"
)

func TestNewFromBytes_ZeroesSource(t *testing.T) {
	src := []byte("%PDF-1.7 plaintext")
	b, err := NewFromBytes(src)
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer func() { _ = b.Close() }()

	for i, c := range src {
		if c != 0 {
			t.Fatalf("source byte %d not zeroed", i)
		}
	}
	if b.Len() != len(src) {
		t.Fatalf("expected length %d, got %d", len(src), b.Len())
	}

	got, err := io.ReadAll(io.NewSectionReader(b, 0, int64(b.Len())))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "%PDF-1.7 plaintext" {
		t.Fatalf("unexpected contents %q", got)
	}
}

func TestNewFromBytes_RejectsEmpty(t *testing.T) {
	if _, err := NewFromBytes(nil); err == nil {
		t.Fatalf("expected error for empty source")
	}
}

func TestClose_RevokesReads(t *testing.T) {
	b, err := NewFromBytes([]byte("abc"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
	if !b.Closed() {
		t.Fatalf("expected Closed() after Close")
	}

	p := make([]byte, 3)
	if _, err := b.ReadAt(p, 0); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestReadAt_Bounds(t *testing.T) {
	b, err := NewFromBytes([]byte("abcdef"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer func() { _ = b.Close() }()

	p := make([]byte, 4)
	n, err := b.ReadAt(p, 4)
	if n != 2 || err != io.EOF {
		t.Fatalf("expected short read with EOF, got n=%d err=%v", n, err)
	}
	if string(p[:n]) != "ef" {
		t.Fatalf("unexpected tail %q", p[:n])
	}
	if _, err := b.ReadAt(p, 6); err != io.EOF {
		t.Fatalf("expected EOF at end, got %v", err)
	}
	if _, err := b.ReadAt(p, -1); err == nil {
		t.Fatalf("expected error for negative offset")
	}
}
