// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package secret

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrClosed is returned by reads on a buffer that has been closed.
var ErrClosed = errors.New("secret: buffer closed")

// Buffer holds plaintext that must never be persisted. A Buffer must not be
// copied after creation; call Close to zero and release it.
type Buffer struct {
	mu      sync.Mutex
	data    []byte
	length  int
	locked  bool
	closed  bool
	release func([]byte) error
}

// NewFromBytes creates a buffer from existing data. The source bytes are
// copied into the protected region and then zeroed in place, so the caller's
// slice no longer holds the plaintext.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}

	data, locked, release, err := allocate(len(source))
	if err != nil {
		return nil, err
	}
	copy(data, source)
	Zero(source)

	return &Buffer{
		data:    data,
		length:  len(source),
		locked:  locked,
		release: release,
	}, nil
}

// ReadAt implements io.ReaderAt over the buffer contents.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("secret: negative offset %d", off)
	}
	if off >= int64(b.length) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:b.length])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Len returns the size of the data.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.length
}

// Locked reports whether the memory is pinned against swapping.
func (b *Buffer) Locked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.locked
}

// Closed reports whether Close has been called.
func (b *Buffer) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.closed
}

// Close zeroes the contents and releases the memory. Close is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	Zero(b.data)
	var err error
	if b.release != nil {
		err = b.release(b.data)
	}
	b.data = nil
	return err
}

// Zero overwrites a byte slice with zeros.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
