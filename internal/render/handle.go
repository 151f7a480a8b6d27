// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package render

import (
	"io"
	"sync"

	"github.com/sentinel-vault/sentinel/internal/media"
	"github.com/sentinel-vault/sentinel/internal/secret"
)

// Handle is a revocable view of one decrypted artifact. After Close every
// reader obtained from it fails with secret.ErrClosed.
type Handle struct {
	session   *Session
	kind      media.Kind
	name      string
	mediaType string
	buf       *secret.Buffer

	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	onClose []func()
}

func (h *Handle) Kind() media.Kind  { return h.kind }
func (h *Handle) Name() string      { return h.name }
func (h *Handle) MediaType() string { return h.mediaType }
func (h *Handle) Size() int64       { return int64(h.buf.Len()) }

// Reader returns an independent reader over the plaintext.
func (h *Handle) Reader() *io.SectionReader {
	return io.NewSectionReader(h.buf, 0, int64(h.buf.Len()))
}

// Done is closed once the handle has been released.
func (h *Handle) Done() <-chan struct{} { return h.done }

// OnClose runs fn when the handle is released, or immediately if it already
// was.
func (h *Handle) OnClose(fn func()) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		fn()
		return
	}
	h.onClose = append(h.onClose, fn)
	h.mu.Unlock()
}

// Close returns the handle to its session. Safe to call more than once.
func (h *Handle) Close() error {
	h.session.Close(h)
	return nil
}

func (h *Handle) release() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	hooks := h.onClose
	h.onClose = nil
	h.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	_ = h.buf.Close()
	close(h.done)
}
