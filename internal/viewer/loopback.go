// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package viewer

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/webbrowser"

	"github.com/sentinel-vault/sentinel/internal/logging"
	"github.com/sentinel-vault/sentinel/internal/render"
)

const viewPrefix = "/view/"

// Loopback serves live handles on 127.0.0.1 under unguessable paths. A path
// stops resolving the moment its handle is closed.
type Loopback struct {
	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	handles  map[string]*render.Handle
}

// NewLoopback returns a stopped server; it starts on first Publish.
func NewLoopback() *Loopback {
	return &Loopback{handles: map[string]*render.Handle{}}
}

func (l *Loopback) startLocked() error {
	if l.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("starting loopback viewer: %w", err)
	}
	srv := &http.Server{
		Handler:           l,
		ReadHeaderTimeout: 10 * time.Second,
	}
	l.listener = ln
	l.server = srv
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warnf("loopback viewer stopped: %v", err)
		}
	}()
	return nil
}

// Publish makes h reachable and returns its URL. The URL is withdrawn when
// h closes.
func (l *Loopback) Publish(h *render.Handle) (*url.URL, error) {
	l.mu.Lock()
	if err := l.startLocked(); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	id := uuid.NewString()
	l.handles[id] = h
	addr := l.listener.Addr().String()
	l.mu.Unlock()

	h.OnClose(func() { l.unpublish(id) })
	return &url.URL{Scheme: "http", Host: addr, Path: viewPrefix + id}, nil
}

func (l *Loopback) unpublish(id string) {
	l.mu.Lock()
	delete(l.handles, id)
	l.mu.Unlock()
}

// Published reports how many handles are currently reachable.
func (l *Loopback) Published() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.handles)
}

func (l *Loopback) lookup(id string) (*render.Handle, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.handles[id]
	return h, ok
}

func (l *Loopback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := strings.CutPrefix(r.URL.Path, viewPrefix)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h, ok := l.lookup(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	hdr := w.Header()
	hdr.Set("Cache-Control", "no-store")
	hdr.Set("X-Content-Type-Options", "nosniff")
	hdr.Set("Referrer-Policy", "no-referrer")
	if h.MediaType() != "" {
		hdr.Set("Content-Type", h.MediaType())
	} else {
		hdr.Set("Content-Type", "application/octet-stream")
	}
	hdr.Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": h.Name()}))
	http.ServeContent(w, r, "", time.Time{}, h.Reader())
}

// Shutdown stops the server. Published handles are not closed.
func (l *Loopback) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	srv := l.server
	l.server = nil
	l.listener = nil
	l.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// BrowserTarget publishes a handle on a Loopback and opens it in the default
// browser.
type BrowserTarget struct {
	Loopback *Loopback
	// Open launches the browser; defaults to webbrowser.Open.
	Open func(*url.URL) error
	// Announce, if set, is told the URL before the browser is launched.
	Announce func(*url.URL)
}

func (b *BrowserTarget) Describe() string { return "browser" }

// Present publishes h and blocks until the handle closes or ctx is done.
func (b *BrowserTarget) Present(ctx context.Context, h *render.Handle) error {
	u, err := b.Loopback.Publish(h)
	if err != nil {
		return err
	}
	if b.Announce != nil {
		b.Announce(u)
	}
	open := b.Open
	if open == nil {
		open = webbrowser.Open
	}
	if err := open(u); err != nil {
		if errors.Is(err, webbrowser.ErrNoBrowser) {
			logging.Warnf("no browser available; open %s manually", u)
		} else {
			return fmt.Errorf("opening browser: %w", err)
		}
	}
	select {
	case <-h.Done():
	case <-ctx.Done():
	}
	return nil
}
