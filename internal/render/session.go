// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package render owns decrypted artifact bytes while a viewer shows them.
//
// A Session is one viewer surface. It holds at most one live Handle; opening
// another closes the current one first, and closing the surface while a load
// is in flight makes that load's result disappear without ever becoming a
// handle.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sentinel-vault/sentinel/internal/logging"
	"github.com/sentinel-vault/sentinel/internal/media"
	"github.com/sentinel-vault/sentinel/internal/secret"
)

// DefaultMaxBytes caps how much plaintext one handle may hold.
const DefaultMaxBytes int64 = 1 << 30

var (
	// ErrSuperseded is returned by Open when a later Open or a Reset took
	// over the surface before the load finished.
	ErrSuperseded = errors.New("render: superseded by a newer request")
	// ErrEmpty is returned when the vault sent no bytes.
	ErrEmpty = errors.New("render: artifact is empty")
	// ErrTooLarge is returned when the plaintext exceeds the session limit.
	ErrTooLarge = errors.New("render: artifact exceeds the in-memory limit")
)

// State of a viewer surface.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Transition is delivered to observers after every state change.
type Transition struct {
	From, To State
	Err      error
}

// Payload is what a Loader hands back: a body and its declared media type.
type Payload struct {
	MediaType string
	Body      io.ReadCloser
}

// Loader performs the single fetch behind an Open.
type Loader func(ctx context.Context) (Payload, error)

// Session is one viewer surface.
type Session struct {
	mu        sync.Mutex
	maxBytes  int64
	gen       uint64
	state     State
	current   *Handle
	cancel    context.CancelFunc
	lastErr   error
	observers []func(Transition)
}

// NewSession returns an idle surface. maxBytes <= 0 selects DefaultMaxBytes.
func NewSession(maxBytes int64) *Session {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Session{maxBytes: maxBytes}
}

// OnTransition registers fn for every state change. Observers run outside
// the session lock, in registration order.
func (s *Session) OnTransition(fn func(Transition)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the live handle, or nil.
func (s *Session) Current() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// LastError returns the error of the most recent failed load. It survives the
// return to Idle so a surface can keep showing it.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Open loads a new representation for the surface. Any live handle is closed
// and any in-flight load is cancelled before load runs; the three steps
// fetch, classify and wrap happen strictly in that order.
func (s *Session) Open(ctx context.Context, displayName string, load Loader) (*Handle, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	var pending []Transition
	if s.cancel != nil {
		s.cancel()
	}
	if s.current != nil {
		prev := s.current
		s.current = nil
		prev.release()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.lastErr = nil
	pending = s.moveLocked(pending, Loading, nil)
	s.mu.Unlock()
	s.notify(pending)

	payload, err := load(loadCtx)
	var buf *secret.Buffer
	if err == nil {
		buf, err = s.capture(payload.Body)
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		cancel()
		if buf != nil {
			_ = buf.Close()
		}
		logging.Debugf("render: discarding late result for %q", displayName)
		return nil, ErrSuperseded
	}
	cancel()
	s.cancel = nil
	pending = pending[:0]
	if err != nil {
		s.lastErr = err
		pending = s.moveLocked(pending, Failed, err)
		pending = s.moveLocked(pending, Idle, err)
		s.mu.Unlock()
		s.notify(pending)
		return nil, err
	}
	h := &Handle{
		session:   s,
		kind:      media.Classify(payload.MediaType),
		name:      displayName,
		mediaType: payload.MediaType,
		buf:       buf,
		done:      make(chan struct{}),
	}
	s.current = h
	pending = s.moveLocked(pending, Ready, nil)
	s.mu.Unlock()
	s.notify(pending)
	logging.Debugf("render: %s ready as %s (%d bytes)", displayName, h.kind, buf.Len())
	return h, nil
}

// Close releases h. Closing a handle that is no longer current only revokes
// its bytes.
func (s *Session) Close(h *Handle) {
	if h == nil {
		return
	}
	s.mu.Lock()
	var pending []Transition
	if s.current == h {
		s.current = nil
		pending = s.moveLocked(pending, Idle, nil)
	}
	s.mu.Unlock()
	h.release()
	s.notify(pending)
}

// Reset tears the surface down: the live handle is closed and any in-flight
// load will resolve to ErrSuperseded.
func (s *Session) Reset() {
	s.mu.Lock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	prev := s.current
	s.current = nil
	var pending []Transition
	if s.state != Idle {
		pending = s.moveLocked(pending, Idle, nil)
	}
	s.mu.Unlock()
	if prev != nil {
		prev.release()
	}
	s.notify(pending)
}

func (s *Session) capture(body io.ReadCloser) (*secret.Buffer, error) {
	if body == nil {
		return nil, ErrEmpty
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		secret.Zero(data)
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		secret.Zero(data)
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return secret.NewFromBytes(data)
}

func (s *Session) moveLocked(pending []Transition, to State, err error) []Transition {
	if s.state == to {
		return pending
	}
	pending = append(pending, Transition{From: s.state, To: to, Err: err})
	s.state = to
	return pending
}

func (s *Session) notify(pending []Transition) {
	if len(pending) == 0 {
		return
	}
	s.mu.Lock()
	observers := append([]func(Transition){}, s.observers...)
	s.mu.Unlock()
	for _, tr := range pending {
		for _, fn := range observers {
			fn(tr)
		}
	}
}
