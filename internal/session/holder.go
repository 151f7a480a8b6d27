// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sentinel-vault/sentinel/internal/logging"
	"github.com/sentinel-vault/sentinel/internal/security"
)

// ErrSessionMissing is returned when an operation needs a credential and none
// is held. Callers redirect to login; it is never a server error.
var ErrSessionMissing = errors.New("session: no credential, login required")

// ErrOpaqueCredential is returned by Claims when the credential is not a JWT.
var ErrOpaqueCredential = errors.New("session: credential carries no readable claims")

// ClearReason records why a credential was destroyed.
type ClearReason int

const (
	ReasonLogout ClearReason = iota + 1
	ReasonDenied
	ReasonExpired
)

func (r ClearReason) String() string {
	switch r {
	case ReasonLogout:
		return "logout"
	case ReasonDenied:
		return "denied"
	case ReasonExpired:
		return "expired"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Claims are the parts of a JWT credential the client displays. They are read
// without verification; the vault verifies.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Holder owns the current credential and its persistence.
type Holder struct {
	mu        sync.RWMutex
	cred      security.Secret
	store     Store
	now       func() time.Time
	observers []func(ClearReason)
}

// NewHolder creates a holder backed by store and loads any persisted
// credential. A nil store keeps the credential in memory only.
func NewHolder(store Store) (*Holder, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	h := &Holder{store: store, now: time.Now}
	cred, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load session: %w", err)
	}
	h.cred = cred
	return h, nil
}

// SetClock overrides the time source used for expiry checks.
func (h *Holder) SetClock(now func() time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = now
}

// OnClear registers fn to run after the credential is destroyed.
func (h *Holder) OnClear(fn func(ClearReason)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, fn)
}

// Get returns a copy of the credential. An expired JWT credential counts as
// absent.
func (h *Holder) Get() (security.Secret, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.cred.IsZero() || h.expiredLocked() {
		return nil, false
	}
	return security.FromBytes(h.cred), true
}

// Require returns the credential or ErrSessionMissing. An expired credential
// is cleared on the way out so the next action starts from a clean state.
func (h *Holder) Require() (security.Secret, error) {
	h.mu.RLock()
	empty := h.cred.IsZero()
	expired := !empty && h.expiredLocked()
	h.mu.RUnlock()

	if empty {
		return nil, ErrSessionMissing
	}
	if expired {
		logging.Infof("session credential expired, clearing")
		if err := h.Clear(ReasonExpired); err != nil {
			logging.Warnf("could not clear expired session: %v", err)
		}
		return nil, ErrSessionMissing
	}

	cred, ok := h.Get()
	if !ok {
		return nil, ErrSessionMissing
	}
	return cred, nil
}

// Set replaces the credential and persists it. Only a successful login calls
// this.
func (h *Holder) Set(cred security.Secret) error {
	if cred.IsZero() {
		return errors.New("session: refusing to store an empty credential")
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.Save(cred); err != nil {
		return fmt.Errorf("could not persist session: %w", err)
	}
	h.cred.Zero()
	h.cred = security.FromBytes(cred)
	return nil
}

// Clear destroys the credential. Observers run after the lock is released.
func (h *Holder) Clear(reason ClearReason) error {
	h.mu.Lock()
	had := !h.cred.IsZero()
	h.cred.Zero()
	h.cred = nil
	err := h.store.Delete()
	observers := append([]func(ClearReason){}, h.observers...)
	h.mu.Unlock()

	if had {
		logging.Debugf("session cleared (%s)", reason)
	}
	for _, fn := range observers {
		fn(reason)
	}
	if err != nil {
		return fmt.Errorf("could not remove persisted session: %w", err)
	}
	return nil
}

// Claims decodes the credential's JWT claims without verifying them.
func (h *Holder) Claims() (Claims, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.cred.IsZero() {
		return Claims{}, ErrSessionMissing
	}
	return parseClaims(h.cred.Reveal())
}

func (h *Holder) expiredLocked() bool {
	c, err := parseClaims(h.cred.Reveal())
	if err != nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !h.now().Before(c.ExpiresAt)
}

func parseClaims(raw string) (Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &rc); err != nil {
		return Claims{}, ErrOpaqueCredential
	}
	var c Claims
	c.Subject = rc.Subject
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
