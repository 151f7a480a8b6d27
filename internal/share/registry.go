// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package share manages who may read an artifact. The local grantee list is
// only ever replaced by a fresh listing from the vault, never patched.
package share

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sentinel-vault/sentinel/internal/logging"
)

// ErrNotConfirmed is returned when the user declines a revoke.
var ErrNotConfirmed = errors.New("share: revoke not confirmed")

// Gateway is the part of the vault client the registry needs.
type Gateway interface {
	ListShares(ctx context.Context, id int64) ([]string, error)
	GrantShare(ctx context.Context, id int64, grantee string) (string, error)
	RevokeShare(ctx context.Context, id int64, grantee string) (string, error)
}

// Confirmer asks the user before a destructive call.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// AlwaysConfirm is used when the user already agreed, e.g. --yes.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Outcome is the result of a successful mutation. RefreshErr reports a failed
// follow-up listing; it never turns the mutation into a failure.
type Outcome struct {
	Message    string
	Grantees   []string
	RefreshErr error
}

// Registry tracks grantees per artifact.
type Registry struct {
	gw Gateway

	mu        sync.Mutex
	snapshots map[int64][]string
}

func NewRegistry(gw Gateway) *Registry {
	return &Registry{gw: gw, snapshots: map[int64][]string{}}
}

// List fetches the grantees of id in vault order and records them.
func (r *Registry) List(ctx context.Context, id int64) ([]string, error) {
	grantees, err := r.gw.ListShares(ctx, id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.snapshots[id] = append([]string(nil), grantees...)
	r.mu.Unlock()
	return grantees, nil
}

// Snapshot returns the last listing of id without contacting the vault.
func (r *Registry) Snapshot(id int64) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.snapshots[id]
	if !ok {
		return nil, false
	}
	return append([]string(nil), g...), true
}

// Forget drops the recorded listing of id.
func (r *Registry) Forget(id int64) {
	r.mu.Lock()
	delete(r.snapshots, id)
	r.mu.Unlock()
}

// Grant gives grantee access to id. A vault refusal comes back as
// *vault.ShareRejectedError and leaves the snapshot alone.
func (r *Registry) Grant(ctx context.Context, id int64, grantee string) (Outcome, error) {
	grantee = strings.TrimSpace(grantee)
	if grantee == "" {
		return Outcome{}, errors.New("share: grantee is required")
	}
	msg, err := r.gw.GrantShare(ctx, id, grantee)
	if err != nil {
		return Outcome{}, err
	}
	logging.Infof("granted %s access to artifact %d", grantee, id)
	return r.refresh(ctx, id, msg), nil
}

// Revoke withdraws grantee's access to id after c confirms.
func (r *Registry) Revoke(ctx context.Context, id int64, grantee string, c Confirmer) (Outcome, error) {
	grantee = strings.TrimSpace(grantee)
	if grantee == "" {
		return Outcome{}, errors.New("share: grantee is required")
	}
	if c == nil {
		return Outcome{}, ErrNotConfirmed
	}
	ok, err := c.Confirm(ctx, fmt.Sprintf("Revoke access for %s to artifact %d?", grantee, id))
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{}, ErrNotConfirmed
	}
	msg, err := r.gw.RevokeShare(ctx, id, grantee)
	if err != nil {
		return Outcome{}, err
	}
	logging.Infof("revoked %s access to artifact %d", grantee, id)
	return r.refresh(ctx, id, msg), nil
}

func (r *Registry) refresh(ctx context.Context, id int64, msg string) Outcome {
	out := Outcome{Message: msg}
	grantees, err := r.List(ctx, id)
	if err != nil {
		logging.Warnf("refreshing shares of artifact %d: %v", id, err)
		out.RefreshErr = err
		return out
	}
	out.Grantees = grantees
	return out
}
