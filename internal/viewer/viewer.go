// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package viewer presents render handles to the user without writing
// plaintext to disk. A handle is either piped into an external player or
// served from a loopback HTTP endpoint that a browser opens.
package viewer

import (
	"context"
	"fmt"

	"github.com/sentinel-vault/sentinel/internal/media"
	"github.com/sentinel-vault/sentinel/internal/render"
)

// Target shows one handle. Present blocks until the viewer is finished, the
// handle is closed, or ctx is done. It never closes the handle itself.
type Target interface {
	Present(ctx context.Context, h *render.Handle) error
	Describe() string
}

// Router picks the target for a media kind.
type Router struct {
	targets  map[media.Kind]Target
	fallback Target
}

// NewRouter returns a router that sends every kind to fallback until Route
// overrides it.
func NewRouter(fallback Target) *Router {
	return &Router{targets: map[media.Kind]Target{}, fallback: fallback}
}

// Route assigns t to kind. A nil t restores the fallback.
func (r *Router) Route(kind media.Kind, t Target) {
	if t == nil {
		delete(r.targets, kind)
		return
	}
	r.targets[kind] = t
}

// For returns the target for kind.
func (r *Router) For(kind media.Kind) Target {
	if t, ok := r.targets[kind]; ok {
		return t
	}
	return r.fallback
}

// Present routes h by its kind.
func (r *Router) Present(ctx context.Context, h *render.Handle) error {
	t := r.For(h.Kind())
	if t == nil {
		return fmt.Errorf("no viewer configured for %s", h.Kind())
	}
	return t.Present(ctx, h)
}

// Pipes returns the external-command targets currently routed.
func (r *Router) Pipes() []*PipeTarget {
	var out []*PipeTarget
	for _, t := range r.targets {
		if p, ok := t.(*PipeTarget); ok {
			out = append(out, p)
		}
	}
	return out
}

// Commands are the configured external viewers per kind. Empty entries use
// the browser.
type Commands struct {
	Document string
	Video    string
	Audio    string
}

// NewRouterFromCommands wires a router from configuration.
func NewRouterFromCommands(cmds Commands, browser Target) (*Router, error) {
	r := NewRouter(browser)
	for kind, line := range map[media.Kind]string{
		media.Document: cmds.Document,
		media.Video:    cmds.Video,
		media.Audio:    cmds.Audio,
	} {
		if line == "" {
			continue
		}
		pt, err := ParsePipeTarget(line)
		if err != nil {
			return nil, fmt.Errorf("viewer for %s: %w", kind, err)
		}
		r.Route(kind, pt)
	}
	return r, nil
}
