// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil holds test doubles shared by the front-end packages.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Vault is an httptest server answering the vault API from a route table
// keyed by "METHOD /path". Unknown routes get 404. Every request is counted.
type Vault struct {
	*httptest.Server

	hits   atomic.Int64
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
}

// NewVault starts a fake vault that is closed with the test.
func NewVault(t testing.TB, routes map[string]http.HandlerFunc) *Vault {
	t.Helper()
	v := &Vault{routes: map[string]http.HandlerFunc{}}
	for k, h := range routes {
		v.routes[k] = h
	}
	v.Server = httptest.NewServer(http.HandlerFunc(v.serve))
	t.Cleanup(v.Close)
	return v
}

func (v *Vault) serve(w http.ResponseWriter, r *http.Request) {
	v.hits.Add(1)
	v.mu.Lock()
	h, ok := v.routes[r.Method+" "+r.URL.Path]
	v.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

// Handle adds or replaces a route.
func (v *Vault) Handle(route string, h http.HandlerFunc) {
	v.mu.Lock()
	v.routes[route] = h
	v.mu.Unlock()
}

// Hits is the number of requests served so far.
func (v *Vault) Hits() int64 { return v.hits.Load() }

// Text answers with status and a plain-text body.
func Text(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

// JSON answers 200 with a JSON body.
func JSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

// Content answers 200 with body under the given media type.
func Content(mediaType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", mediaType)
		fmt.Fprint(w, body)
	}
}

// MemoryDSN returns an in-memory sqlite DSN private to the calling test.
func MemoryDSN(t testing.TB) string {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
}
