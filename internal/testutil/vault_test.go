// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package testutil

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestVault_RoutesAndCounts(t *testing.T) {
	v := NewVault(t, map[string]http.HandlerFunc{
		"GET /api/files": JSON(`[]`),
	})
	v.Handle("DELETE /api/files/delete/1", Text(http.StatusOK, "File deleted"))

	get := func(method, path string) (int, string) {
		req, _ := http.NewRequest(method, v.URL+path, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(b)
	}

	if code, body := get(http.MethodGet, "/api/files"); code != 200 || body != "[]" {
		t.Fatalf("list: %d %q", code, body)
	}
	if code, body := get(http.MethodDelete, "/api/files/delete/1"); code != 200 || body != "File deleted" {
		t.Fatalf("delete: %d %q", code, body)
	}
	if code, _ := get(http.MethodPost, "/api/files"); code != http.StatusNotFound {
		t.Fatalf("unknown route should 404, got %d", code)
	}
	if v.Hits() != 3 {
		t.Fatalf("expected 3 hits, got %d", v.Hits())
	}
}

func TestMemoryDSN_Unique(t *testing.T) {
	a, b := MemoryDSN(t), MemoryDSN(t)
	if a == b || !strings.Contains(a, "mode=memory") {
		t.Fatalf("unexpected DSNs %q %q", a, b)
	}
}
