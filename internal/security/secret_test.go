// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package security

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestSecret_RedactsEverywhere(t *testing.T) {
	s := FromString("eyJhbGciOi.secret.value")

	for _, out := range []string{
		fmt.Sprintf("%v", s),
		fmt.Sprintf("%s", s),
		fmt.Sprintf("%#v", s),
		s.String(),
	} {
		if strings.Contains(out, "secret.value") {
			t.Fatalf("secret leaked through formatting: %q", out)
		}
	}

	b, err := json.Marshal(struct{ Token Secret }{s})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "secret.value") {
		t.Fatalf("secret leaked through json: %s", b)
	}
}

func TestSecret_FromStringTrims(t *testing.T) {
	s := FromString("  abc\n")
	if s.Reveal() != "abc" {
		t.Fatalf("expected trimmed value, got %q", s.Reveal())
	}
}

func TestSecret_ZeroAndEqual(t *testing.T) {
	a := FromBytes([]byte("token"))
	b := FromBytes([]byte("token"))
	if !a.Equal(b) {
		t.Fatalf("expected equal secrets")
	}
	a.Zero()
	for _, c := range a {
		if c != 0 {
			t.Fatalf("expected zeroed bytes, got %v", []byte(a))
		}
	}
	if a.Equal(b) {
		t.Fatalf("zeroed secret must not equal original")
	}

	var nilSecret *Secret
	nilSecret.Zero() // must not panic
}

func TestSecret_BytesIsCopy(t *testing.T) {
	s := FromString("abc")
	cp := s.Bytes()
	cp[0] = 'x'
	if s.Reveal() != "abc" {
		t.Fatalf("Bytes must return a copy")
	}
}
