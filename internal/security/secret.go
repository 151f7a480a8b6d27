// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package security holds small helpers for handling sensitive values such as
// the vault bearer credential.
package security

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const redacted = "[SECRET]"

// Secret is a thin wrapper around a byte slice intended to hold sensitive
// material (bearer credentials, passwords). It implements redaction helpers so
// accidental formatting or JSON marshaling does not reveal data.
type Secret []byte

// String redacts the secret for fmt.Print* convenience.
func (s Secret) String() string { return redacted }

// Format implements fmt.Formatter to ensure `%v`, `%#v` and friends are redacted.
func (s Secret) Format(f fmt.State, c rune) {
	_, _ = io.WriteString(f, redacted)
}

// MarshalJSON redacts secrets in JSON marshaling.
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

// MarshalText redacts secrets for text encoding.
func (s Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// Bytes returns a copy of the underlying bytes. Callers are responsible for
// zeroing sensitive copies when done.
func (s Secret) Bytes() []byte {
	out := make([]byte, len(s))
	copy(out, s)
	return out
}

// Reveal returns the secret as a string. Only use it at the boundary where
// the raw value must leave the process (an Authorization header).
func (s Secret) Reveal() string { return string(s) }

// IsZero reports whether the secret holds no material.
func (s Secret) IsZero() bool { return len(s) == 0 }

// Equal compares two secrets in constant time.
func (s Secret) Equal(other Secret) bool {
	return subtle.ConstantTimeCompare(s, other) == 1
}

// Zero overwrites the underlying byte slice with zeros.
func (s *Secret) Zero() {
	if s == nil || *s == nil {
		return
	}
	for i := range *s {
		(*s)[i] = 0
	}
}

// FromString creates a Secret from a string input. Surrounding whitespace is
// dropped because credentials frequently arrive with a trailing newline.
func FromString(in string) Secret { return Secret([]byte(strings.TrimSpace(in))) }

// FromBytes creates a Secret from bytes (it makes a copy).
func FromBytes(in []byte) Secret {
	out := make([]byte, len(in))
	copy(out, in)
	return Secret(out)
}
