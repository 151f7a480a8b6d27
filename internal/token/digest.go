// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package token

import (
	"encoding/hex"
	"io"

	"golang.org/x/crypto/blake2b"
)

// Digest returns the hex blake2b-256 digest of token bytes. It is recorded
// locally when a token is fetched so a later verify can detect a swapped or
// truncated file; the name convention itself carries no checksum.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DigestReader streams r through blake2b-256.
func DigestReader(r io.Reader) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
