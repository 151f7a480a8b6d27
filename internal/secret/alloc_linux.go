// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

//go:build linux

package secret

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// allocate maps anonymous memory outside the Go heap. Locking is best effort:
// media files routinely exceed RLIMIT_MEMLOCK, and an unlocked mapping that is
// still excluded from core dumps beats refusing to show the artifact.
func allocate(size int) ([]byte, bool, func([]byte) error, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, false, nil, fmt.Errorf("secret: mmap failed: %w", err)
	}

	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		_ = unix.Munmap(data)
		return nil, false, nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP) failed: %w", err)
	}

	locked := unix.Mlock(data) == nil

	release := func(region []byte) error {
		var firstError error
		if locked {
			if err := unix.Munlock(region); err != nil {
				firstError = fmt.Errorf("secret: munlock failed: %w", err)
			}
		}
		if err := unix.Munmap(region); err != nil && firstError == nil {
			firstError = fmt.Errorf("secret: munmap failed: %w", err)
		}
		return firstError
	}
	return data, locked, release, nil
}
