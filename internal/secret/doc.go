// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package secret provides a memory buffer for decrypted artifact bytes.
//
// On Linux the buffer is allocated outside the Go heap via
// mmap(MAP_ANONYMOUS), excluded from core dumps via madvise(MADV_DONTDUMP)
// and, when the RLIMIT_MEMLOCK budget allows, locked into RAM so it cannot be
// swapped. Other platforms fall back to a heap slice. On every platform Close
// zeroes the contents, and reads after Close fail with ErrClosed.
package secret
