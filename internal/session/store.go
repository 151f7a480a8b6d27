// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/sentinel-vault/sentinel/internal/security"
)

// Store persists the credential between invocations.
type Store interface {
	Load() (security.Secret, error)
	Save(security.Secret) error
	Delete() error
}

// MemoryStore is a concurrency-safe in-process mailbox. It keeps a copy so the
// caller's slice is never retained.
type MemoryStore struct {
	mu    sync.RWMutex
	value security.Secret
}

// NewMemoryStore returns an empty store. Pass an initial credential to seed it.
func NewMemoryStore(initial ...security.Secret) *MemoryStore {
	m := &MemoryStore{}
	if len(initial) > 0 && !initial[0].IsZero() {
		m.value = security.FromBytes(initial[0])
	}
	return m
}

func (m *MemoryStore) Load() (security.Secret, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.value == nil {
		return nil, nil
	}
	return security.FromBytes(m.value), nil
}

func (m *MemoryStore) Save(s security.Secret) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value.Zero()
	m.value = security.FromBytes(s)
	return nil
}

// Delete securely wipes the stored value.
func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value.Zero()
	m.value = nil
	return nil
}

// FileStore keeps the credential in a single 0600 file.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load() (security.Secret, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s := security.FromString(string(data))
	raw := security.Secret(data)
	raw.Zero()
	if s.IsZero() {
		return nil, nil
	}
	return s, nil
}

// Save writes through a temp file so a crash never leaves a torn credential.
func (f *FileStore) Save(s security.Secret) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("could not create session directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(s); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, f.path)
}

func (f *FileStore) Delete() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

type envCredential struct {
	Credential string `env:"SENTINEL_CREDENTIAL"`
}

// LoadEnv reads a non-interactive credential from SENTINEL_CREDENTIAL. The
// value is never written to the config file or the session file.
func LoadEnv() (security.Secret, bool, error) {
	var raw envCredential
	if err := env.Parse(&raw); err != nil {
		return nil, false, fmt.Errorf("parse credential env: %w", err)
	}
	s := security.FromString(raw.Credential)
	if s.IsZero() {
		return nil, false, nil
	}
	return s, true, nil
}
