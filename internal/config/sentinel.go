// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the resolved client configuration. The credential is never part
// of it.
type Config struct {
	Vault    VaultConfig   `mapstructure:"vault" yaml:"vault"`
	Cache    CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Session  SessionConfig `mapstructure:"session" yaml:"session"`
	Viewer   ViewerConfig  `mapstructure:"viewer" yaml:"viewer"`
	Language string        `mapstructure:"language" yaml:"language"`
	Log      LogConfig     `mapstructure:"log" yaml:"log"`
}

type VaultConfig struct {
	URL     string `mapstructure:"url" yaml:"url"`
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
}

type CacheConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
}

type SessionConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// ViewerConfig holds an external command per media kind. Empty means the
// loopback browser viewer.
type ViewerConfig struct {
	Document string `mapstructure:"document" yaml:"document"`
	Video    string `mapstructure:"video" yaml:"video"`
	Audio    string `mapstructure:"audio" yaml:"audio"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// DefaultVaultURL is the vault address used when nothing is configured.
const DefaultVaultURL = "http://localhost:8080"

// Defaults returns the default value of every key.
func Defaults() map[string]any {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	return map[string]any{
		"vault.url":       DefaultVaultURL,
		"vault.timeout":   "30s",
		"cache.type":      "sqlite",
		"cache.dsn":       filepath.Join(cacheDir, appDir, "cache.db"),
		"session.file":    filepath.Join(configDir, appDir, "session"),
		"viewer.document": "",
		"viewer.video":    "",
		"viewer.audio":    "",
		"language":        "en",
		"log.level":       "info",
	}
}

// VaultTimeout parses Vault.Timeout, falling back to 30s when empty.
func (c Config) VaultTimeout() (time.Duration, error) {
	if strings.TrimSpace(c.Vault.Timeout) == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Vault.Timeout)
	if err != nil {
		return 0, fmt.Errorf("vault.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("vault.timeout must be positive, got %s", d)
	}
	return d, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if !strings.HasPrefix(c.Vault.URL, "http://") && !strings.HasPrefix(c.Vault.URL, "https://") {
		return fmt.Errorf("vault.url must start with http:// or https://, got %q", c.Vault.URL)
	}
	if _, err := c.VaultTimeout(); err != nil {
		return err
	}
	switch c.Cache.Type {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("cache.type must be sqlite, postgres or mysql, got %q", c.Cache.Type)
	}
	switch c.Language {
	case "", "en", "de":
	default:
		return fmt.Errorf("language %q is not supported", c.Language)
	}
	return nil
}
