// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	appDir   = "sentinel"
	fileName = "sentinel"
)

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Sentinel")
		default: // Linux, macOS, etc.
			configDir = "/etc/sentinel"
		}
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(dir, appDir)
	}

	return filepath.Join(configDir, fileName+".yaml"), nil
}

// LoadConfig resolves T from, in increasing precedence: defaults, the first
// sentinel.yaml found (user dir, system dir, working dir) or the explicit
// file, SENTINEL_* environment variables, and flags set on cmd. A flag named
// "vault-url" feeds the key "vault.url".
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	if explicitFile != nil && *explicitFile != "" {
		v.SetConfigFile(*explicitFile)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; a broken one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	v.SetEnvPrefix("sentinel")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		var bindErr error
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if bindErr != nil {
				return
			}
			key := strings.ReplaceAll(f.Name, "-", ".")
			if _, known := defaults[key]; !known {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return c, bindErr
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}

// FindConfigFile returns the first sentinel.yaml LoadConfig would read
// without an explicit file.
func FindConfigFile() (string, bool) {
	var dirs []string
	if p, err := GetConfigPath(false); err == nil {
		dirs = append(dirs, filepath.Dir(p))
	}
	if p, err := GetConfigPath(true); err == nil {
		dirs = append(dirs, filepath.Dir(p))
	}
	dirs = append(dirs, ".")
	for _, dir := range dirs {
		candidate := filepath.Join(dir, fileName+".yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// WriteConfigFile writes c as YAML to the user or system config path.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}
	return path, WriteConfigFileTo(c, path)
}

// WriteConfigFileTo writes c as YAML to path with 0600 permissions.
func WriteConfigFileTo[T any](c *T, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}
	return os.WriteFile(path, data, 0o600)
}
