// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package i18n provides the translated user-facing strings of Sentinel.
// Translation files are embedded YAML loaded through go-i18n.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	mu        sync.RWMutex
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	current   string
)

// Init loads every embedded locale and selects lang. Unknown languages fall
// back to English message by message.
func Init(lang string) {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			continue
		}
		_, _ = b.ParseMessageFileBytes(data, f.Name())
	}

	mu.Lock()
	bundle = b
	localizer = i18n.NewLocalizer(b, lang, "en")
	current = lang
	mu.Unlock()
}

// SetLang changes the active language.
func SetLang(lang string) { Init(lang) }

// GetLang returns the active language tag.
func GetLang() string {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// GetAvailableLocales maps each embedded locale tag to its display name in
// that language.
func GetAvailableLocales() map[string]string {
	ensure()
	mu.RLock()
	tags := bundle.LanguageTags()
	mu.RUnlock()

	out := make(map[string]string, len(tags))
	for _, tag := range tags {
		name := display.Self.Name(tag)
		if name == "" {
			name = tag.String()
		}
		out[tag.String()] = name
	}
	return out
}

// SortedLocales returns the available locale tags in a stable order.
func SortedLocales() []string {
	av := GetAvailableLocales()
	out := make([]string, 0, len(av))
	for k := range av {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func ensure() {
	mu.RLock()
	ready := localizer != nil
	mu.RUnlock()
	if !ready {
		Init("en")
	}
}

// T translates messageID. A single map argument is used as template data;
// any other arguments are applied with fmt.Sprintf. An unknown ID is
// returned unchanged.
func T(messageID string, args ...any) string {
	ensure()
	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(args) == 1 {
		if data, ok := args[0].(map[string]any); ok {
			cfg.TemplateData = data
			args = nil
		}
	}

	mu.RLock()
	l := localizer
	mu.RUnlock()
	msg, err := l.Localize(cfg)
	if err != nil {
		msg = messageID
	}
	if len(args) > 0 && strings.Contains(msg, "%") {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
