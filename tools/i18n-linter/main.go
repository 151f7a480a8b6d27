// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the embedded message catalogs against the source tree.
// It reports ids used in code but absent from the primary locale, ids missing
// from secondary locales, mismatched format verbs and orphaned ids.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultLocales = "internal/i18n/locales"
	primaryLocale  = "en.yaml"
)

// idPattern matches message ids in i18n.T calls and in bare literals such as
// fallback ids handed to helpers.
var idPattern = regexp.MustCompile(`"((?:cli|tui|error|column)\.[a-z_.]+)"`)

var verbPattern = regexp.MustCompile(`%[dsvq]`)

// Report is the outcome of one lint run.
type Report struct {
	Undefined map[string][]string // id -> files using it
	Missing   map[string][]string // locale -> ids
	Verbs     map[string][]string // locale -> ids with differing verbs
	Orphaned  []string
}

// Failed reports whether the run found anything that breaks translations.
// Orphans are only a warning.
func (r Report) Failed() bool {
	return len(r.Undefined) > 0 || len(r.Missing) > 0 || len(r.Verbs) > 0
}

func main() {
	root := flag.String("root", ".", "source tree to scan")
	locales := flag.String("locales", defaultLocales, "directory with the locale files")
	flag.Parse()

	rep, err := lint(*root, filepath.Join(*root, *locales))
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-linter: %v\n", err)
		os.Exit(2)
	}
	writeReport(os.Stdout, rep)
	if rep.Failed() {
		os.Exit(1)
	}
}

func lint(root, localesDir string) (Report, error) {
	used, err := findUsedIDs(root)
	if err != nil {
		return Report{}, fmt.Errorf("scanning sources: %w", err)
	}
	primary, err := loadLocale(filepath.Join(localesDir, primaryLocale))
	if err != nil {
		return Report{}, fmt.Errorf("loading %s: %w", primaryLocale, err)
	}

	rep := Report{
		Undefined: map[string][]string{},
		Missing:   map[string][]string{},
		Verbs:     map[string][]string{},
	}
	for id, files := range used {
		if _, ok := primary[id]; !ok {
			rep.Undefined[id] = files
		}
	}
	for id := range primary {
		if _, ok := used[id]; !ok {
			rep.Orphaned = append(rep.Orphaned, id)
		}
	}
	sort.Strings(rep.Orphaned)

	files, err := filepath.Glob(filepath.Join(localesDir, "*.yaml"))
	if err != nil {
		return Report{}, err
	}
	for _, f := range files {
		name := filepath.Base(f)
		if name == primaryLocale {
			continue
		}
		other, err := loadLocale(f)
		if err != nil {
			return Report{}, fmt.Errorf("loading %s: %w", name, err)
		}
		for id, msg := range primary {
			tr, ok := other[id]
			switch {
			case !ok:
				rep.Missing[name] = append(rep.Missing[name], id)
			case verbs(msg) != verbs(tr):
				rep.Verbs[name] = append(rep.Verbs[name], id)
			}
		}
		sort.Strings(rep.Missing[name])
		sort.Strings(rep.Verbs[name])
		if len(rep.Missing[name]) == 0 {
			delete(rep.Missing, name)
		}
		if len(rep.Verbs[name]) == 0 {
			delete(rep.Verbs, name)
		}
	}
	return rep, nil
}

func verbs(msg string) string {
	return strings.Join(verbPattern.FindAllString(msg, -1), "")
}

// findUsedIDs maps every id referenced by non-test Go files to the files that
// reference it. Tool sources and the examples pack are skipped.
func findUsedIDs(root string) (map[string][]string, error) {
	ids := map[string][]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (d.Name() == "tools" || strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		seen := map[string]bool{}
		for _, m := range idPattern.FindAllStringSubmatch(string(content), -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				ids[m[1]] = append(ids[m[1]], path)
			}
		}
		return nil
	})
	return ids, err
}

// loadLocale reads a flat id -> message catalog.
func loadLocale(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	if err := yaml.Unmarshal(content, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func writeReport(w io.Writer, rep Report) {
	section := func(title string, lines []string) {
		fmt.Fprintf(w, "--- %s ---\n", title)
		if len(lines) == 0 {
			fmt.Fprintln(w, "  none")
		}
		for _, l := range lines {
			fmt.Fprintf(w, "  - %s\n", l)
		}
	}

	var undefined []string
	for id, files := range rep.Undefined {
		undefined = append(undefined, fmt.Sprintf("%s (used in %s)", id, files[0]))
	}
	sort.Strings(undefined)
	section("Undefined ids (used in code, absent from "+primaryLocale+")", undefined)

	var missing, mismatched []string
	for name, ids := range rep.Missing {
		for _, id := range ids {
			missing = append(missing, name+": "+id)
		}
	}
	for name, ids := range rep.Verbs {
		for _, id := range ids {
			mismatched = append(mismatched, name+": "+id)
		}
	}
	sort.Strings(missing)
	sort.Strings(mismatched)
	section("Missing translations", missing)
	section("Format verb mismatches", mismatched)
	section("Orphaned ids", rep.Orphaned)

	if rep.Failed() {
		fmt.Fprintln(w, "FAIL")
	} else {
		fmt.Fprintln(w, "OK")
	}
}
