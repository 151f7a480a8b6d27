// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// debug_export prints the contents of a listing export written by
// `sentinel export`. It reads the named file, or stdin when given "-".
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/sentinel-vault/sentinel/internal/catalog"
	"github.com/sentinel-vault/sentinel/internal/media"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: debug_export <file|->")
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "debug_export: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, stdin io.Reader, out io.Writer) error {
	in := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	list, at, err := catalog.ReadExport(in)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "exported at: %s\n", at.Format(time.RFC3339))
	fmt.Fprintf(out, "artifacts: %d\n", len(list))

	perKind := map[string]int{}
	for _, d := range list {
		k := media.Classify(d.FileType).String()
		perKind[k]++
		fmt.Fprintf(out, "artifact: %d %q %s (%s)\n", d.ID, d.FileName, d.FileType, k)
	}
	kinds := make([]string, 0, len(perKind))
	for k := range perKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(out, "kind %s: %d\n", k, perKind[k])
	}
	return nil
}
