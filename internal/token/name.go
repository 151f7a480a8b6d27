// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package token implements the .sntl offline token naming convention:
//
//	<originalName>_id_<artifactID>.sntl
//
// The convention is versionless and append-only. Decoding searches for the
// stamp instead of slicing fixed offsets, because file managers decorate
// names between download and re-upload ("report.pdf_id_42 (1).sntl").
package token

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	// Extension is the literal suffix every token file carries.
	Extension = ".sntl"
	// Marker separates the original name from the artifact identifier.
	Marker = "_id_"
)

var stampPattern = regexp.MustCompile(regexp.QuoteMeta(Marker) + `(\d+)`)

// ErrorKind tags a decode failure.
type ErrorKind int

const (
	// WrongExtension means the name does not end in .sntl.
	WrongExtension ErrorKind = iota + 1
	// MissingStamp means no _id_<digits> stamp with a positive id was found.
	MissingStamp
)

func (k ErrorKind) String() string {
	switch k {
	case WrongExtension:
		return "wrong_extension"
	case MissingStamp:
		return "missing_stamp"
	default:
		return "unknown"
	}
}

// DecodeError is returned by Decode. No server round-trip should follow it.
type DecodeError struct {
	Kind ErrorKind
	Name string
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case WrongExtension:
		return fmt.Sprintf("invalid file %q: a %s token file is required", e.Name, Extension)
	case MissingStamp:
		return fmt.Sprintf("invalid token %q: missing the system stamp (%sNUMBER); ask the owner to download a fresh copy", e.Name, Marker)
	default:
		return fmt.Sprintf("invalid token %q", e.Name)
	}
}

// Is lets errors.Is match on kind alone: errors.Is(err, &DecodeError{Kind: MissingStamp}).
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Name == "" || t.Name == e.Name)
}

// Name is a decoded token file name.
type Name struct {
	ArtifactID   int64
	OriginalName string
}

// String re-encodes the name.
func (n Name) String() string {
	s, err := Encode(n.OriginalName, n.ArtifactID)
	if err != nil {
		return ""
	}
	return s
}

// Encode produces the token file name for an artifact.
func Encode(originalName string, artifactID int64) (string, error) {
	if artifactID <= 0 {
		return "", fmt.Errorf("artifact id must be positive, got %d", artifactID)
	}
	return originalName + Marker + strconv.FormatInt(artifactID, 10) + Extension, nil
}

// Decode recovers the artifact id and original name from a token file name.
// A path is accepted; only its base name is inspected.
func Decode(candidate string) (Name, error) {
	base := filepath.Base(candidate)
	if !strings.HasSuffix(base, Extension) {
		return Name{}, &DecodeError{Kind: WrongExtension, Name: base}
	}

	loc := stampPattern.FindStringSubmatchIndex(base)
	if loc == nil {
		return Name{}, &DecodeError{Kind: MissingStamp, Name: base}
	}
	id, err := strconv.ParseInt(base[loc[2]:loc[3]], 10, 64)
	if err != nil || id <= 0 {
		return Name{}, &DecodeError{Kind: MissingStamp, Name: base}
	}

	original, _, _ := strings.Cut(base, Marker)
	return Name{ArtifactID: id, OriginalName: original}, nil
}
