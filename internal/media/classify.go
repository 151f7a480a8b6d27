// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package media decides how a decrypted artifact is presented. Routing after a
// fetch is purely a function of the declared media type; file extensions are
// only consulted before a request is made (upload and token pickers).
package media

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is a rendering target.
type Kind int

const (
	// Unknown is the zero value of an idle viewer; Classify never returns it.
	Unknown Kind = iota
	Document
	Video
	Audio
)

func (k Kind) String() string {
	switch k {
	case Document:
		return "document"
	case Video:
		return "video"
	case Audio:
		return "audio"
	default:
		return "unknown"
	}
}

// ParseKind maps a config or flag value back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document", "doc", "pdf":
		return Document, nil
	case "video":
		return Video, nil
	case "audio":
		return Audio, nil
	}
	return Unknown, fmt.Errorf("unknown media kind %q", s)
}

// Classify maps a declared media type to a rendering target. Anything that is
// not video/* or audio/* (including empty and malformed types) is shown as a
// document.
func Classify(mediaType string) Kind {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	switch {
	case strings.HasPrefix(mt, "video/"):
		return Video
	case strings.HasPrefix(mt, "audio/"):
		return Audio
	default:
		return Document
	}
}

// UploadExtensions are the file types the vault accepts for new artifacts.
var UploadExtensions = []string{".pdf", ".mp4", ".mkv", ".avi", ".mp3", ".wav"}

// CheckUpload rejects files the vault will not render before any bytes are
// sent.
func CheckUpload(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range UploadExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("unsupported file type %q: allowed %s", ext, strings.Join(UploadExtensions, " "))
}

// IsTokenFile reports whether name carries the .sntl extension.
func IsTokenFile(name string) bool {
	return strings.HasSuffix(name, ".sntl")
}
