// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package token

import (
	"errors"
	"strings"
	"testing"
	"testing/quick"
)

func TestEncode_ReportScenario(t *testing.T) {
	got, err := Encode("report.pdf", 42)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got != "report.pdf_id_42.sntl" {
		t.Fatalf("unexpected token name %q", got)
	}

	n, err := Decode(got)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n.ArtifactID != 42 || n.OriginalName != "report.pdf" {
		t.Fatalf("unexpected decode %+v", n)
	}
}

func TestEncode_RejectsNonPositive(t *testing.T) {
	for _, id := range []int64{0, -7} {
		if _, err := Encode("a.pdf", id); err == nil {
			t.Fatalf("expected error for id %d", id)
		}
	}
}

func TestDecode_Table(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantID   int64
		wantOrig string
		wantKind ErrorKind
	}{
		{name: "plain", in: "clip.mp4_id_7.sntl", wantID: 7, wantOrig: "clip.mp4"},
		{name: "duplicate counter after digits", in: "report.pdf_id_42 (1).sntl", wantID: 42, wantOrig: "report.pdf"},
		{name: "duplicate counter before ext", in: "report.pdf_id_42(2).sntl", wantID: 42, wantOrig: "report.pdf"},
		{name: "path input", in: "/home/u/Downloads/song.mp3_id_9.sntl", wantID: 9, wantOrig: "song.mp3"},
		{name: "spaces in base", in: "My Report.pdf_id_15.sntl", wantID: 15, wantOrig: "My Report.pdf"},
		{name: "name cut at first marker", in: "my_id_x.pdf_id_5.sntl", wantID: 5, wantOrig: "my"},
		{name: "wrong extension", in: "report.pdf_id_42.pdf", wantKind: WrongExtension},
		{name: "extension case", in: "report.pdf_id_42.SNTL", wantKind: WrongExtension},
		{name: "no extension", in: "report", wantKind: WrongExtension},
		{name: "missing stamp", in: "report.pdf.sntl", wantKind: MissingStamp},
		{name: "stamp without digits", in: "report_id_.sntl", wantKind: MissingStamp},
		{name: "zero id", in: "report_id_0.sntl", wantKind: MissingStamp},
		{name: "overflow", in: "report_id_99999999999999999999.sntl", wantKind: MissingStamp},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, err := Decode(tc.in)
			if tc.wantKind != 0 {
				var de *DecodeError
				if !errors.As(err, &de) {
					t.Fatalf("expected DecodeError, got %v", err)
				}
				if de.Kind != tc.wantKind {
					t.Fatalf("expected kind %v, got %v", tc.wantKind, de.Kind)
				}
				if !errors.Is(err, &DecodeError{Kind: tc.wantKind}) {
					t.Fatalf("errors.Is should match on kind")
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q): %v", tc.in, err)
			}
			if n.ArtifactID != tc.wantID || n.OriginalName != tc.wantOrig {
				t.Fatalf("Decode(%q) = %+v", tc.in, n)
			}
		})
	}
}

func TestDecode_MissingStampMessageIsActionable(t *testing.T) {
	_, err := Decode("report.pdf.sntl")
	if err == nil || !strings.Contains(err.Error(), "fresh copy") {
		t.Fatalf("expected corrective message, got %v", err)
	}
}

func TestRoundTrip_Property(t *testing.T) {
	f := func(base string, n uint32) bool {
		id := int64(n) + 1
		if strings.Contains(base+"_", Marker) || strings.ContainsAny(base, "/\\") || base == "" {
			return true
		}
		enc, err := Encode(base, id)
		if err != nil {
			return false
		}
		dec, err := Decode(enc)
		if err != nil {
			return false
		}
		return dec.ArtifactID == id && dec.OriginalName == base
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
}

func TestDigest_Stable(t *testing.T) {
	a := Digest([]byte("ciphertext"))
	b, err := DigestReader(strings.NewReader("ciphertext"))
	if err != nil {
		t.Fatalf("DigestReader: %v", err)
	}
	if a != b || len(a) != 64 {
		t.Fatalf("digests differ or wrong length: %s vs %s", a, b)
	}
	if Digest([]byte("ciphertexT")) == a {
		t.Fatalf("different input produced same digest")
	}
}
