// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package media

import (
	"testing"
	"testing/quick"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"video/mp4", Video},
		{"VIDEO/x-matroska", Video},
		{" video/webm ", Video},
		{"audio/mpeg", Audio},
		{"audio/wav; codecs=1", Audio},
		{"application/pdf", Document},
		{"application/octet-stream", Document},
		{"text/plain", Document},
		{"", Document},
		{"video", Document},
		{"garbage", Document},
	}
	for _, tc := range tests {
		if got := Classify(tc.in); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestClassify_IsTotal(t *testing.T) {
	f := func(s string) bool {
		k := Classify(s)
		return k == Document || k == Video || k == Audio
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatalf("Classify returned a value outside {document, video, audio}: %v", err)
	}
}

func TestCheckUpload(t *testing.T) {
	for _, ok := range []string{"a.pdf", "b.MP4", "c.mkv", "d.avi", "e.mp3", "f.wav"} {
		if err := CheckUpload(ok); err != nil {
			t.Errorf("CheckUpload(%q) unexpected error: %v", ok, err)
		}
	}
	for _, bad := range []string{"a.exe", "b", "c.sntl", "d.pdf.zip"} {
		if err := CheckUpload(bad); err == nil {
			t.Errorf("CheckUpload(%q) expected error", bad)
		}
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("Video"); err != nil || k != Video {
		t.Fatalf("ParseKind(Video) = %v, %v", k, err)
	}
	if _, err := ParseKind("hologram"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestIsTokenFile(t *testing.T) {
	if !IsTokenFile("x_id_1.sntl") || IsTokenFile("x.pdf") {
		t.Fatalf("IsTokenFile misclassified")
	}
}
