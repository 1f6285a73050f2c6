package models

import "testing"

func TestReplaceWhitespace(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{in: "The Matrix", expected: "The.Matrix"},
		{in: "Blade  Runner\t2049", expected: "Blade.Runner.2049"},
		{in: "NoSpaces", expected: "NoSpaces"},
		{in: "", expected: ""},
	}

	for _, tt := range tests {
		if got := ReplaceWhitespace(tt.in, "."); got != tt.expected {
			t.Errorf("ReplaceWhitespace(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestSubtitleFileName(t *testing.T) {
	year := 1999
	if got := SubtitleFileName("The Matrix", &year, "English"); got != "The.Matrix.1999.English.srt" {
		t.Errorf("Unexpected file name with year: %q", got)
	}
	if got := SubtitleFileName("The Matrix", nil, "Brazilian Portuguese"); got != "The.Matrix.Brazilian.Portuguese.srt" {
		t.Errorf("Unexpected file name without year: %q", got)
	}
}
