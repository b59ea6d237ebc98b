package util

import "testing"

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"empty string", "", 10, ""},
		{"shorter than max", "hello", 10, "hello"},
		{"exactly max", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello w…"},
		{"max one", "hello", 1, "…"},
		{"max zero", "hello", 0, ""},
		{"multibyte runes", "привет мир", 7, "привет…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateText(tt.input, tt.max)
			if got != tt.expected {
				t.Errorf("TruncateText(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
			}
		})
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes    int
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{2621440, "2.5 MB"},
	}

	for _, tt := range tests {
		got := FormatFileSize(tt.bytes)
		if got != tt.expected {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tt.bytes, got, tt.expected)
		}
	}
}

func TestRemainingCount(t *testing.T) {
	if got := RemainingCount(1, 4); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := RemainingCount(4, 4); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := RemainingCount(7, 4); got != 0 {
		t.Errorf("expected 0 when over the limit, got %d", got)
	}
}
