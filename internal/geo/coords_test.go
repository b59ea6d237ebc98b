package geo

import (
	"math"
	"testing"
)

func TestParseDecimalCoordinate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"55.751244", "55.751244"},
		{"55.7512448812", "55.751244"},
		{"-37.618423999", "-37.618423"},
		{"55", "55"},
		{"  55.75  ", "55.75"},
		{"55.", ""},
		{"abc", ""},
		{"55,75", ""},
		{"--55.75", ""},
		{"", ""},
		{"55.751244e2", ""},
	}
	for _, tt := range tests {
		if got := ParseDecimalCoordinate(tt.in); got != tt.want {
			t.Errorf("ParseDecimalCoordinate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDecimalCoordinate_Idempotent(t *testing.T) {
	inputs := []string{"55.751244", "55.7512448812", "-37.6", "55", "garbage", ""}
	for _, in := range inputs {
		once := ParseDecimalCoordinate(in)
		twice := ParseDecimalCoordinate(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{55.751244, "55.751244"},
		{55.7512448812, "55.751244"}, // truncated, not rounded
		{-37.6184239999, "-37.618423"},
		{55, "55.000000"},
		{math.NaN(), ""},
		{math.Inf(1), ""},
	}
	for _, tt := range tests {
		if got := FormatDecimal(tt.in); got != tt.want {
			t.Errorf("FormatDecimal(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name      string
		lat, lon  string
		wantValid bool
		wantMsg   bool // whether a non-empty message is expected
	}{
		{"valid moscow", "55.751244", "37.618423", true, false},
		{"valid negative", "-33.868820", "151.209290", true, false},
		{"three digit lon", "55.751244", "137.618423", true, false},
		{"lat out of range", "100.000000", "37.000000", false, true},
		{"lon out of range", "55.751244", "181.000000", false, true},
		{"wrong precision", "55.75", "37.618423", false, true},
		{"too many digits", "55.7512444", "37.618423", false, true},
		{"one integer digit", "5.500000", "37.618423", false, true},
		{"not a number", "abc", "37.618423", false, true},
		{"empty lat", "", "37.618423", false, false},
		{"both empty", "", "", false, false},
		{"whitespace only", "   ", "37.618423", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateCoordinates(tt.lat, tt.lon)
			if valid != tt.wantValid {
				t.Errorf("valid = %v, want %v", valid, tt.wantValid)
			}
			if (msg != "") != tt.wantMsg {
				t.Errorf("message = %q, wanted non-empty=%v", msg, tt.wantMsg)
			}
		})
	}
}

func TestDecimalToDMS(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{55.751244, `55° 45' 4.47"`},
		{-55.751244, `55° 45' 4.47"`}, // sign dropped for display
		{0, `0° 0' 0.00"`},
		{37.618423, `37° 37' 6.32"`},
	}
	for _, tt := range tests {
		if got := DecimalToDMS(tt.in); got != tt.want {
			t.Errorf("DecimalToDMS(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecimalToDMS_NaN(t *testing.T) {
	if got := DecimalToDMS(math.NaN()); got != Placeholder {
		t.Errorf("expected placeholder for NaN, got %q", got)
	}
}

func TestDecimalStringToDMS(t *testing.T) {
	if got := DecimalStringToDMS("55.751244"); got != `55° 45' 4.47"` {
		t.Errorf("unexpected DMS: %q", got)
	}
	if got := DecimalStringToDMS("not-a-coord"); got != Placeholder {
		t.Errorf("expected placeholder, got %q", got)
	}
	if got := DecimalStringToDMS(""); got != Placeholder {
		t.Errorf("expected placeholder for empty, got %q", got)
	}
}

func TestFormatCoordinate(t *testing.T) {
	if got := FormatCoordinate("55.75"); got != "55.750000" {
		t.Errorf("expected padded display value, got %q", got)
	}
	if got := FormatCoordinate("junk"); got != Placeholder {
		t.Errorf("expected placeholder, got %q", got)
	}
}
