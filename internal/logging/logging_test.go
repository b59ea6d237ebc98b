package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

func TestLogFilePath(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	got := LogFilePath("/var/log/waymark", "waymark", start)

	if !strings.HasSuffix(got, "waymark.20260314_150926.log") {
		t.Errorf("unexpected log file path: %s", got)
	}
	if !strings.HasPrefix(got, "/var/log/waymark") {
		t.Errorf("expected path under logsDir, got %s", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"Warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetup_WritesToFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	var buf bytes.Buffer
	logger := Setup(&buf, "debug")

	logger.Info().Str("component", "test").Msg("hello from setup")

	if !strings.Contains(buf.String(), "hello from setup") {
		t.Errorf("expected message in file writer, got: %s", buf.String())
	}
}

func TestSetup_ExtraWriterGetsRawJSON(t *testing.T) {
	t.Cleanup(viper.Reset)

	var raw bytes.Buffer
	logger := Setup(nil, "info", &raw, nil)

	logger.Info().Str("route", "temp_1").Msg("fan out")

	line := raw.String()
	if !strings.Contains(line, `"message":"fan out"`) {
		t.Errorf("expected raw JSON line in extra writer, got: %s", line)
	}
	if !strings.Contains(line, `"route":"temp_1"`) {
		t.Errorf("expected structured field in extra writer, got: %s", line)
	}
}

func TestSetup_NilFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	logger := Setup(nil, "info")
	// must not panic, and debug should be filtered at info level
	logger.Debug().Msg("filtered")
	logger.Info().Msg("console only")
}
