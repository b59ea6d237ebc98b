// Package util provides common formatting helpers used across waymark.
package util

import "fmt"

// TruncateText shortens s to at most max runes, appending an ellipsis when
// anything was cut. max includes the ellipsis character.
func TruncateText(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

// FormatFileSize renders a byte count for display: "512 B", "12.3 KB",
// "1.0 MB".
func FormatFileSize(bytes int) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// RemainingCount returns how many more items fit under the limit, never
// negative.
func RemainingCount(current, max int) int {
	if current >= max {
		return 0
	}
	return max - current
}
