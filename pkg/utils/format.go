// Package utils provides shared utility functions.
package utils

// TruncateString truncates a string to max length with ellipsis.
// Upstream error bodies pass through here before they reach logs or
// error chains, so the cap is on bytes, not runes.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
