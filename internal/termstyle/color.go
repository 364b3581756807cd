// SPDX-License-Identifier: MIT
package termstyle

import "github.com/liggitt/tabwriter"

const (
	Reset = "\x1b[0m"
	Green = "\x1b[32m"
	Brown = "\x1b[33m"
	Red   = "\x1b[31m"

	// Semantic aliases used by transcript/table output.
	Updated = Green
	Warn    = Brown
	Error   = Red
)

// Paint wraps a value in ANSI escapes when color output is enabled.
// For tabwriter output use Colorize instead.
func Paint(enabled bool, value, color string) string {
	if !enabled || value == "" || color == "" {
		return value
	}
	return color + value + Reset
}

// Colorize wraps a value in ANSI escapes when color output is enabled.
func Colorize(enabled bool, value, color string) string {
	if !enabled || value == "" || color == "" {
		return value
	}
	// Hide ANSI sequences from tabwriter width calculations so columns align.
	esc := string([]byte{tabwriter.Escape})
	return esc + color + esc + value + esc + Reset + esc
}

// ForMessage picks a transcript line color from its leading word.
func ForMessage(line string) string {
	switch {
	case hasPrefix(line, "Warning"), hasPrefix(line, "Failed"):
		return Warn
	case hasPrefix(line, "Initializing"), hasPrefix(line, "Updating"):
		return Updated
	default:
		return ""
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
