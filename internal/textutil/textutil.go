// Package textutil holds the ANSI-aware string helpers shared by the
// terminal UI and the log scanning tools.
package textutil

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
)

// WrapText soft-wraps text at width, leaving it untouched when width is
// not positive.
func WrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}

// TruncateWithEllipsis caps line at width display cells, marking the cut
// with dots. ANSI escape sequences do not count toward the width.
func TruncateWithEllipsis(line string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(line) <= width {
		return line
	}
	if width <= 3 {
		return strings.Repeat(".", width)
	}
	return ansi.Cut(line, 0, width-3) + "..."
}

// StringWidth measures the display width of s, skipping ANSI sequences.
func StringWidth(s string) int {
	return ansi.StringWidth(s)
}
