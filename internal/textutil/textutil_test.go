package textutil

import (
	"strings"
	"testing"
)

func TestWrapText(t *testing.T) {
	got := WrapText("the quick brown fox jumps over the lazy dog", 10)
	for _, line := range strings.Split(got, "\n") {
		if StringWidth(line) > 10 {
			t.Errorf("line %q exceeds width 10", line)
		}
	}

	if got := WrapText("untouched", 0); got != "untouched" {
		t.Errorf("non-positive width should leave text alone, got %q", got)
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		width int
		want  string
	}{
		{"fits", "short", 10, "short"},
		{"exact", "exactly10!", 10, "exactly10!"},
		{"truncated", "this line is far too long", 10, "this li..."},
		{"tiny width", "whatever", 2, ".."},
		{"zero width", "whatever", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateWithEllipsis(tt.line, tt.width); got != tt.want {
				t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.line, tt.width, got, tt.want)
			}
		})
	}
}

func TestTruncateWithEllipsis_IgnoresANSI(t *testing.T) {
	colored := "\033[31mred text that is quite long\033[0m"
	got := TruncateWithEllipsis(colored, 10)
	if StringWidth(got) > 10 {
		t.Errorf("display width %d exceeds 10: %q", StringWidth(got), got)
	}
}

func TestStringWidth(t *testing.T) {
	if got := StringWidth("plain"); got != 5 {
		t.Errorf("StringWidth(plain) = %d", got)
	}
	if got := StringWidth("\033[32m✓\033[0m done"); got != 6 {
		t.Errorf("ANSI codes should not count, got %d", got)
	}
}
