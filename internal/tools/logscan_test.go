package tools

import (
	"regexp"
	"strings"
	"testing"
)

func TestScanLines_DefaultPattern(t *testing.T) {
	lines := []string{
		"Restoring packages",
		"##[error] CS0103: The name 'foo' does not exist",
		"Build FAILED.",
		"   0 Warning(s)",
		"Exception of type OutOfMemoryException was thrown",
		"errorlevel is not a word boundary hit",
	}

	matches := ScanLines(3, lines, DefaultLogPattern, 0)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d: %+v", len(matches), matches)
	}
	if matches[0].Line != 2 || matches[1].Line != 3 || matches[2].Line != 5 {
		t.Errorf("line numbers should be 1-based: %+v", matches)
	}
	if matches[0].LogID != 3 {
		t.Errorf("log id not carried: %+v", matches[0])
	}
	if matches[0].Text != "##[error] CS0103: The name 'foo' does not exist" {
		t.Errorf("text should be trimmed, got %q", matches[0].Text)
	}
}

func TestScanLines_MaxMatches(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "error: boom"
	}

	matches := ScanLines(1, lines, DefaultLogPattern, 4)
	if len(matches) != 4 {
		t.Errorf("expected 4 matches, got %d", len(matches))
	}
}

func TestScanLines_CustomPattern(t *testing.T) {
	re := regexp.MustCompile(`timeout`)
	lines := []string{"error: boom", "request timeout after 30s"}

	matches := ScanLines(1, lines, re, 0)
	if len(matches) != 1 || matches[0].Line != 2 {
		t.Errorf("custom pattern should override the default: %+v", matches)
	}
}

func TestScanLines_LongLineCapped(t *testing.T) {
	lines := []string{"error: " + strings.Repeat("x", 1000)}

	matches := ScanLines(1, lines, DefaultLogPattern, 0)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if len(matches[0].Text) > 300 {
		t.Errorf("matched text should be capped, got %d chars", len(matches[0].Text))
	}
	if !strings.HasSuffix(matches[0].Text, "...") {
		t.Errorf("capped text should end with ellipsis: %q", matches[0].Text[280:])
	}
}
