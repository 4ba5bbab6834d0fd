package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger_AppendsJSONLines(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "azdo-cli-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	logPath := filepath.Join(tmpDir, "logs", "azdo-cli.jsonl")
	l, err := New(logPath)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := l.LogInvocation("list_builds", true, "", `{"top":5}`, 120, "sess-1"); err != nil {
		t.Fatalf("LogInvocation failed: %v", err)
	}
	if err := l.LogEvent("serve_start", "stdio"); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	f, err := os.Open(logPath)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var inv InvocationEntry
	if err := json.Unmarshal([]byte(lines[0]), &inv); err != nil {
		t.Fatalf("line 0 is not JSON: %v", err)
	}
	if inv.Tool != "list_builds" || !inv.OK || inv.DurationMs != 120 {
		t.Errorf("invocation entry = %+v", inv)
	}

	var ev EventEntry
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatalf("line 1 is not JSON: %v", err)
	}
	if ev.Event != "serve_start" || ev.Detail != "stdio" {
		t.Errorf("event entry = %+v", ev)
	}
	if ev.Timestamp == "" {
		t.Error("timestamp should be set")
	}
}

func TestLogger_TruncatesOversizedFields(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "azdo-cli-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	logPath := filepath.Join(tmpDir, "azdo-cli.jsonl")
	l, err := New(logPath)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	huge := strings.Repeat("a", MaxFieldSize+500)
	if err := l.LogInvocation("get_file", false, huge, "{}", 5, ""); err != nil {
		t.Fatalf("LogInvocation failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	var inv InvocationEntry
	if err := json.Unmarshal(data[:len(data)-1], &inv); err != nil {
		t.Fatalf("entry is not JSON: %v", err)
	}
	if len(inv.Error) != MaxFieldSize {
		t.Errorf("error field should be capped at %d, got %d", MaxFieldSize, len(inv.Error))
	}
}
