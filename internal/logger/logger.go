// Package logger appends server events to a JSONL file, one object per
// line, for offline inspection alongside the invocation database.
package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const MaxFieldSize = 10 * 1024 // 10KB limit per logged field

// InvocationEntry - one dispatched tool call (fields ordered by priority)
type InvocationEntry struct {
	Tool       string `json:"tool"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	Arguments  string `json:"arguments,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	SessionID  string `json:"session_id,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// EventEntry - one lifecycle event such as serve start and stop
type EventEntry struct {
	Event     string `json:"event"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Logger - appends entries to a JSONL file
type Logger struct {
	logPath string
}

// New creates a Logger writing to path, creating the parent directory if
// needed.
func New(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &Logger{logPath: path}, nil
}

// LogInvocation appends one tool call record. Oversized arguments and
// error messages keep their head, which carries the interesting part.
func (l *Logger) LogInvocation(tool string, ok bool, errMsg, arguments string, durationMs int64, sessionID string) error {
	entry := InvocationEntry{
		Tool:       tool,
		OK:         ok,
		Error:      truncate(errMsg),
		Arguments:  truncate(arguments),
		DurationMs: durationMs,
		SessionID:  sessionID,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	return l.append(entry)
}

// LogEvent appends one lifecycle record.
func (l *Logger) LogEvent(event, detail string) error {
	entry := EventEntry{
		Event:     event,
		Detail:    truncate(detail),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return l.append(entry)
}

func truncate(s string) string {
	if len(s) > MaxFieldSize {
		return s[:MaxFieldSize]
	}
	return s
}

func (l *Logger) append(entry any) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	f, err := os.OpenFile(l.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}
	return nil
}
