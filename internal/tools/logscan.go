package tools

import (
	"regexp"
	"strings"

	"azdo-cli/internal/textutil"
)

// DefaultLogPattern is what build log scans look for when the caller does
// not supply a pattern of their own.
var DefaultLogPattern = regexp.MustCompile(`(?i)\b(error|failed|failure|exception|fatal)\b`)

const logMatchTextLimit = 300

// LogMatch is one matching log line. Line is 1-based within the log the
// match came from.
type LogMatch struct {
	LogID int    `json:"logId"`
	Line  int    `json:"line"`
	Text  string `json:"text"`
}

// ScanLines collects up to max matches of re in lines, trimming and
// capping each matched line so one pathological log line cannot swamp
// the payload. A max of zero means no limit.
func ScanLines(logID int, lines []string, re *regexp.Regexp, max int) []LogMatch {
	var matches []LogMatch
	for i, line := range lines {
		if max > 0 && len(matches) >= max {
			break
		}
		if !re.MatchString(line) {
			continue
		}
		matches = append(matches, LogMatch{
			LogID: logID,
			Line:  i + 1,
			Text:  textutil.TruncateWithEllipsis(strings.TrimSpace(line), logMatchTextLimit),
		})
	}
	return matches
}
