package logtail

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Logger is the minimal logging interface required by the log tail subsystem.
type Logger interface {
	Debug(message string, source ...string)
	Info(message string, source ...string)
	Warn(message string, source ...string)
	Error(message string, source ...string)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...string) {}
func (noopLogger) Info(string, ...string)  {}
func (noopLogger) Warn(string, ...string)  {}
func (noopLogger) Error(string, ...string) {}

// Key identifies a log tab by its pod/container coordinates. Container may
// be empty when the pod's default container is tailed.
type Key struct {
	Namespace string `json:"namespace"`
	Pod       string `json:"pod"`
	Container string `json:"container,omitempty"`
}

// String renders the key in namespace/pod/container form. The trailing
// segment is kept even when the container is empty so keys parse back
// unambiguously.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Namespace, k.Pod, k.Container)
}

// ParseKey parses a namespace/pod/container key string.
func ParseKey(s string) (Key, error) {
	parts := strings.SplitN(s, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return Key{}, fmt.Errorf("logtail: invalid tab key %q", s)
	}
	return Key{Namespace: parts[0], Pod: parts[1], Container: parts[2]}, nil
}

// Entry is one buffered log line. Entries are immutable after creation
// except for the Expanded display toggle.
type Entry struct {
	// ID is a per-tab monotonic sequence number.
	ID int64 `json:"id"`
	// Timestamp is the display timestamp parsed from the line prefix.
	// Best effort; empty when the line carried none.
	Timestamp string `json:"timestamp,omitempty"`
	// Line is the raw message text without the timestamp prefix.
	Line string `json:"line"`
	// IsJSON and IsError are advisory heuristics, not classifications.
	IsJSON   bool `json:"isJson"`
	IsError  bool `json:"isError"`
	Expanded bool `json:"expanded"`
}

var errorKeywords = []string{"error", "err!", "fatal", "panic", "exception", "fail", "warn"}

// classifyLine derives the advisory display flags for a raw message.
func classifyLine(line string) (isJSON, isError bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) > 1 {
		switch trimmed[0] {
		case '{', '[':
			isJSON = json.Valid([]byte(trimmed))
		}
	}
	lower := strings.ToLower(trimmed)
	for _, kw := range errorKeywords {
		if strings.Contains(lower, kw) {
			isError = true
			break
		}
	}
	return isJSON, isError
}

// splitTimestamp separates an RFC3339-style timestamp prefix from the rest
// of the line, mirroring the format produced by tail fetches that request
// timestamps. Returns an empty timestamp when no prefix is present.
func splitTimestamp(line string) (string, string) {
	idx := strings.IndexByte(line, ' ')
	if idx > 0 && idx < 36 && looksLikeTimestamp(line[:idx]) {
		return line[:idx], line[idx+1:]
	}
	return "", line
}

func looksLikeTimestamp(s string) bool {
	// RFC3339Nano: 2024-01-02T15:04:05.000000000Z
	if len(s) < 20 {
		return false
	}
	return s[4] == '-' && s[7] == '-' && s[10] == 'T'
}
