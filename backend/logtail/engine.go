package logtail

import (
	"context"
	"fmt"
	"strings"
)

// Engine turns point-in-time "last K lines" tail fetches into an
// append-only stream per tab by anchoring each fetch on the last raw line
// previously observed.
//
// Known gap, kept on purpose: when the anchor line is no longer inside the
// fetched tail window (the stream advanced faster than the poll interval)
// and the buffer is non-empty, the whole fetch is treated as overlap and
// nothing is appended. That silently drops the missed lines, but never
// duplicates existing ones.
type Engine struct {
	fetcher Fetcher
	logger  Logger
}

// NewEngine constructs an Engine around the given fetch boundary.
func NewEngine(fetcher Fetcher, logger Logger) *Engine {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Engine{fetcher: fetcher, logger: logger}
}

// FetchLines performs the tail call for the tab and splits the raw text
// into non-empty lines.
func (e *Engine) FetchLines(ctx context.Context, key Key, tailLines int) ([]string, error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("logtail: fetcher not configured")
	}
	raw, err := e.fetcher.FetchPodLogs(ctx, key.Namespace, key.Pod, key.Container, tailLines)
	if err != nil {
		return nil, err
	}
	return splitLines(raw), nil
}

// Apply reconciles the fetched lines against the tab's anchor and appends
// only the genuinely new ones. Returns the number of entries appended.
//
// Initial fetches reseed the buffer outright. Subsequent fetches locate the
// anchor line searching from the end (the most recent occurrence wins, so
// repeated identical log lines cannot alias an older position) and append
// everything after it. A missing anchor reseeds only when the buffer is
// empty; otherwise the fetch is treated as full overlap.
func (e *Engine) Apply(tab *Tab, lines []string, isInitial bool) int {
	if tab == nil {
		return 0
	}

	if isInitial {
		tab.buffer.Reset()
		appended := tab.buffer.Append(lines)
		if len(lines) > 0 {
			tab.lastSeenLine = lines[len(lines)-1]
		}
		return appended
	}

	if len(lines) == 0 {
		return 0
	}

	var newLines []string
	switch {
	case tab.lastSeenLine == "" && tab.buffer.Len() == 0:
		newLines = lines
	default:
		anchor := lastIndexOf(lines, tab.lastSeenLine)
		switch {
		case anchor >= 0:
			newLines = lines[anchor+1:]
		case tab.buffer.Len() == 0:
			// Recovery path: nothing buffered, nothing to duplicate.
			newLines = lines
		default:
			e.logger.Debug(fmt.Sprintf("logtail: anchor not found for %s, treating fetch as overlap", tab.Key), "LogTail")
			return 0
		}
	}

	if len(newLines) == 0 {
		return 0
	}
	appended := tab.buffer.Append(newLines)
	tab.lastSeenLine = lines[len(lines)-1]
	return appended
}

// lastIndexOf returns the highest index whose element equals needle, or -1.
func lastIndexOf(lines []string, needle string) int {
	if needle == "" {
		return -1
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] == needle {
			return i
		}
	}
	return -1
}

// splitLines breaks raw log text into non-empty lines.
func splitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "\n")
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimRight(part, "\r")
		if part == "" {
			continue
		}
		lines = append(lines, part)
	}
	return lines
}
