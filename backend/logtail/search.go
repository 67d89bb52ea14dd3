package logtail

import (
	"strings"
	"sync"
)

// SearchResult is a read-only projection of a tab's buffer. With an empty
// query the filtered view equals the full buffer and there are no matches.
type SearchResult struct {
	Query         string  `json:"query"`
	CaseSensitive bool    `json:"caseSensitive"`
	Entries       []Entry `json:"entries"`
	// Indices holds the original buffer index of each match, parallel to
	// Entries when a query is set.
	Indices []int `json:"indices"`
	// Current points into Indices at the selected match; -1 when there are
	// no matches.
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Search provides substring search over a buffer snapshot with circular
// match navigation. It never mutates the buffer, the fetch cursor or the
// follow state.
type Search struct {
	mu     sync.Mutex
	result SearchResult
}

// NewSearch constructs an empty search overlay.
func NewSearch() *Search {
	return &Search{result: SearchResult{Current: -1}}
}

// Run scans the entries top to bottom and retains the matching ones along
// with their original indices. The current-match pointer resets to the
// first match.
func (s *Search) Run(entries []Entry, query string, caseSensitive bool) SearchResult {
	result := SearchResult{
		Query:         query,
		CaseSensitive: caseSensitive,
		Current:       -1,
	}

	if query == "" {
		result.Entries = entries
	} else {
		needle := query
		if !caseSensitive {
			needle = strings.ToLower(needle)
		}
		for i, entry := range entries {
			haystack := entry.Line
			if !caseSensitive {
				haystack = strings.ToLower(haystack)
			}
			if strings.Contains(haystack, needle) {
				result.Entries = append(result.Entries, entry)
				result.Indices = append(result.Indices, i)
			}
		}
		if len(result.Indices) > 0 {
			result.Current = 0
		}
	}
	result.Total = len(result.Indices)

	s.mu.Lock()
	s.result = result
	s.mu.Unlock()
	return result
}

// Navigate advances (direction > 0) or retreats (direction < 0) the
// current-match pointer, wrapping at both ends. A no-op without matches.
func (s *Search) Navigate(direction int) SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.result.Indices)
	if total == 0 {
		return s.result
	}

	step := 1
	if direction < 0 {
		step = -1
	}
	s.result.Current = ((s.result.Current+step)%total + total) % total
	return s.result
}

// Result returns the last computed projection.
func (s *Search) Result() SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Clear resets the overlay to the empty query state.
func (s *Search) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = SearchResult{Current: -1}
}
