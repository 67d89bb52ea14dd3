package logtail

// Buffer holds the ordered log entries for one tab. Insertion order is
// chronological order; eviction only removes from the head once the
// retention cap is exceeded.
type Buffer struct {
	entries []Entry
	cap     int
	nextID  int64
}

// NewBuffer constructs a buffer with the given retention cap.
func NewBuffer(retentionCap int) *Buffer {
	if retentionCap <= 0 {
		retentionCap = 1
	}
	return &Buffer{cap: retentionCap, nextID: 1}
}

// Append converts the raw lines into entries and appends them, evicting the
// oldest entries when the cap is exceeded. Returns the number appended.
func (b *Buffer) Append(rawLines []string) int {
	for _, raw := range rawLines {
		timestamp, text := splitTimestamp(raw)
		isJSON, isError := classifyLine(text)
		b.entries = append(b.entries, Entry{
			ID:        b.nextID,
			Timestamp: timestamp,
			Line:      text,
			IsJSON:    isJSON,
			IsError:   isError,
		})
		b.nextID++
	}

	if len(b.entries) > b.cap {
		// Copy into a fresh slice so capacity cannot grow unbounded.
		start := len(b.entries) - b.cap
		trimmed := make([]Entry, b.cap)
		copy(trimmed, b.entries[start:])
		b.entries = trimmed
	}
	return len(rawLines)
}

// Reset drops all entries. Sequence numbers keep advancing so entry IDs
// stay strictly increasing across a reseed.
func (b *Buffer) Reset() {
	b.entries = b.entries[:0]
}

// Entries returns a copy of the buffered entries.
func (b *Buffer) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len reports the number of buffered entries.
func (b *Buffer) Len() int {
	return len(b.entries)
}

// SetExpanded toggles the truncation state of the entry with the given ID.
// Returns false when no such entry is buffered.
func (b *Buffer) SetExpanded(id int64, expanded bool) bool {
	for i := range b.entries {
		if b.entries[i].ID == id {
			b.entries[i].Expanded = expanded
			return true
		}
	}
	return false
}
