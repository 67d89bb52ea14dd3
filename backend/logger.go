package backend

import (
	"sync"
	"time"

	"github.com/kuboard/app/backend/internal/config"
)

// LogLevel is the severity of an application log entry.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogEntry is one application log line surfaced to the frontend.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source,omitempty"`
}

// Logger keeps a ring-capped application log in memory. All methods are
// safe on a nil receiver so early-startup call sites need no guards.
type Logger struct {
	mu           sync.RWMutex
	entries      []LogEntry
	maxSize      int
	eventEmitter func(string)
}

// NewLogger creates a logger retaining at most maxSize entries.
func NewLogger(maxSize int) *Logger {
	if maxSize <= 0 {
		maxSize = config.AppLogMaxEntries
	}
	return &Logger{
		entries: make([]LogEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Log records an entry, evicting the oldest entries beyond the cap.
func (l *Logger) Log(level LogLevel, message string, source ...string) {
	if l == nil {
		return
	}

	l.mu.Lock()
	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   message,
	}
	if len(source) > 0 {
		entry.Source = source[0]
	}
	l.entries = append(l.entries, entry)

	if len(l.entries) > l.maxSize {
		// Copy into a fresh slice so capacity cannot grow unbounded.
		trimmed := make([]LogEntry, l.maxSize)
		copy(trimmed, l.entries[len(l.entries)-l.maxSize:])
		l.entries = trimmed
	}
	emitter := l.eventEmitter
	l.mu.Unlock()

	if emitter != nil {
		emitter("log-added")
	}
}

func (l *Logger) Debug(message string, source ...string) {
	l.Log(LogLevelDebug, message, source...)
}

func (l *Logger) Info(message string, source ...string) {
	l.Log(LogLevelInfo, message, source...)
}

func (l *Logger) Warn(message string, source ...string) {
	l.Log(LogLevelWarn, message, source...)
}

func (l *Logger) Error(message string, source ...string) {
	l.Log(LogLevelError, message, source...)
}

// GetEntries returns a copy of the retained entries, oldest first.
func (l *Logger) GetEntries() []LogEntry {
	if l == nil {
		return []LogEntry{}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := make([]LogEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Clear drops all retained entries.
func (l *Logger) Clear() {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// Count returns the number of retained entries.
func (l *Logger) Count() int {
	if l == nil {
		return 0
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// SetEventEmitter installs the callback invoked after each new entry.
func (l *Logger) SetEventEmitter(emitter func(string)) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.eventEmitter = emitter
}
