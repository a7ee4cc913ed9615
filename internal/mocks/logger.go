package mocks

import (
	"sync"

	"todayweather.app/internal/ports"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// RecordingLogger is a ports.Logger that keeps every entry for assertions.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewRecordingLogger creates an empty recording logger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) Debug(msg string, fields ...ports.Field) {
	l.add("DEBUG", msg, fields...)
}

func (l *RecordingLogger) Info(msg string, fields ...ports.Field) {
	l.add("INFO", msg, fields...)
}

func (l *RecordingLogger) Warn(msg string, fields ...ports.Field) {
	l.add("WARN", msg, fields...)
}

func (l *RecordingLogger) Error(msg string, fields ...ports.Field) {
	l.add("ERROR", msg, fields...)
}

// Entries returns a copy of the recorded entries.
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Count returns how many entries were recorded at level.
func (l *RecordingLogger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Has reports whether an entry with the message was recorded at level.
func (l *RecordingLogger) Has(level, message string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}

func (l *RecordingLogger) add(level, message string, fields ...ports.Field) {
	fieldMap := make(map[string]interface{})
	for _, field := range fields {
		fieldMap[field.Key] = field.Value
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: message, Fields: fieldMap})
}
