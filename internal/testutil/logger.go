// Package testutil provides helpers shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/graph-metrics/pkg/utils"
)

// Record is one captured log line.
type Record struct {
	Level   utils.LogLevel
	Message string
	Fields  map[string]interface{}
}

// RecordingLogger captures formatted records in memory. Safe for concurrent use.
type RecordingLogger struct {
	mu      *sync.Mutex
	records *[]Record
	fields  map[string]interface{}
}

// NewRecordingLogger creates an empty RecordingLogger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{
		mu:      &sync.Mutex{},
		records: &[]Record{},
		fields:  map[string]interface{}{},
	}
}

func (l *RecordingLogger) add(level utils.LogLevel, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, Record{
		Level:   level,
		Message: fmt.Sprintf(msg, args...),
		Fields:  l.fields,
	})
}

// Debug records a debug message.
func (l *RecordingLogger) Debug(msg string, args ...interface{}) {
	l.add(utils.LevelDebug, msg, args...)
}

// Info records an info message.
func (l *RecordingLogger) Info(msg string, args ...interface{}) { l.add(utils.LevelInfo, msg, args...) }

// Warn records a warning message.
func (l *RecordingLogger) Warn(msg string, args ...interface{}) { l.add(utils.LevelWarn, msg, args...) }

// Error records an error message.
func (l *RecordingLogger) Error(msg string, args ...interface{}) {
	l.add(utils.LevelError, msg, args...)
}

// WithField returns a logger writing into the same record list.
func (l *RecordingLogger) WithField(key string, value interface{}) utils.Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a logger writing into the same record list.
func (l *RecordingLogger) WithFields(fields map[string]interface{}) utils.Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &RecordingLogger{mu: l.mu, records: l.records, fields: merged}
}

// Records returns a copy of the captured records.
func (l *RecordingLogger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(*l.records))
	copy(out, *l.records)
	return out
}

// Messages returns the captured messages.
func (l *RecordingLogger) Messages() []string {
	records := l.Records()
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Message
	}
	return out
}

// Count returns the number of captured records whose message contains substr.
func (l *RecordingLogger) Count(substr string) int {
	n := 0
	for _, m := range l.Messages() {
		if strings.Contains(m, substr) {
			n++
		}
	}
	return n
}

// Reset drops all captured records.
func (l *RecordingLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = (*l.records)[:0]
}
