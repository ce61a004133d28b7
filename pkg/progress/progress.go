// Package progress reports the progress of long running parallel
// computations without turning the reporting into a point of contention.
package progress

import (
	"github.com/graph-metrics/pkg/utils"
)

// MessageFunc renders an optional message. It is only invoked when a record
// is actually emitted.
type MessageFunc func() string

// NoMessage is the MessageFunc for records without a message.
var NoMessage MessageFunc

// Logger is implemented by progress loggers.
type Logger interface {
	// LogProgress adds amount units of work on behalf of the worker owning counter.
	LogProgress(counter *CallCounter, amount int64, msg MessageFunc)
	// LogMessage emits a record unconditionally without touching the counters.
	LogMessage(msg MessageFunc)
	// LogPercent reports progress as a percentage, if the implementation supports it.
	LogPercent(counter *CallCounter, percent float64, msg MessageFunc) error
	// Reset replaces the task volume and zeroes the progress.
	Reset(newTaskVolume int64)
	// Log returns the underlying record logger.
	Log() utils.Logger
}

// CallCounter is the per-worker call count used for sampling decisions.
// It is owned by exactly one goroutine and must not be shared.
type CallCounter struct {
	name  string
	calls int64
}

// NewCallCounter creates a counter for the worker identified by name.
func NewCallCounter(name string) *CallCounter {
	return &CallCounter{name: name}
}

// Name returns the worker identity printed in progress records.
func (c *CallCounter) Name() string {
	return c.name
}

// Calls returns how many progress calls the owning worker has made.
func (c *CallCounter) Calls() int64 {
	return c.calls
}

func (c *CallCounter) increment() int64 {
	c.calls++
	return c.calls
}

// NullLogger discards all progress.
type NullLogger struct{}

// LogProgress does nothing.
func (NullLogger) LogProgress(*CallCounter, int64, MessageFunc) {}

// LogMessage does nothing.
func (NullLogger) LogMessage(MessageFunc) {}

// LogPercent does nothing.
func (NullLogger) LogPercent(*CallCounter, float64, MessageFunc) error { return nil }

// Reset does nothing.
func (NullLogger) Reset(int64) {}

// Log returns a discarding logger.
func (NullLogger) Log() utils.Logger { return &utils.NullLogger{} }
