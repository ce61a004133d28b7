package progress

import (
	"math"
	"math/bits"
	"sync/atomic"

	apperrors "github.com/graph-metrics/pkg/errors"
	"github.com/graph-metrics/pkg/utils"
)

// MaximumLogInterval bounds the number of calls between two records of one worker.
const MaximumLogInterval int64 = 1 << 13

// DefaultOwner identifies LogMessage records until WithOwner is called.
const DefaultOwner = "main"

// BatchingLogger emits a record on every BatchSize-th call of each worker.
//
// The global progress is a single atomic accumulator; the sampling decision
// only reads the caller's own CallCounter, so the shared state is touched by
// one atomic add per call plus the rare emission.
type BatchingLogger struct {
	log        utils.Logger
	task       string
	owner      string
	taskVolume atomic.Int64
	batchSize  atomic.Int64
	progress   atomic.Int64
}

// NewBatchingLogger creates a logger whose batch size is derived from taskVolume.
func NewBatchingLogger(log utils.Logger, taskVolume int64, task string) *BatchingLogger {
	return NewBatchingLoggerWithBatchSize(log, taskVolume, CalculateBatchSize(taskVolume), task)
}

// NewBatchingLoggerWithBatchSize creates a logger with an explicit batch size.
// The size is rounded up to a power of two and clamped to [1, MaximumLogInterval].
func NewBatchingLoggerWithBatchSize(log utils.Logger, taskVolume, batchSize int64, task string) *BatchingLogger {
	if log == nil {
		log = &utils.NullLogger{}
	}
	l := &BatchingLogger{log: log, task: task, owner: DefaultOwner}
	l.taskVolume.Store(taskVolume)
	l.batchSize.Store(clampBatchSize(nextPowerOfTwo(batchSize)))
	return l
}

// CalculateBatchSize derives the sampling interval for a task volume:
// NearbyPowerOfTwo(volume) / 64, clamped to [1, MaximumLogInterval].
func CalculateBatchSize(taskVolume int64) int64 {
	return clampBatchSize(NearbyPowerOfTwo(taskVolume) >> 6)
}

func clampBatchSize(size int64) int64 {
	if size < 1 {
		return 1
	}
	if size > MaximumLogInterval {
		return MaximumLogInterval
	}
	return size
}

// NearbyPowerOfTwo returns the power of two closest to x, preferring the
// larger one on ties. Values <= 1 map to 1.
func NearbyPowerOfTwo(x int64) int64 {
	if x <= 1 {
		return 1
	}
	next := nextPowerOfTwo(x)
	if next == x {
		return x
	}
	prev := next >> 1
	if next-x <= x-prev {
		return next
	}
	return prev
}

func nextPowerOfTwo(x int64) int64 {
	if x <= 1 {
		return 1
	}
	if x > 1<<62 {
		return 1 << 62
	}
	return 1 << bits.Len64(uint64(x-1))
}

// LogProgress adds amount to the global progress and counts one call for the
// worker owning counter. A zero amount is ignored.
func (l *BatchingLogger) LogProgress(counter *CallCounter, amount int64, msg MessageFunc) {
	if amount == 0 {
		return
	}
	progress := l.progress.Add(amount)
	calls := counter.increment()

	if calls&(l.batchSize.Load()-1) != 0 {
		return
	}

	percent := l.percent(progress)
	if msg != nil {
		if m := msg(); m != "" {
			l.log.Info("[%s] %s %d%% %s", counter.Name(), l.task, percent, m)
			return
		}
	}
	l.log.Info("[%s] %s %d%%", counter.Name(), l.task, percent)
}

// WithOwner names the goroutine that calls LogMessage. It must be set before
// the logger is shared.
func (l *BatchingLogger) WithOwner(name string) *BatchingLogger {
	l.owner = name
	return l
}

// LogMessage emits a record unconditionally, prefixed with the owner name.
func (l *BatchingLogger) LogMessage(msg MessageFunc) {
	m := ""
	if msg != nil {
		m = msg()
	}
	l.log.Info("[%s] %s %s", l.owner, l.task, m)
}

// LogPercent is not supported: batching works on unit counts only.
func (l *BatchingLogger) LogPercent(*CallCounter, float64, MessageFunc) error {
	return apperrors.New(apperrors.CodeUnsupported, "batching progress logger does not support logging percentages")
}

// Reset replaces the task volume, recomputes the batch size and zeroes the
// global progress. It must not race with in-flight LogProgress calls.
func (l *BatchingLogger) Reset(newTaskVolume int64) {
	l.taskVolume.Store(newTaskVolume)
	l.batchSize.Store(CalculateBatchSize(newTaskVolume))
	l.progress.Store(0)
}

// Log returns the underlying record logger.
func (l *BatchingLogger) Log() utils.Logger {
	return l.log
}

// Task returns the task name printed in every record.
func (l *BatchingLogger) Task() string {
	return l.task
}

// TaskVolume returns the current task volume.
func (l *BatchingLogger) TaskVolume() int64 {
	return l.taskVolume.Load()
}

// BatchSize returns the current sampling interval.
func (l *BatchingLogger) BatchSize() int64 {
	return l.batchSize.Load()
}

// Progress returns the global progress.
func (l *BatchingLogger) Progress() int64 {
	return l.progress.Load()
}

// percent computes round(progress / taskVolume * 100) clamped to [0, 100].
func (l *BatchingLogger) percent(progress int64) int {
	volume := l.taskVolume.Load()
	if volume <= 0 {
		return 100
	}
	p := int(math.Round(float64(progress) / float64(volume) * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
