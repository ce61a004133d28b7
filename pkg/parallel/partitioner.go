package parallel

import (
	"sync/atomic"

	"github.com/graph-metrics/pkg/errors"
)

const (
	// MinBatchSize is the smallest derived batch size.
	MinBatchSize int64 = 64
	// MaxBatchSize is the largest derived batch size.
	MaxBatchSize int64 = 1 << 16
	// batchesPerWorker controls how finely work is split for load balancing.
	batchesPerWorker int64 = 4
)

// Range is a half-open interval [Start, End) of node ids.
type Range struct {
	Start int64
	End   int64
}

// Len returns the number of ids in the range.
func (r Range) Len() int64 {
	return r.End - r.Start
}

// RangePartitioner hands out contiguous, disjoint batches of [0, total) to
// concurrent callers. Every id is handed out exactly once.
type RangePartitioner struct {
	total     int64
	batchSize int64
	cursor    atomic.Int64
}

// NewRangePartitioner creates a partitioner over [0, total).
func NewRangePartitioner(total, batchSize int64) (*RangePartitioner, error) {
	if total < 0 {
		return nil, errors.Newf(errors.CodeInvalidInput, "total must be >= 0, got %d", total)
	}
	if batchSize < 1 {
		return nil, errors.Newf(errors.CodeInvalidInput, "batch size must be >= 1, got %d", batchSize)
	}
	return &RangePartitioner{total: total, batchSize: batchSize}, nil
}

// NextBatch claims the next batch. ok is false once the range is exhausted.
func (p *RangePartitioner) NextBatch() (r Range, ok bool) {
	if p.cursor.Load() >= p.total {
		return Range{}, false
	}
	start := p.cursor.Add(p.batchSize) - p.batchSize
	if start >= p.total {
		return Range{}, false
	}
	end := start + p.batchSize
	if end > p.total {
		end = p.total
	}
	return Range{Start: start, End: end}, true
}

// Total returns the size of the partitioned range.
func (p *RangePartitioner) Total() int64 {
	return p.total
}

// BatchSize returns the size of each batch except possibly the last.
func (p *RangePartitioner) BatchSize() int64 {
	return p.batchSize
}

// Partitions splits [0, total) into contiguous ranges of at most batchSize.
func Partitions(total, batchSize int64) []Range {
	if total <= 0 || batchSize < 1 {
		return nil
	}
	ranges := make([]Range, 0, (total+batchSize-1)/batchSize)
	for start := int64(0); start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges
}

// AdjustedBatchSize derives a batch size for total ids and the given
// concurrency: ceil(total/(concurrency*4)) clamped to [MinBatchSize,
// MaxBatchSize].
func AdjustedBatchSize(total int64, concurrency int) int64 {
	if concurrency < 1 {
		concurrency = 1
	}
	parts := int64(concurrency) * batchesPerWorker
	size := (total + parts - 1) / parts
	if size < MinBatchSize {
		return MinBatchSize
	}
	if size > MaxBatchSize {
		return MaxBatchSize
	}
	return size
}
