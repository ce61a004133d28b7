package paged

import (
	"fmt"

	apperrors "github.com/graph-metrics/pkg/errors"
)

const (
	// PageShift is log2 of the page size.
	PageShift = 14
	// PageSize is the number of cells per page.
	PageSize = 1 << PageShift
	// PageMask extracts the in-page offset from an index.
	PageMask = PageSize - 1

	cellBytes = 8
)

// Option configures array construction.
type Option func(*options)

type options struct {
	memoryLimit int64
}

// WithMemoryLimit refuses allocations whose page memory exceeds limit bytes.
// A limit <= 0 disables the check.
func WithMemoryLimit(limit int64) Option {
	return func(o *options) {
		o.memoryLimit = limit
	}
}

// PageCount returns the number of pages needed for size cells.
func PageCount(size int64) int {
	return int((size + PageMask) >> PageShift)
}

// MemoryEstimate returns the bytes occupied by the pages of an array of size cells.
func MemoryEstimate(size int64) int64 {
	return int64(PageCount(size)) * PageSize * cellBytes
}

// layout validates size against the options and returns the page count and
// the length of the last page.
func layout(size int64, opts []Option) (int, int, error) {
	if size < 0 {
		return 0, 0, apperrors.Newf(apperrors.CodeInvalidInput, "negative array size %d", size)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.memoryLimit > 0 {
		if need := MemoryEstimate(size); need > o.memoryLimit {
			return 0, 0, apperrors.Wrap(apperrors.CodeResource,
				fmt.Sprintf("cannot allocate %d cells", size),
				fmt.Errorf("need %d bytes, limit is %d bytes", need, o.memoryLimit))
		}
	}

	pages := PageCount(size)
	last := int(size - int64(pages-1)*PageSize)
	if pages == 0 {
		last = 0
	}
	return pages, last, nil
}

func checkIndex(index, size int64) {
	if index < 0 || index >= size {
		panic(fmt.Sprintf("paged: index %d out of range [0, %d)", index, size))
	}
}
