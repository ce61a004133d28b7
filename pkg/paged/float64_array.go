package paged

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64Array is a paged array of float64 cells stored as IEEE-754 bits.
type AtomicFloat64Array struct {
	pages [][]uint64
	size  int64
}

// NewAtomicFloat64Array allocates size cells, all set to defaultValue.
func NewAtomicFloat64Array(size int64, defaultValue float64, opts ...Option) (*AtomicFloat64Array, error) {
	pageCount, lastLen, err := layout(size, opts)
	if err != nil {
		return nil, err
	}

	bits := math.Float64bits(defaultValue)
	pages := make([][]uint64, pageCount)
	for i := range pages {
		n := PageSize
		if i == pageCount-1 {
			n = lastLen
		}
		page := make([]uint64, n)
		if bits != 0 {
			for j := range page {
				page[j] = bits
			}
		}
		pages[i] = page
	}

	return &AtomicFloat64Array{pages: pages, size: size}, nil
}

// Size returns the number of cells.
func (a *AtomicFloat64Array) Size() int64 {
	return a.size
}

// PageCount returns the number of allocated pages.
func (a *AtomicFloat64Array) PageCount() int {
	return len(a.pages)
}

func (a *AtomicFloat64Array) cell(index int64) *uint64 {
	checkIndex(index, a.size)
	return &a.pages[index>>PageShift][index&PageMask]
}

// Get atomically loads the value at index.
func (a *AtomicFloat64Array) Get(index int64) float64 {
	return math.Float64frombits(atomic.LoadUint64(a.cell(index)))
}

// Set atomically stores value at index.
func (a *AtomicFloat64Array) Set(index int64, value float64) {
	atomic.StoreUint64(a.cell(index), math.Float64bits(value))
}

// Add atomically adds delta to the value at index and returns the new value.
// Floating-point addition is only order independent when the summands are
// exactly representable; callers that need bit-identical results across
// schedules should write each cell from a single worker with Set.
func (a *AtomicFloat64Array) Add(index int64, delta float64) float64 {
	c := a.cell(index)
	for {
		old := atomic.LoadUint64(c)
		next := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(c, old, math.Float64bits(next)) {
			return next
		}
	}
}

// Release drops every page. The array must not be used afterwards.
func (a *AtomicFloat64Array) Release() int64 {
	var freed int64
	for _, p := range a.pages {
		freed += int64(len(p)) * cellBytes
	}
	a.pages = nil
	a.size = 0
	return freed
}
