package paged

import "sync/atomic"

// AtomicInt64Array is a paged array of int64 cells with atomic access.
type AtomicInt64Array struct {
	pages [][]int64
	size  int64
}

// NewAtomicInt64Array allocates size cells, all set to defaultValue.
func NewAtomicInt64Array(size int64, defaultValue int64, opts ...Option) (*AtomicInt64Array, error) {
	pageCount, lastLen, err := layout(size, opts)
	if err != nil {
		return nil, err
	}

	pages := make([][]int64, pageCount)
	for i := range pages {
		n := PageSize
		if i == pageCount-1 {
			n = lastLen
		}
		page := make([]int64, n)
		if defaultValue != 0 {
			for j := range page {
				page[j] = defaultValue
			}
		}
		pages[i] = page
	}

	return &AtomicInt64Array{pages: pages, size: size}, nil
}

// Size returns the number of cells.
func (a *AtomicInt64Array) Size() int64 {
	return a.size
}

// PageCount returns the number of allocated pages.
func (a *AtomicInt64Array) PageCount() int {
	return len(a.pages)
}

// SizeInBytes returns the bytes held by the cells.
func (a *AtomicInt64Array) SizeInBytes() int64 {
	var total int64
	for _, p := range a.pages {
		total += int64(len(p)) * cellBytes
	}
	return total
}

func (a *AtomicInt64Array) cell(index int64) *int64 {
	checkIndex(index, a.size)
	return &a.pages[index>>PageShift][index&PageMask]
}

// Get atomically loads the value at index.
func (a *AtomicInt64Array) Get(index int64) int64 {
	return atomic.LoadInt64(a.cell(index))
}

// Set atomically stores value at index.
func (a *AtomicInt64Array) Set(index int64, value int64) {
	atomic.StoreInt64(a.cell(index), value)
}

// Add atomically adds delta to the value at index and returns the new value.
func (a *AtomicInt64Array) Add(index int64, delta int64) int64 {
	return atomic.AddInt64(a.cell(index), delta)
}

// CompareAndSet replaces the value at index with update if it equals expect.
func (a *AtomicInt64Array) CompareAndSet(index int64, expect, update int64) bool {
	return atomic.CompareAndSwapInt64(a.cell(index), expect, update)
}

// Sum returns the total of all cells. Not linearizable against concurrent writers.
func (a *AtomicInt64Array) Sum() int64 {
	var total int64
	for _, p := range a.pages {
		for i := range p {
			total += atomic.LoadInt64(&p[i])
		}
	}
	return total
}

// Release drops every page. The array must not be used afterwards.
// It returns the number of bytes released.
func (a *AtomicInt64Array) Release() int64 {
	freed := a.SizeInBytes()
	a.pages = nil
	a.size = 0
	return freed
}
