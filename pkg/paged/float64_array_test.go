package paged

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicFloat64Array_Defaults(t *testing.T) {
	arr, err := NewAtomicFloat64Array(PageSize+3, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 2, arr.PageCount())
	assert.Equal(t, 0.5, arr.Get(0))
	assert.Equal(t, 0.5, arr.Get(PageSize+2))
}

func TestAtomicFloat64Array_SetAndAdd(t *testing.T) {
	arr, err := NewAtomicFloat64Array(8, 0)
	require.NoError(t, err)

	arr.Set(3, 1.25)
	assert.Equal(t, 1.25, arr.Get(3))
	assert.Equal(t, 2.0, arr.Add(3, 0.75))
}

func TestAtomicFloat64Array_ConcurrentAdd(t *testing.T) {
	arr, err := NewAtomicFloat64Array(1, 0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				arr.Add(0, 1)
			}
		}()
	}
	wg.Wait()

	// Integral summands are exact, so the total is schedule independent.
	assert.Equal(t, 4000.0, arr.Get(0))
}

func TestAtomicFloat64Array_Release(t *testing.T) {
	arr, err := NewAtomicFloat64Array(10, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(80), arr.Release())
	assert.Equal(t, int64(0), arr.Size())
}
