package parallel

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-metrics/pkg/errors"
)

func TestRangePartitioner_CoversRangeOnce(t *testing.T) {
	const total = 10_007
	p, err := NewRangePartitioner(total, 97)
	require.NoError(t, err)

	var mu sync.Mutex
	var batches []Range
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				r, ok := p.NextBatch()
				if !ok {
					return
				}
				mu.Lock()
				batches = append(batches, r)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	sort.Slice(batches, func(i, j int) bool { return batches[i].Start < batches[j].Start })
	next := int64(0)
	for _, b := range batches {
		assert.Equal(t, next, b.Start)
		assert.True(t, b.Len() > 0 && b.Len() <= 97)
		next = b.End
	}
	assert.Equal(t, int64(total), next)

	_, ok := p.NextBatch()
	assert.False(t, ok)
}

func TestRangePartitioner_Empty(t *testing.T) {
	p, err := NewRangePartitioner(0, 10)
	require.NoError(t, err)
	_, ok := p.NextBatch()
	assert.False(t, ok)
}

func TestNewRangePartitioner_InvalidArgs(t *testing.T) {
	_, err := NewRangePartitioner(-1, 10)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = NewRangePartitioner(10, 0)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestPartitions(t *testing.T) {
	assert.Equal(t, []Range{{0, 4}, {4, 8}, {8, 10}}, Partitions(10, 4))
	assert.Equal(t, []Range{{0, 3}}, Partitions(3, 10))
	assert.Nil(t, Partitions(0, 4))
}

func TestAdjustedBatchSize(t *testing.T) {
	tests := []struct {
		name        string
		total       int64
		concurrency int
		want        int64
	}{
		{"small graph uses minimum", 100, 4, MinBatchSize},
		{"mid graph", 1_000_000, 4, 62_500},
		{"huge graph uses maximum", 1 << 30, 2, MaxBatchSize},
		{"zero concurrency treated as one", 1024, 0, 256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdjustedBatchSize(tt.total, tt.concurrency))
		})
	}
}
