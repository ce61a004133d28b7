package parallel

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-metrics/pkg/errors"
)

func TestRun_AllWorkersStart(t *testing.T) {
	var seen [4]atomic.Bool
	err := Run(context.Background(), DefaultPoolConfig().WithWorkers(4), func(ctx context.Context, workerID int) error {
		seen[workerID].Store(true)
		return nil
	})
	require.NoError(t, err)
	for i := range seen {
		assert.True(t, seen[i].Load(), "worker %d did not run", i)
	}
}

func TestRun_FirstErrorCancelsOthers(t *testing.T) {
	boom := errors.New(errors.CodeInvalidInput, "bad node")
	err := Run(context.Background(), DefaultPoolConfig().WithWorkers(3), func(ctx context.Context, workerID int) error {
		if workerID == 0 {
			return boom
		}
		<-ctx.Done()
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestRun_PanicBecomesWorkerFailure(t *testing.T) {
	err := Run(context.Background(), DefaultPoolConfig().WithWorkers(2), func(ctx context.Context, workerID int) error {
		if workerID == 1 {
			panic("index out of range")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeWorkerFailure, errors.GetErrorCode(err))
	assert.Contains(t, err.Error(), "index out of range")
}

func TestRun_InvalidConfig(t *testing.T) {
	err := Run(context.Background(), PoolConfig{Workers: 0}, func(ctx context.Context, workerID int) error {
		return nil
	})
	assert.True(t, errors.IsInvalidInput(err))
}

func TestRun_Timeout(t *testing.T) {
	cfg := DefaultPoolConfig().WithWorkers(1).WithTimeout(10 * time.Millisecond)
	err := Run(context.Background(), cfg, func(ctx context.Context, workerID int) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTerminationFlag(t *testing.T) {
	t.Run("flips on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		flag := NewTerminationFlag(ctx)
		defer flag.Close()

		assert.True(t, flag.Running())
		assert.NoError(t, flag.Err())

		cancel()
		assert.Eventually(t, func() bool { return !flag.Running() }, time.Second, time.Millisecond)
		assert.True(t, errors.IsCancelled(flag.Err()))
	})

	t.Run("already cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		flag := NewTerminationFlag(ctx)
		defer flag.Close()
		assert.False(t, flag.Running())
	})

	t.Run("explicit stop", func(t *testing.T) {
		flag := NewTerminationFlag(context.Background())
		defer flag.Close()
		flag.Stop()
		assert.False(t, flag.Running())
		assert.True(t, errors.IsCancelled(flag.Err()))
	})
}
