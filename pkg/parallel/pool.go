// Package parallel provides the work distribution primitives used by the
// compute kernels: a shared range partitioner, a cooperative termination
// flag and a fixed-size worker pool.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/graph-metrics/pkg/errors"
)

// ============================================================================
// Worker Pool Configuration
// ============================================================================

// PoolConfig configures the worker pool behavior.
type PoolConfig struct {
	// Workers is the number of concurrent workers.
	// Default: runtime.NumCPU()
	Workers int

	// Timeout is the maximum time for the entire run.
	// Default: 0 (no timeout)
	Timeout time.Duration
}

// DefaultPoolConfig returns a default pool configuration.
func DefaultPoolConfig() PoolConfig {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	return PoolConfig{
		Workers: workers,
	}
}

// WithWorkers returns a new config with the specified number of workers.
func (c PoolConfig) WithWorkers(n int) PoolConfig {
	c.Workers = n
	return c
}

// WithTimeout returns a new config with the specified timeout.
func (c PoolConfig) WithTimeout(d time.Duration) PoolConfig {
	c.Timeout = d
	return c
}

// Validate checks the configuration.
func (c PoolConfig) Validate() error {
	if c.Workers < 1 {
		return errors.Newf(errors.CodeInvalidInput, "workers must be >= 1, got %d", c.Workers)
	}
	if c.Timeout < 0 {
		return errors.Newf(errors.CodeInvalidInput, "timeout must be >= 0, got %s", c.Timeout)
	}
	return nil
}

// ============================================================================
// Worker Pool
// ============================================================================

// WorkerFunc is the body of a single worker. workerID is in [0, Workers).
type WorkerFunc func(ctx context.Context, workerID int) error

// Run starts config.Workers goroutines running fn and waits for all of them.
// The first worker error cancels the context seen by the others and is
// returned. A panicking worker is reported as a WORKER_FAILURE error.
func Run(ctx context.Context, config PoolConfig, fn WorkerFunc) error {
	if err := config.Validate(); err != nil {
		return err
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < config.Workers; i++ {
		workerID := i
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.Wrap(errors.CodeWorkerFailure,
						fmt.Sprintf("worker %d panicked", workerID),
						fmt.Errorf("%v\n%s", r, debug.Stack()))
				}
			}()
			return fn(gctx, workerID)
		})
	}
	return g.Wait()
}
