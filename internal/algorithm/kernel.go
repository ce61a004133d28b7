// Package algorithm runs per-node computations over a graph.Graph on a fixed
// pool of workers and implements the metrics built on top of it.
package algorithm

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/graph-metrics/pkg/errors"
	"github.com/graph-metrics/pkg/graph"
	"github.com/graph-metrics/pkg/metrics"
	"github.com/graph-metrics/pkg/parallel"
	"github.com/graph-metrics/pkg/progress"
	"github.com/graph-metrics/pkg/telemetry"
	"github.com/graph-metrics/pkg/utils"
)

// coordinatorName identifies records logged by the goroutine driving Run.
const coordinatorName = "coordinator"

// Config configures a kernel run.
type Config struct {
	// Concurrency is the number of workers. Default: runtime.NumCPU().
	Concurrency int
	// BatchSize is the number of consecutive nodes a worker claims at once.
	// 0 derives it from the node count and concurrency.
	BatchSize int64
	// TaskName labels progress records and metrics.
	TaskName string
	// LogBatchSize overrides the derived progress sampling interval when > 0.
	LogBatchSize int64
	// MaxResultBytes caps result store memory. 0 means unlimited.
	MaxResultBytes int64
}

// DefaultConfig returns a configuration using every CPU.
func DefaultConfig() Config {
	return Config{
		Concurrency: parallel.DefaultPoolConfig().Workers,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Concurrency < 1 {
		return errors.Newf(errors.CodeInvalidInput, "concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.BatchSize < 0 {
		return errors.Newf(errors.CodeInvalidInput, "batch size must be >= 0, got %d", c.BatchSize)
	}
	if c.MaxResultBytes < 0 {
		return errors.Newf(errors.CodeInvalidInput, "max result bytes must be >= 0, got %d", c.MaxResultBytes)
	}
	return nil
}

func (c Config) withTaskName(name string) Config {
	if c.TaskName == "" {
		c.TaskName = name
	}
	return c
}

// Worker is the per-goroutine context handed to a NodeFunc. It is owned by a
// single goroutine; the scratch buffers may be reused freely between nodes.
type Worker struct {
	ID      int
	Counter *progress.CallCounter
	Scratch []int64
	Other   []int64
}

// NodeFunc computes the result for one node.
type NodeFunc func(w *Worker, nodeID int64) error

// Option configures a Kernel.
type Option func(*Kernel)

// WithProgressLogger sets the progress logger. By default a BatchingLogger
// sized to the node count is created.
func WithProgressLogger(p progress.Logger) Option {
	return func(k *Kernel) {
		k.progress = p
	}
}

// WithLogger sets the logger for lifecycle records.
func WithLogger(log utils.Logger) Option {
	return func(k *Kernel) {
		k.log = log
	}
}

// WithMetrics sets the metrics recorder. Default: metrics.Default().
func WithMetrics(r *metrics.Recorder) Option {
	return func(k *Kernel) {
		k.metrics = r
	}
}

// WithClock sets the clock used for run timing.
func WithClock(c utils.Clock) Option {
	return func(k *Kernel) {
		k.clock = c
	}
}

// Kernel drives one parallel pass over all nodes of a graph. A Kernel runs
// at most once.
type Kernel struct {
	cfg      Config
	graph    graph.Graph
	progress progress.Logger
	log      utils.Logger
	metrics  *metrics.Recorder
	clock    utils.Clock
	state    atomic.Int32
}

// NewKernel creates a kernel over g.
func NewKernel(g graph.Graph, cfg Config, opts ...Option) (*Kernel, error) {
	if g == nil {
		return nil, errors.New(errors.CodeInvalidInput, "graph is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	k := &Kernel{
		cfg:   cfg,
		graph: g,
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.log == nil {
		k.log = utils.GetGlobalLogger()
	}
	if k.metrics == nil {
		k.metrics = metrics.Default()
	}
	if k.clock == nil {
		k.clock = utils.NewRealClock()
	}
	if k.progress == nil {
		if cfg.LogBatchSize > 0 {
			k.progress = progress.NewBatchingLoggerWithBatchSize(k.log, g.NodeCount(), cfg.LogBatchSize, cfg.TaskName).WithOwner(coordinatorName)
		} else {
			k.progress = progress.NewBatchingLogger(k.log, g.NodeCount(), cfg.TaskName).WithOwner(coordinatorName)
		}
	}
	return k, nil
}

// State returns the current lifecycle state.
func (k *Kernel) State() State {
	return State(k.state.Load())
}

// Progress returns the progress logger used by the kernel.
func (k *Kernel) Progress() progress.Logger {
	return k.progress
}

// Config returns the kernel configuration.
func (k *Kernel) Config() Config {
	return k.cfg
}

// Run calls fn once for every node and blocks until all workers have
// returned. It returns nil when every node was processed, a CANCELLED error
// when ctx was cancelled first, and otherwise the first worker failure.
func (k *Kernel) Run(ctx context.Context, fn NodeFunc) (err error) {
	if !k.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) {
		return errors.Newf(errors.CodeIllegalState, "kernel %q already %s", k.cfg.TaskName, k.State())
	}

	n := k.graph.NodeCount()
	batchSize := k.cfg.BatchSize
	if batchSize == 0 {
		batchSize = parallel.AdjustedBatchSize(n, k.cfg.Concurrency)
	}

	ctx, span := telemetry.Tracer().Start(ctx, "algorithm.Kernel.Run",
		trace.WithAttributes(
			attribute.String("task", k.cfg.TaskName),
			attribute.Int64("node_count", n),
			attribute.Int("concurrency", k.cfg.Concurrency),
			attribute.Int64("batch_size", batchSize),
		),
	)
	defer span.End()

	start := k.clock.Now()
	var processed atomic.Int64
	defer func() {
		state := k.finish(err, processed.Load() == n)
		k.metrics.ObserveRun(k.cfg.TaskName, state.String(), k.clock.Since(start))
		span.SetAttributes(attribute.String("state", state.String()), attribute.Int64("processed", processed.Load()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, state.String())
		} else {
			span.SetStatus(codes.Ok, "completed")
		}
		k.log.Info("%s: %s after %s (%d/%d nodes)", k.cfg.TaskName, state, k.clock.Since(start), processed.Load(), n)
	}()

	partitioner, err := parallel.NewRangePartitioner(n, batchSize)
	if err != nil {
		return err
	}

	flag := parallel.NewTerminationFlag(ctx)
	defer flag.Close()

	k.progress.LogMessage(func() string {
		return fmt.Sprintf("starting on %d nodes with %d workers", n, k.cfg.Concurrency)
	})

	pool := parallel.PoolConfig{Workers: k.cfg.Concurrency}
	err = parallel.Run(ctx, pool, func(_ context.Context, workerID int) (werr error) {
		k.metrics.WorkerStarted()
		defer k.metrics.WorkerStopped()

		done := false
		defer func() {
			// Covers errors and panics: siblings stop at their next node.
			if !done {
				flag.Stop()
			}
		}()

		werr = k.work(workerID, partitioner, flag, &processed, fn)
		done = werr == nil
		return werr
	})
	if err != nil {
		if errors.GetErrorCode(err) == errors.CodeUnknown {
			err = errors.Wrap(errors.CodeWorkerFailure, "node computation failed", err)
		}
		return err
	}

	if processed.Load() != n {
		return flag.Err()
	}

	k.progress.LogMessage(func() string { return "finished" })
	return nil
}

func (k *Kernel) work(
	workerID int,
	partitioner *parallel.RangePartitioner,
	flag *parallel.TerminationFlag,
	processed *atomic.Int64,
	fn NodeFunc,
) error {
	w := &Worker{
		ID:      workerID,
		Counter: progress.NewCallCounter(fmt.Sprintf("worker-%d", workerID)),
	}

	for {
		batch, ok := partitioner.NextBatch()
		if !ok {
			return nil
		}

		var count int64
		for node := batch.Start; node < batch.End; node++ {
			if !flag.Running() {
				processed.Add(count)
				k.metrics.AddNodes(k.cfg.TaskName, count)
				return nil
			}
			if err := fn(w, node); err != nil {
				processed.Add(count)
				return err
			}
			count++
			k.progress.LogProgress(w.Counter, 1, progress.NoMessage)
		}
		processed.Add(count)
		k.metrics.AddNodes(k.cfg.TaskName, count)
	}
}

// finish moves the kernel to its terminal state.
func (k *Kernel) finish(err error, complete bool) State {
	state := StateCompleted
	switch {
	case err == nil && complete:
	case errors.IsCancelled(err):
		state = StateCancelled
	default:
		state = StateFailed
	}
	k.state.Store(int32(state))
	return state
}
