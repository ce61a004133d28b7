// Package repository persists computation runs and their per-node results.
package repository

import (
	"context"

	"github.com/graph-metrics/pkg/model"
)

// RunRepository stores run bookkeeping.
type RunRepository interface {
	// CreateRun inserts a new run and fills in its ID.
	CreateRun(ctx context.Context, run *model.Run) error

	// GetRun retrieves a run by its run ID.
	GetRun(ctx context.Context, runID string) (*model.Run, error)

	// MarkRunning moves a pending run to running and stamps its begin time.
	MarkRunning(ctx context.Context, runID string) error

	// FinishRun records the terminal status and result summary of a run.
	FinishRun(ctx context.Context, run *model.Run) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*model.Run, error)
}

// NodeMetricRepository stores per-node values.
type NodeMetricRepository interface {
	// SaveNodeMetrics inserts metrics in batches of batchSize rows.
	SaveNodeMetrics(ctx context.Context, metrics []model.NodeMetric, batchSize int) error

	// GetNodeMetrics pages through the metrics of a run ordered by node ID.
	GetNodeMetrics(ctx context.Context, runID string, offset, limit int) ([]model.NodeMetric, error)

	// CountNodeMetrics returns the number of stored metrics for a run.
	CountNodeMetrics(ctx context.Context, runID string) (int64, error)

	// DeleteNodeMetrics removes every metric of a run.
	DeleteNodeMetrics(ctx context.Context, runID string) error
}
