package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/graph-metrics/pkg/errors"
	"github.com/graph-metrics/pkg/model"
)

// GormRunRepository implements RunRepository using GORM.
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository.
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// CreateRun inserts a new run.
func (r *GormRunRepository) CreateRun(ctx context.Context, run *model.Run) error {
	record := runFromModel(run)
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to create run", err)
	}
	run.ID = record.ID
	run.CreateTime = record.CreateTime
	return nil
}

// GetRun retrieves a run by its run ID.
func (r *GormRunRepository) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var record ComputationRun
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "run not found: %s", runID)
		}
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to get run", err)
	}
	return record.ToModel(), nil
}

// MarkRunning moves a pending run to running.
func (r *GormRunRepository) MarkRunning(ctx context.Context, runID string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&ComputationRun{}).
		Where("run_id = ? AND status = ?", runID, model.RunStatusPending).
		Updates(map[string]interface{}{
			"status":     model.RunStatusRunning,
			"begin_time": now,
		})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to mark run running", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Newf(apperrors.CodeIllegalState, "run %s is not pending", runID)
	}
	return nil
}

// FinishRun records the terminal status and summary of a run.
func (r *GormRunRepository) FinishRun(ctx context.Context, run *model.Run) error {
	if !run.Status.IsTerminal() {
		return apperrors.Newf(apperrors.CodeIllegalState, "status %s is not terminal", run.Status)
	}
	end := time.Now()
	if run.EndTime != nil {
		end = *run.EndTime
	}
	result := r.db.WithContext(ctx).
		Model(&ComputationRun{}).
		Where("run_id = ?", run.RunID).
		Updates(map[string]interface{}{
			"status":                run.Status,
			"status_info":           run.StatusInfo,
			"node_count":            run.NodeCount,
			"relationship_count":    run.RelationshipCount,
			"global_triangle_count": run.GlobalTriangleCount,
			"average_coefficient":   run.AverageCoefficient,
			"result_file":           run.ResultFile,
			"end_time":              end,
		})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to finish run", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Newf(apperrors.CodeNotFound, "run not found: %s", run.RunID)
	}
	run.EndTime = &end
	return nil
}

// ListRuns returns the most recent runs.
func (r *GormRunRepository) ListRuns(ctx context.Context, limit int) ([]*model.Run, error) {
	var records []ComputationRun
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to list runs", err)
	}
	runs := make([]*model.Run, len(records))
	for i := range records {
		runs[i] = records[i].ToModel()
	}
	return runs, nil
}

// GormNodeMetricRepository implements NodeMetricRepository using GORM.
type GormNodeMetricRepository struct {
	db *gorm.DB
}

// NewGormNodeMetricRepository creates a new GormNodeMetricRepository.
func NewGormNodeMetricRepository(db *gorm.DB) *GormNodeMetricRepository {
	return &GormNodeMetricRepository{db: db}
}

// SaveNodeMetrics inserts metrics in batches.
func (r *GormNodeMetricRepository) SaveNodeMetrics(ctx context.Context, metrics []model.NodeMetric, batchSize int) error {
	if len(metrics) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 1000
	}

	records := make([]NodeMetricRecord, len(metrics))
	for i, m := range metrics {
		records[i] = NodeMetricRecord{
			RunID:     m.RunID,
			NodeID:    m.NodeID,
			Triangles: m.Triangles,
			Value:     m.Value,
		}
	}

	if err := r.db.WithContext(ctx).CreateInBatches(records, batchSize).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to save node metrics", err)
	}
	return nil
}

// GetNodeMetrics pages through the metrics of a run.
func (r *GormNodeMetricRepository) GetNodeMetrics(ctx context.Context, runID string, offset, limit int) ([]model.NodeMetric, error) {
	var records []NodeMetricRecord
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("node_id ASC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to get node metrics", err)
	}
	metrics := make([]model.NodeMetric, len(records))
	for i := range records {
		metrics[i] = records[i].ToModel()
	}
	return metrics, nil
}

// CountNodeMetrics returns the number of stored metrics for a run.
func (r *GormNodeMetricRepository) CountNodeMetrics(ctx context.Context, runID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&NodeMetricRecord{}).Where("run_id = ?", runID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count node metrics: %w", err)
	}
	return count, nil
}

// DeleteNodeMetrics removes every metric of a run.
func (r *GormNodeMetricRepository) DeleteNodeMetrics(ctx context.Context, runID string) error {
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).Delete(&NodeMetricRecord{}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to delete node metrics", err)
	}
	return nil
}
