package repository

import (
	"time"

	"github.com/graph-metrics/pkg/model"
)

// ComputationRun represents the computation_runs table.
type ComputationRun struct {
	ID                  int64           `gorm:"column:id;primaryKey;autoIncrement"`
	RunID               string          `gorm:"column:run_id;type:varchar(64);uniqueIndex"`
	Algorithm           model.Algorithm `gorm:"column:algorithm;type:varchar(64)"`
	Status              model.RunStatus `gorm:"column:status"`
	StatusInfo          string          `gorm:"column:status_info;type:text"`
	InputPath           string          `gorm:"column:input_path;type:varchar(1024)"`
	NodeCount           int64           `gorm:"column:node_count"`
	RelationshipCount   int64           `gorm:"column:relationship_count"`
	Concurrency         int             `gorm:"column:concurrency"`
	GlobalTriangleCount int64           `gorm:"column:global_triangle_count"`
	AverageCoefficient  *float64        `gorm:"column:average_coefficient"`
	ResultFile          string          `gorm:"column:result_file;type:varchar(1024)"`
	CreateTime          time.Time       `gorm:"column:create_time;autoCreateTime"`
	BeginTime           *time.Time      `gorm:"column:begin_time"`
	EndTime             *time.Time      `gorm:"column:end_time"`
}

// TableName returns the table name for ComputationRun.
func (ComputationRun) TableName() string {
	return "computation_runs"
}

// ToModel converts ComputationRun to model.Run.
func (r *ComputationRun) ToModel() *model.Run {
	return &model.Run{
		ID:                  r.ID,
		RunID:               r.RunID,
		Algorithm:           r.Algorithm,
		Status:              r.Status,
		StatusInfo:          r.StatusInfo,
		InputPath:           r.InputPath,
		NodeCount:           r.NodeCount,
		RelationshipCount:   r.RelationshipCount,
		Concurrency:         r.Concurrency,
		GlobalTriangleCount: r.GlobalTriangleCount,
		AverageCoefficient:  r.AverageCoefficient,
		ResultFile:          r.ResultFile,
		CreateTime:          r.CreateTime,
		BeginTime:           r.BeginTime,
		EndTime:             r.EndTime,
	}
}

func runFromModel(run *model.Run) *ComputationRun {
	return &ComputationRun{
		ID:                  run.ID,
		RunID:               run.RunID,
		Algorithm:           run.Algorithm,
		Status:              run.Status,
		StatusInfo:          run.StatusInfo,
		InputPath:           run.InputPath,
		NodeCount:           run.NodeCount,
		RelationshipCount:   run.RelationshipCount,
		Concurrency:         run.Concurrency,
		GlobalTriangleCount: run.GlobalTriangleCount,
		AverageCoefficient:  run.AverageCoefficient,
		ResultFile:          run.ResultFile,
		CreateTime:          run.CreateTime,
		BeginTime:           run.BeginTime,
		EndTime:             run.EndTime,
	}
}

// NodeMetricRecord represents the node_metrics table.
type NodeMetricRecord struct {
	ID        int64   `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string  `gorm:"column:run_id;type:varchar(64);index:idx_node_metrics_run_node,priority:1"`
	NodeID    int64   `gorm:"column:node_id;index:idx_node_metrics_run_node,priority:2"`
	Triangles int64   `gorm:"column:triangles"`
	Value     float64 `gorm:"column:value"`
}

// TableName returns the table name for NodeMetricRecord.
func (NodeMetricRecord) TableName() string {
	return "node_metrics"
}

// ToModel converts NodeMetricRecord to model.NodeMetric.
func (r *NodeMetricRecord) ToModel() model.NodeMetric {
	return model.NodeMetric{
		RunID:     r.RunID,
		NodeID:    r.NodeID,
		Triangles: r.Triangles,
		Value:     r.Value,
	}
}

// AllModels lists every table for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{&ComputationRun{}, &NodeMetricRecord{}}
}
