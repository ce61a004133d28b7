// Package model defines the data structures shared by the service layers.
package model

import (
	"strings"
	"time"
)

// Algorithm identifies the metric a run computes.
type Algorithm string

const (
	AlgorithmTriangleCount              Algorithm = "triangle_count"
	AlgorithmLocalClusteringCoefficient Algorithm = "local_clustering_coefficient"
)

// ParseAlgorithm parses an algorithm name. Dashes and case are ignored.
func ParseAlgorithm(s string) (Algorithm, bool) {
	a := Algorithm(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch a {
	case AlgorithmTriangleCount, "triangles":
		return AlgorithmTriangleCount, true
	case AlgorithmLocalClusteringCoefficient, "lcc":
		return AlgorithmLocalClusteringCoefficient, true
	default:
		return "", false
	}
}

// MetricName returns the column name of the per-node value.
func (a Algorithm) MetricName() string {
	switch a {
	case AlgorithmTriangleCount:
		return "triangles"
	case AlgorithmLocalClusteringCoefficient:
		return "localClusteringCoefficient"
	default:
		return "value"
	}
}

// RunStatus is the persisted status of a computation run.
type RunStatus int

const (
	RunStatusPending   RunStatus = 0
	RunStatusRunning   RunStatus = 1
	RunStatusCompleted RunStatus = 2
	RunStatusFailed    RunStatus = 3
	RunStatusCancelled RunStatus = 4
)

// String returns the string representation of RunStatus.
func (s RunStatus) String() string {
	switch s {
	case RunStatusPending:
		return "pending"
	case RunStatusRunning:
		return "running"
	case RunStatusCompleted:
		return "completed"
	case RunStatusFailed:
		return "failed"
	case RunStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the run has finished.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed || s == RunStatusCancelled
}

// Run is one execution of an algorithm over a graph.
type Run struct {
	ID                  int64      `json:"id"`
	RunID               string     `json:"run_id"`
	Algorithm           Algorithm  `json:"algorithm"`
	Status              RunStatus  `json:"status"`
	StatusInfo          string     `json:"status_info,omitempty"`
	InputPath           string     `json:"input_path"`
	NodeCount           int64      `json:"node_count"`
	RelationshipCount   int64      `json:"relationship_count"`
	Concurrency         int        `json:"concurrency"`
	GlobalTriangleCount int64      `json:"global_triangle_count"`
	AverageCoefficient  *float64   `json:"average_coefficient,omitempty"`
	ResultFile          string     `json:"result_file,omitempty"`
	CreateTime          time.Time  `json:"create_time"`
	BeginTime           *time.Time `json:"begin_time,omitempty"`
	EndTime             *time.Time `json:"end_time,omitempty"`
}

// NodeMetric is one node's value in a run.
type NodeMetric struct {
	RunID     string  `json:"run_id"`
	NodeID    int64   `json:"node_id"`
	Triangles int64   `json:"triangles"`
	Value     float64 `json:"value"`
}
