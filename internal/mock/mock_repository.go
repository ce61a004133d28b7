// Package mock provides mock implementations for testing.
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/graph-metrics/pkg/model"
)

// MockRunRepository is a mock implementation of repository.RunRepository.
type MockRunRepository struct {
	mock.Mock
}

// CreateRun mocks the CreateRun method. A successful call assigns ID 1.
func (m *MockRunRepository) CreateRun(ctx context.Context, run *model.Run) error {
	args := m.Called(ctx, run)
	if args.Error(0) == nil && run.ID == 0 {
		run.ID = 1
	}
	return args.Error(0)
}

// GetRun mocks the GetRun method.
func (m *MockRunRepository) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

// MarkRunning mocks the MarkRunning method.
func (m *MockRunRepository) MarkRunning(ctx context.Context, runID string) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}

// FinishRun mocks the FinishRun method.
func (m *MockRunRepository) FinishRun(ctx context.Context, run *model.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// ListRuns mocks the ListRuns method.
func (m *MockRunRepository) ListRuns(ctx context.Context, limit int) ([]*model.Run, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Run), args.Error(1)
}

// ExpectCreateRun sets up an expectation for CreateRun.
func (m *MockRunRepository) ExpectCreateRun(err error) *mock.Call {
	return m.On("CreateRun", mock.Anything, mock.AnythingOfType("*model.Run")).Return(err)
}

// ExpectMarkRunning sets up an expectation for MarkRunning.
func (m *MockRunRepository) ExpectMarkRunning(runID string, err error) *mock.Call {
	return m.On("MarkRunning", mock.Anything, runID).Return(err)
}

// ExpectFinishRun expects the run to finish with status.
func (m *MockRunRepository) ExpectFinishRun(status model.RunStatus, err error) *mock.Call {
	return m.On("FinishRun", mock.Anything, mock.MatchedBy(func(run *model.Run) bool {
		return run.Status == status
	})).Return(err)
}

// MockNodeMetricRepository is a mock implementation of repository.NodeMetricRepository.
type MockNodeMetricRepository struct {
	mock.Mock
}

// SaveNodeMetrics mocks the SaveNodeMetrics method. The slice is copied
// because callers reuse it between batches.
func (m *MockNodeMetricRepository) SaveNodeMetrics(ctx context.Context, metrics []model.NodeMetric, batchSize int) error {
	args := m.Called(ctx, append([]model.NodeMetric(nil), metrics...), batchSize)
	return args.Error(0)
}

// GetNodeMetrics mocks the GetNodeMetrics method.
func (m *MockNodeMetricRepository) GetNodeMetrics(ctx context.Context, runID string, offset, limit int) ([]model.NodeMetric, error) {
	args := m.Called(ctx, runID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NodeMetric), args.Error(1)
}

// CountNodeMetrics mocks the CountNodeMetrics method.
func (m *MockNodeMetricRepository) CountNodeMetrics(ctx context.Context, runID string) (int64, error) {
	args := m.Called(ctx, runID)
	return args.Get(0).(int64), args.Error(1)
}

// DeleteNodeMetrics mocks the DeleteNodeMetrics method.
func (m *MockNodeMetricRepository) DeleteNodeMetrics(ctx context.Context, runID string) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}

// ExpectSaveNodeMetrics sets up an expectation for SaveNodeMetrics.
func (m *MockNodeMetricRepository) ExpectSaveNodeMetrics(err error) *mock.Call {
	return m.On("SaveNodeMetrics", mock.Anything, mock.Anything, mock.Anything).Return(err)
}
