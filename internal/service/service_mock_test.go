package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mocks "github.com/graph-metrics/internal/mock"
	"github.com/graph-metrics/internal/repository"
	"github.com/graph-metrics/internal/testutil"
	"github.com/graph-metrics/pkg/errors"
	"github.com/graph-metrics/pkg/model"
)

func newMockRepos() (*mocks.MockRunRepository, *mocks.MockNodeMetricRepository, *repository.Repositories) {
	runs := &mocks.MockRunRepository{}
	nodes := &mocks.MockNodeMetricRepository{}
	return runs, nodes, &repository.Repositories{Run: runs, Metric: nodes}
}

func TestService_MarkRunningFailure(t *testing.T) {
	cfg := newTestConfig(t, testutil.WriteFile(t, "graph.txt", triangleWithTail))
	runs, nodes, repos := newMockRepos()
	runs.ExpectCreateRun(nil)
	runs.ExpectMarkRunning("run-1", errors.New(errors.CodeIllegalState, "run run-1 is not pending"))
	runs.ExpectFinishRun(model.RunStatusFailed, nil)

	svc, _ := newTestService(t, cfg, WithRepositories(repos))
	res, err := svc.Compute(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, errors.CodeIllegalState, errors.GetErrorCode(err))

	runs.AssertExpectations(t)
	nodes.AssertNotCalled(t, "SaveNodeMetrics", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_FinishRunFailureIsLogged(t *testing.T) {
	cfg := newTestConfig(t, testutil.WriteFile(t, "graph.txt", triangleWithTail))
	runs, _, repos := newMockRepos()
	runs.ExpectCreateRun(nil)
	runs.ExpectMarkRunning("run-1", nil)
	runs.ExpectFinishRun(model.RunStatusCompleted, errors.New(errors.CodeDatabaseError, "connection reset"))

	svc, logger := newTestService(t, cfg, WithRepositories(repos))
	res, err := svc.Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, res.Run.Status)
	assert.Equal(t, 1, logger.Count("Failed to record status of run run-1"))
	runs.AssertExpectations(t)
}

func TestService_SavesNodeMetricsInBatches(t *testing.T) {
	cfg := newTestConfig(t, testutil.WriteFile(t, "graph.txt", triangleWithTail))
	cfg.Database.SaveNodeMetrics = true
	cfg.Database.BatchSize = 3

	runs, nodes, repos := newMockRepos()
	runs.ExpectCreateRun(nil)
	runs.ExpectMarkRunning("run-1", nil)
	runs.ExpectFinishRun(model.RunStatusCompleted, nil)
	nodes.On("SaveNodeMetrics", mock.Anything, mock.MatchedBy(func(batch []model.NodeMetric) bool {
		return len(batch) == 3
	}), 3).Return(nil).Once()
	nodes.On("SaveNodeMetrics", mock.Anything, mock.MatchedBy(func(batch []model.NodeMetric) bool {
		return len(batch) == 1 && batch[0].NodeID == 4 && batch[0].Triangles == 0
	}), 3).Return(nil).Once()

	svc, _ := newTestService(t, cfg, WithRepositories(repos))
	_, err := svc.Compute(context.Background())
	require.NoError(t, err)

	runs.AssertExpectations(t)
	nodes.AssertExpectations(t)
}

func TestService_NodeMetricFailureFailsRun(t *testing.T) {
	cfg := newTestConfig(t, testutil.WriteFile(t, "graph.txt", triangleWithTail))
	cfg.Database.SaveNodeMetrics = true

	runs, nodes, repos := newMockRepos()
	runs.ExpectCreateRun(nil)
	runs.ExpectMarkRunning("run-1", nil)
	runs.ExpectFinishRun(model.RunStatusFailed, nil)
	nodes.ExpectSaveNodeMetrics(errors.New(errors.CodeDatabaseError, "disk full"))

	svc, _ := newTestService(t, cfg, WithRepositories(repos))
	_, err := svc.Compute(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetErrorCode(err))
	runs.AssertExpectations(t)
}

func TestService_PublishRollsBack(t *testing.T) {
	cfg := newTestConfig(t, testutil.WriteFile(t, "graph.txt", triangleWithTail))
	cfg.Storage.Prefix = "runs"

	store := &mocks.MockStorage{}
	store.ExpectUploadFile("runs/run-1/triangles.jsonl", nil)
	store.ExpectUploadFile("runs/run-1/summary.json", errors.New(errors.CodeStorageError, "quota exceeded"))
	store.ExpectGetURL()
	store.ExpectDelete("runs/run-1/triangles.jsonl", nil)

	svc, _ := newTestService(t, cfg, WithStorage(store))
	_, err := svc.Compute(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeStorageError, errors.GetErrorCode(err))

	store.AssertExpectations(t)
	// Local output is kept for inspection.
	assert.FileExists(t, filepath.Join(cfg.RunDir("run-1"), "triangles.jsonl"))
}
