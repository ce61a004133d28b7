package repository

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "github.com/graph-metrics/pkg/errors"
	"github.com/graph-metrics/pkg/model"
)

func TestDBConfig_Dialector(t *testing.T) {
	tests := []struct {
		dbType string
		name   string
	}{
		{"postgres", "postgres"},
		{"postgresql", "postgres"},
		{"mysql", "mysql"},
		{"sqlite", "sqlite"},
		{"sqlite3", "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			cfg := &DBConfig{Type: tt.dbType, Host: "localhost", Port: 5432, Database: "metrics"}
			d, err := cfg.Dialector()
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}

	_, err := (&DBConfig{Type: "oracle"}).Dialector()
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigError, apperrors.GetErrorCode(err))
}

func TestNewRepositories_SQLiteFile(t *testing.T) {
	cfg := &DBConfig{
		Type:     "sqlite",
		Path:     filepath.Join(t.TempDir(), "metrics.db"),
		MaxConns: 1,
		Tracing:  true,
	}
	db, err := NewGormDB(cfg)
	require.NoError(t, err)

	repos := NewRepositories(db)
	defer repos.Close()

	ctx := context.Background()
	require.NoError(t, repos.AutoMigrate(ctx))
	require.NoError(t, repos.HealthCheck(ctx))
	assert.NotNil(t, repos.DB())

	run := &model.Run{RunID: "file-run", Algorithm: model.AlgorithmLocalClusteringCoefficient}
	require.NoError(t, repos.Run.CreateRun(ctx, run))

	got, err := repos.Run.GetRun(ctx, "file-run")
	require.NoError(t, err)
	assert.Equal(t, model.AlgorithmLocalClusteringCoefficient, got.Algorithm)
	assert.Equal(t, model.RunStatusPending, got.Status)
}

func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGormRunRepository_Postgres(t *testing.T) {
	db, mock := newMockPostgres(t)
	repo := NewGormRunRepository(db)
	ctx := context.Background()

	t.Run("CreateRun", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "computation_runs"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
		mock.ExpectCommit()

		run := &model.Run{RunID: "pg-run", Algorithm: model.AlgorithmTriangleCount}
		require.NoError(t, repo.CreateRun(ctx, run))
		assert.Equal(t, int64(42), run.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MarkRunning", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "computation_runs"`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.MarkRunning(ctx, "pg-run"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MarkRunningNotPending", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "computation_runs"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.MarkRunning(ctx, "pg-run")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeIllegalState, apperrors.GetErrorCode(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateRunError", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "computation_runs"`)).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err := repo.CreateRun(ctx, &model.Run{RunID: "pg-run-2"})
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetErrorCode(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
