package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-metrics/pkg/config"
	"github.com/graph-metrics/pkg/errors"
)

func TestNewCOSStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     COSConfig
		wantErr string
	}{
		{"MissingBucket", COSConfig{Region: "ap-guangzhou", SecretID: "id", SecretKey: "key"}, "bucket and region are required"},
		{"MissingRegion", COSConfig{Bucket: "b", SecretID: "id", SecretKey: "key"}, "bucket and region are required"},
		{"MissingCredentials", COSConfig{Bucket: "b", Region: "ap-guangzhou"}, "credentials are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, err := NewCOSStorage(&tt.cfg)
			require.Error(t, err)
			assert.Nil(t, storage)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("ValidConfig", func(t *testing.T) {
		storage, err := NewCOSStorage(&COSConfig{
			Bucket:    "test-bucket",
			Region:    "ap-guangzhou",
			SecretID:  "test-id",
			SecretKey: "test-key",
		})
		require.NoError(t, err)
		assert.Equal(t, "https", storage.scheme)
		assert.Equal(t, "myqcloud.com", storage.domain)
	})
}

func TestCOSStorage_GetURL(t *testing.T) {
	storage, err := NewCOSStorage(&COSConfig{
		Bucket:    "my-bucket",
		Region:    "ap-guangzhou",
		SecretID:  "test-id",
		SecretKey: "test-key",
		Scheme:    "http",
	})
	require.NoError(t, err)

	url := storage.GetURL(RunKey("runs", "run-1", "triangles.jsonl"))
	assert.Equal(t, "http://my-bucket.cos.ap-guangzhou.myqcloud.com/runs/run-1/triangles.jsonl", url)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/x-ndjson", contentType("runs/r/triangles.jsonl"))
	assert.Equal(t, "text/csv", contentType("runs/r/triangles.CSV"))
	assert.Equal(t, "application/json", contentType("runs/r/summary.json"))
	assert.Equal(t, "application/zstd", contentType("runs/r/triangles.jsonl.zst"))
	assert.Equal(t, "application/gzip", contentType("runs/r/triangles.csv.gz"))
	assert.Equal(t, "application/octet-stream", contentType("runs/r/metrics"))
}

func TestNewStorage(t *testing.T) {
	t.Run("COS", func(t *testing.T) {
		storage, err := NewStorage(&config.StorageConfig{
			Type:      "cos",
			Bucket:    "test-bucket",
			Region:    "ap-guangzhou",
			SecretID:  "test-id",
			SecretKey: "test-key",
		})
		require.NoError(t, err)
		_, ok := storage.(*COSStorage)
		assert.True(t, ok)
	})

	t.Run("Local", func(t *testing.T) {
		storage, err := NewStorage(&config.StorageConfig{Type: "local", LocalPath: t.TempDir()})
		require.NoError(t, err)
		_, ok := storage.(*LocalStorage)
		assert.True(t, ok)
	})
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{"NilConfig", nil, "storage config is nil"},
		{"InvalidStorageType", &config.StorageConfig{Type: "s3"}, "unsupported storage type"},
		{"COSMissingBucket", &config.StorageConfig{Type: "cos", Region: "r", SecretID: "i", SecretKey: "k"}, "COS bucket is required"},
		{"COSMissingRegion", &config.StorageConfig{Type: "cos", Bucket: "b", SecretID: "i", SecretKey: "k"}, "COS region is required"},
		{"COSMissingCredentials", &config.StorageConfig{Type: "cos", Bucket: "b", Region: "r"}, "COS credentials are required"},
		{"LocalMissingPath", &config.StorageConfig{Type: "local"}, "local storage path is required"},
		{"EmptyTypeIsLocal", &config.StorageConfig{LocalPath: "/tmp/storage"}, ""},
		{"ValidCOSConfig", &config.StorageConfig{Type: "cos", Bucket: "b", Region: "r", SecretID: "i", SecretKey: "k"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, errors.CodeConfigError, errors.GetErrorCode(err))
		})
	}
}
