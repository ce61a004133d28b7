package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-metrics/pkg/errors"
)

func TestLoad_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
input:
  path: /data/graph.txt
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "triangle_count", cfg.Compute.Algorithm)
	assert.Equal(t, 4, cfg.Compute.Concurrency)
	assert.Zero(t, cfg.Compute.BatchSize)
	assert.Zero(t, cfg.Compute.Timeout)
	assert.Equal(t, "edgelist", cfg.Input.Format)
	assert.Equal(t, "undirected", cfg.Input.Orientation)
	assert.Equal(t, "./output", cfg.Output.Dir)
	assert.Equal(t, "jsonl", cfg.Output.Format)
	assert.Equal(t, "none", cfg.Output.Compression)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 1000, cfg.Database.BatchSize)
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, "runs", cfg.Storage.Prefix)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_CustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
compute:
  algorithm: local_clustering_coefficient
  concurrency: 16
  batch_size: 512
  task_name: LCC
  timeout: 90s
input:
  path: /data/graph.adj.zst
  format: adjacency
  orientation: natural
  validate: true
output:
  dir: /tmp/out
  format: csv
  compression: zstd
database:
  enabled: true
  type: postgres
  host: db.example.com
  port: 5432
  database: graph_metrics
  user: admin
  password: secret
storage:
  enabled: true
  type: local
  local_path: /tmp/storage
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "local_clustering_coefficient", cfg.Compute.Algorithm)
	assert.Equal(t, 16, cfg.Compute.Concurrency)
	assert.Equal(t, 512, cfg.Compute.BatchSize)
	assert.Equal(t, "LCC", cfg.Compute.TaskName)
	assert.Equal(t, 90*time.Second, cfg.Compute.Timeout)
	assert.Equal(t, "adjacency", cfg.Input.Format)
	assert.True(t, cfg.Input.Validate)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "zstd", cfg.Output.Compression)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, "graph_metrics", cfg.Database.Database)
	assert.Equal(t, "/tmp/storage", cfg.Storage.LocalPath)
	assert.Equal(t, filepath.Join("/tmp/out", "run-1"), cfg.RunDir("run-1"))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "triangle_count", cfg.Compute.Algorithm)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("compute: [unclosed"), 0644))

	_, err := Load(configFile)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigError, errors.GetErrorCode(err))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GRAPH_METRICS_COMPUTE_CONCURRENCY", "12")
	t.Setenv("GRAPH_METRICS_INPUT_PATH", "/env/graph.txt")

	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Compute.Concurrency)
	assert.Equal(t, "/env/graph.txt", cfg.Input.Path)
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
compute:
  algorithm: lcc
input:
  path: g.txt
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, "lcc", cfg.Compute.Algorithm)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadFromReader("yaml", []byte("input:\n  path: g.txt\n"))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"Valid", func(*Config) {}, ""},
		{"UnknownAlgorithm", func(c *Config) { c.Compute.Algorithm = "pagerank" }, "unsupported algorithm"},
		{"ZeroConcurrency", func(c *Config) { c.Compute.Concurrency = 0 }, "concurrency must be at least 1"},
		{"NegativeBatch", func(c *Config) { c.Compute.BatchSize = -1 }, "must not be negative"},
		{"NegativeTimeout", func(c *Config) { c.Compute.Timeout = -time.Second }, "timeout must not be negative"},
		{"MissingInput", func(c *Config) { c.Input.Path = "" }, "input path is required"},
		{"BadInputFormat", func(c *Config) { c.Input.Format = "graphml" }, "unsupported input format"},
		{"BadOrientation", func(c *Config) { c.Input.Orientation = "reverse" }, "unsupported orientation"},
		{"MissingOutputDir", func(c *Config) { c.Output.Dir = "" }, "output dir is required"},
		{"BadOutputFormat", func(c *Config) { c.Output.Format = "parquet" }, "unsupported output format"},
		{"BadCompression", func(c *Config) { c.Output.Compression = "lz4" }, "invalid output compression"},
		{"DisabledDatabaseIgnored", func(c *Config) { c.Database.Type = "oracle" }, ""},
		{"BadDatabaseType", func(c *Config) {
			c.Database.Enabled = true
			c.Database.Type = "oracle"
		}, "unsupported database type"},
		{"MissingDatabaseHost", func(c *Config) {
			c.Database.Enabled = true
			c.Database.Type = "mysql"
			c.Database.Host = ""
		}, "database host is required"},
		{"SQLiteNeedsNoHost", func(c *Config) {
			c.Database.Enabled = true
			c.Database.Type = "sqlite"
			c.Database.Host = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
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
