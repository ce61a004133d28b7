// Package config provides configuration management for the graph-metrics service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/graph-metrics/pkg/compression"
	"github.com/graph-metrics/pkg/errors"
	"github.com/graph-metrics/pkg/graph"
	"github.com/graph-metrics/pkg/model"
	"github.com/graph-metrics/pkg/utils"
)

// EnvPrefix prefixes environment overrides, e.g. GRAPH_METRICS_COMPUTE_CONCURRENCY.
const EnvPrefix = "GRAPH_METRICS"

// Config holds all configuration for the application.
type Config struct {
	Compute  ComputeConfig  `mapstructure:"compute"`
	Input    InputConfig    `mapstructure:"input"`
	Output   OutputConfig   `mapstructure:"output"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
}

// ComputeConfig holds kernel configuration.
type ComputeConfig struct {
	Algorithm   string `mapstructure:"algorithm"`
	Concurrency int    `mapstructure:"concurrency"`
	// BatchSize of 0 derives the partition size from the node count.
	BatchSize int    `mapstructure:"batch_size"`
	TaskName  string `mapstructure:"task_name"`
	// LogBatchSize of 0 derives the progress batch from the node count.
	LogBatchSize   int           `mapstructure:"log_batch_size"`
	MaxResultBytes int64         `mapstructure:"max_result_bytes"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// InputConfig describes the graph file to load.
type InputConfig struct {
	Path        string `mapstructure:"path"`
	Format      string `mapstructure:"format"`      // edgelist or adjacency
	Orientation string `mapstructure:"orientation"` // undirected or natural
	Validate    bool   `mapstructure:"validate"`
}

// OutputConfig describes where results are written.
type OutputConfig struct {
	Dir         string `mapstructure:"dir"`
	Format      string `mapstructure:"format"`      // jsonl or csv
	Compression string `mapstructure:"compression"` // none, gzip or zstd
	// MetricsFile receives a Prometheus text dump after the run.
	MetricsFile string `mapstructure:"metrics_file"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"` // postgres, mysql or sqlite
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Database  string `mapstructure:"database"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	Path      string `mapstructure:"path"` // sqlite file
	MaxConns  int    `mapstructure:"max_conns"`
	BatchSize int    `mapstructure:"batch_size"`
	// SaveNodeMetrics also persists one row per node.
	SaveNodeMetrics bool `mapstructure:"save_node_metrics"`
}

// StorageConfig holds object storage configuration.
type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`     // e.g., "myqcloud.com"
	Scheme    string `mapstructure:"scheme"`     // e.g., "https" or "http"
	LocalPath string `mapstructure:"local_path"` // for local storage
	Prefix    string `mapstructure:"prefix"`     // key prefix for uploaded artifacts
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/graph-metrics")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			utils.GetGlobalLogger().Debug("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			utils.GetGlobalLogger().Warn("Config file %s not found, using defaults", configPath)
		} else {
			return nil, errors.Wrap(errors.CodeConfigError, "failed to read config file", err)
		}
	}

	return decode(v)
}

// LoadFromReader loads configuration from content (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := newViper()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, errors.Wrap(errors.CodeConfigError, "failed to read config", err)
	}
	return decode(v)
}

// Default returns the configuration built from defaults and the environment.
func Default() (*Config, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.CodeConfigError, "failed to unmarshal config", err)
	}
	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Compute defaults
	v.SetDefault("compute.algorithm", string(model.AlgorithmTriangleCount))
	v.SetDefault("compute.concurrency", 4)
	v.SetDefault("compute.batch_size", 0)
	v.SetDefault("compute.task_name", "")
	v.SetDefault("compute.log_batch_size", 0)
	v.SetDefault("compute.max_result_bytes", 0)
	v.SetDefault("compute.timeout", "0s")

	// Input defaults
	v.SetDefault("input.path", "")
	v.SetDefault("input.format", "edgelist")
	v.SetDefault("input.orientation", "undirected")
	v.SetDefault("input.validate", false)

	// Output defaults
	v.SetDefault("output.dir", "./output")
	v.SetDefault("output.format", "jsonl")
	v.SetDefault("output.compression", "none")
	v.SetDefault("output.metrics_file", "")

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.path", "./graph-metrics.db")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.batch_size", 1000)
	v.SetDefault("database.save_node_metrics", false)

	// Storage defaults
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./storage")
	v.SetDefault("storage.prefix", "runs")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, ok := model.ParseAlgorithm(c.Compute.Algorithm); !ok {
		return errors.Newf(errors.CodeConfigError, "unsupported algorithm: %s", c.Compute.Algorithm)
	}
	if c.Compute.Concurrency < 1 {
		return errors.New(errors.CodeConfigError, "concurrency must be at least 1")
	}
	if c.Compute.BatchSize < 0 || c.Compute.LogBatchSize < 0 || c.Compute.MaxResultBytes < 0 {
		return errors.New(errors.CodeConfigError, "batch sizes and memory limit must not be negative")
	}
	if c.Compute.Timeout < 0 {
		return errors.New(errors.CodeConfigError, "timeout must not be negative")
	}

	if c.Input.Path == "" {
		return errors.New(errors.CodeConfigError, "input path is required")
	}
	if !oneOf(c.Input.Format, "edgelist", "edges", "adjacency", "adj") {
		return errors.Newf(errors.CodeConfigError, "unsupported input format: %s", c.Input.Format)
	}
	if _, ok := graph.ParseOrientation(c.Input.Orientation); !ok {
		return errors.Newf(errors.CodeConfigError, "unsupported orientation: %s", c.Input.Orientation)
	}

	if c.Output.Dir == "" {
		return errors.New(errors.CodeConfigError, "output dir is required")
	}
	if !oneOf(c.Output.Format, "jsonl", "json", "ndjson", "csv") {
		return errors.Newf(errors.CodeConfigError, "unsupported output format: %s", c.Output.Format)
	}
	if _, err := compression.ParseType(c.Output.Compression); err != nil {
		return errors.Wrap(errors.CodeConfigError, "invalid output compression", err)
	}

	if c.Database.Enabled {
		switch c.Database.Type {
		case "postgres", "postgresql", "mysql":
			if c.Database.Host == "" {
				return errors.New(errors.CodeConfigError, "database host is required")
			}
		case "sqlite", "sqlite3":
		default:
			return errors.Newf(errors.CodeConfigError, "unsupported database type: %s", c.Database.Type)
		}
	}

	// Storage config validation is delegated to storage package

	return nil
}

// RunDir returns the output directory of a run.
func (c *Config) RunDir(runID string) string {
	return filepath.Join(c.Output.Dir, runID)
}

func oneOf(s string, options ...string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}

// String renders the compute section for logs.
func (c ComputeConfig) String() string {
	return fmt.Sprintf("algorithm=%s concurrency=%d batch=%d", c.Algorithm, c.Concurrency, c.BatchSize)
}
