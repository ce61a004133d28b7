// Package storage publishes run artifacts to object storage.
package storage

import (
	"context"
	"io"
	"path"

	"github.com/graph-metrics/pkg/config"
	"github.com/graph-metrics/pkg/errors"
)

// Storage defines the interface for object storage operations.
type Storage interface {
	// Upload uploads data from reader to the specified key.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// UploadFile uploads a local file to the specified key.
	UploadFile(ctx context.Context, key string, localPath string) error

	// Download downloads data from the specified key.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete deletes the object at the specified key.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the URL for the specified key.
	GetURL(key string) string
}

// StorageType represents the type of storage backend.
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeCOS   StorageType = "cos"
)

// NewStorage creates a new Storage instance based on the configuration.
func NewStorage(cfg *config.StorageConfig) (Storage, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	switch StorageType(cfg.Type) {
	case StorageTypeCOS:
		return NewCOSStorage(&COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
		})
	default:
		return NewLocalStorage(cfg.LocalPath)
	}
}

// ValidateConfig validates the storage configuration.
func ValidateConfig(cfg *config.StorageConfig) error {
	if cfg == nil {
		return errors.New(errors.CodeConfigError, "storage config is nil")
	}

	switch StorageType(cfg.Type) {
	case "", StorageTypeLocal:
		if cfg.LocalPath == "" {
			return errors.New(errors.CodeConfigError, "local storage path is required")
		}
	case StorageTypeCOS:
		if cfg.Bucket == "" {
			return errors.New(errors.CodeConfigError, "COS bucket is required")
		}
		if cfg.Region == "" {
			return errors.New(errors.CodeConfigError, "COS region is required")
		}
		if cfg.SecretID == "" || cfg.SecretKey == "" {
			return errors.New(errors.CodeConfigError, "COS credentials are required")
		}
	default:
		return errors.Newf(errors.CodeConfigError, "unsupported storage type: %s", cfg.Type)
	}
	return nil
}

// RunKey returns the object key of an artifact of a run.
func RunKey(prefix, runID, name string) string {
	return path.Join(prefix, runID, name)
}
