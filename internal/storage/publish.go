package storage

import (
	"context"
	"path/filepath"

	"github.com/graph-metrics/pkg/errors"
	"github.com/graph-metrics/pkg/utils"
)

// Artifact is an uploaded run file.
type Artifact struct {
	LocalPath string `json:"localPath"`
	Key       string `json:"key"`
	URL       string `json:"url"`
}

// Publisher uploads run outputs under prefix/runID/.
type Publisher struct {
	store  Storage
	prefix string
	logger utils.Logger
}

// NewPublisher creates a Publisher on store.
func NewPublisher(store Storage, prefix string, logger utils.Logger) *Publisher {
	if logger == nil {
		logger = utils.GetGlobalLogger()
	}
	return &Publisher{store: store, prefix: prefix, logger: logger}
}

// Publish uploads every file of a run. Files already uploaded by this call are
// deleted again when a later upload fails, so a run is published whole or not at all.
func (p *Publisher) Publish(ctx context.Context, runID string, files ...string) ([]Artifact, error) {
	artifacts := make([]Artifact, 0, len(files))
	for _, file := range files {
		key := RunKey(p.prefix, runID, filepath.Base(file))
		if err := p.store.UploadFile(ctx, key, file); err != nil {
			p.rollback(artifacts)
			return nil, errors.Wrap(errors.CodeStorageError, "failed to publish "+filepath.Base(file), err)
		}
		p.logger.Debug("uploaded %s to %s", file, key)
		artifacts = append(artifacts, Artifact{LocalPath: file, Key: key, URL: p.store.GetURL(key)})
	}
	return artifacts, nil
}

func (p *Publisher) rollback(artifacts []Artifact) {
	for _, a := range artifacts {
		// The caller's context may already be done.
		if err := p.store.Delete(context.Background(), a.Key); err != nil {
			p.logger.Warn("failed to remove %s after aborted publish: %v", a.Key, err)
		}
	}
}
