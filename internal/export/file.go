package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sugawarayuuta/sonnet"

	"github.com/graph-metrics/pkg/compression"
	"github.com/graph-metrics/pkg/errors"
)

// FileOptions controls how a result file is written.
type FileOptions struct {
	Dir         string
	BaseName    string
	Format      Format
	Compression compression.Type
}

// Path returns the file path the options resolve to.
func (o FileOptions) Path() string {
	return filepath.Join(o.Dir, o.BaseName+o.Format.Extension()+o.Compression.Extension())
}

// FileInfo describes a written result file.
type FileInfo struct {
	Path        string           `json:"path"`
	Format      Format           `json:"format"`
	Compression compression.Type `json:"compression"`
	Rows        int64            `json:"rows"`
	Bytes       int64            `json:"bytes"`
}

// WriteFile creates the result file and hands a Writer to fill to write.
// A partially written file is removed when write or any flush fails.
func WriteFile(opts FileOptions, write func(Writer) error) (info *FileInfo, err error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to create output directory", err)
	}

	path := opts.Path()
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "failed to create output file", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(path)
		}
	}()

	zw, err := compression.NewWriter(f, opts.Compression, compression.LevelDefault)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(zw, opts.Format)
	if err != nil {
		return nil, err
	}

	if err = write(w); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush rows: %w", err)
	}
	if err = zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush compressor: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if err = f.Close(); err != nil {
		return nil, err
	}

	return &FileInfo{
		Path:        path,
		Format:      opts.Format,
		Compression: opts.Compression,
		Rows:        w.Rows(),
		Bytes:       stat.Size(),
	}, nil
}

// Summary is written next to the result file after a run.
type Summary struct {
	RunID               string        `json:"runId"`
	Algorithm           string        `json:"algorithm"`
	Input               string        `json:"input"`
	NodeCount           int64         `json:"nodeCount"`
	RelationshipCount   int64         `json:"relationshipCount"`
	Concurrency         int           `json:"concurrency"`
	GlobalTriangleCount int64         `json:"globalTriangleCount"`
	AverageCoefficient  *float64      `json:"averageClusteringCoefficient,omitempty"`
	ComputeMillis       int64         `json:"computeMillis"`
	Output              *FileInfo     `json:"output,omitempty"`
	CreatedAt           time.Time     `json:"createdAt"`
	Duration            time.Duration `json:"-"`
}

// WriteSummary writes s as JSON to dir/summary.json and returns the path.
func WriteSummary(dir string, s *Summary) (string, error) {
	s.ComputeMillis = s.Duration.Milliseconds()
	data, err := sonnet.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}
	path := filepath.Join(dir, "summary.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", errors.Wrap(errors.CodeStorageError, "failed to write summary", err)
	}
	return path, nil
}

// ReadSummary loads a summary written by WriteSummary.
func ReadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Summary
	if err := sonnet.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	return &s, nil
}
