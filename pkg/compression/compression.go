// Package compression wraps export streams in gzip or zstd.
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Type is a compression algorithm.
type Type string

const (
	TypeNone Type = "none"
	TypeGzip Type = "gzip"
	TypeZstd Type = "zstd"
)

// Level is the compression level.
type Level int

const (
	// LevelFastest prioritizes speed over compression ratio
	LevelFastest Level = 1
	// LevelDefault balances speed and compression ratio
	LevelDefault Level = 3
	// LevelBest prioritizes compression ratio over speed
	LevelBest Level = 9
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// ParseType parses a compression name. The empty string means none.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case "", TypeNone:
		return TypeNone, nil
	case TypeGzip, TypeZstd:
		return t, nil
	default:
		return "", fmt.Errorf("unknown compression %q (want none, gzip or zstd)", s)
	}
}

// Extension returns the file suffix for t, including the dot.
func (t Type) Extension() string {
	switch t {
	case TypeGzip:
		return ".gz"
	case TypeZstd:
		return ".zst"
	default:
		return ""
	}
}

// Detect guesses the compression of data from its magic bytes.
func Detect(data []byte) Type {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return TypeGzip
	case bytes.HasPrefix(data, zstdMagic):
		return TypeZstd
	default:
		return TypeNone
	}
}

// NewWriter wraps w so that everything written is compressed with t.
// Closing the returned writer flushes the compressor but does not close w.
func NewWriter(w io.Writer, t Type, level Level) (io.WriteCloser, error) {
	switch t {
	case TypeNone, "":
		return nopWriteCloser{w}, nil
	case TypeGzip:
		gzipLevel := gzip.DefaultCompression
		switch level {
		case LevelFastest:
			gzipLevel = gzip.BestSpeed
		case LevelBest:
			gzipLevel = gzip.BestCompression
		}
		zw, err := gzip.NewWriterLevel(w, gzipLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
		return zw, nil
	case TypeZstd:
		zstdLevel := zstd.SpeedDefault
		switch level {
		case LevelFastest:
			zstdLevel = zstd.SpeedFastest
		case LevelBest:
			zstdLevel = zstd.SpeedBestCompression
		}
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstdLevel))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", t)
	}
}

// NewReader wraps r to decompress a stream written with t.
func NewReader(r io.Reader, t Type) (io.ReadCloser, error) {
	switch t {
	case TypeNone, "":
		return io.NopCloser(r), nil
	case TypeGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return zr, nil
	case TypeZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unknown compression %q", t)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
