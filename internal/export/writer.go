package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/sugawarayuuta/sonnet"
)

// Format is an output file format.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// ParseFormat parses an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatJSONL, "json", "ndjson":
		return FormatJSONL, nil
	case FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want jsonl or csv)", s)
	}
}

// Extension returns the file suffix for f.
func (f Format) Extension() string {
	if f == FormatCSV {
		return ".csv"
	}
	return ".jsonl"
}

// Writer writes records to an underlying stream.
type Writer interface {
	Write(rec Record) error
	// Close flushes buffered output. It does not close the underlying stream.
	Close() error
	// Rows returns the number of records written.
	Rows() int64
}

// NewWriter creates a Writer for format f on w.
func NewWriter(w io.Writer, f Format) (Writer, error) {
	switch f {
	case FormatJSONL, "":
		buf := bufio.NewWriter(w)
		return &jsonlWriter{buf: buf, enc: sonnet.NewEncoder(buf)}, nil
	case FormatCSV:
		return &csvWriter{w: csv.NewWriter(w)}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", f)
	}
}

type jsonlWriter struct {
	buf  *bufio.Writer
	enc  *sonnet.Encoder
	rows int64
}

func (w *jsonlWriter) Write(rec Record) error {
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode row %d: %w", w.rows, err)
	}
	// sonnet's Encode does not terminate the value.
	if err := w.buf.WriteByte('\n'); err != nil {
		return err
	}
	w.rows++
	return nil
}

func (w *jsonlWriter) Close() error {
	return w.buf.Flush()
}

func (w *jsonlWriter) Rows() int64 {
	return w.rows
}

type csvWriter struct {
	w    *csv.Writer
	rows int64
}

func (w *csvWriter) Write(rec Record) error {
	if w.rows == 0 {
		if err := w.w.Write(rec.CSVHeader()); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
	}
	if err := w.w.Write(rec.CSVFields()); err != nil {
		return fmt.Errorf("failed to write row %d: %w", w.rows, err)
	}
	w.rows++
	return nil
}

func (w *csvWriter) Close() error {
	w.w.Flush()
	return w.w.Error()
}

func (w *csvWriter) Rows() int64 {
	return w.rows
}
