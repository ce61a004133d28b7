package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugawarayuuta/sonnet"

	"github.com/graph-metrics/internal/algorithm"
	"github.com/graph-metrics/pkg/compression"
	"github.com/graph-metrics/pkg/graph"
)

// triangleWithTail is 10-20-30 plus 30-40, keyed by original ids.
func triangleWithTail(t *testing.T) *graph.CSRGraph {
	t.Helper()
	b := graph.NewBuilder(graph.Undirected)
	b.AddRelationship(10, 20)
	b.AddRelationship(20, 30)
	b.AddRelationship(30, 10)
	b.AddRelationship(30, 40)
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestStreamTriangles(t *testing.T) {
	g := triangleWithTail(t)
	result, err := algorithm.IntersectingTriangleCount(context.Background(), g, algorithm.Config{Concurrency: 2})
	require.NoError(t, err)

	var rows []TriangleRow
	require.NoError(t, StreamTriangles(g, result, func(r TriangleRow) error {
		rows = append(rows, r)
		return nil
	}))

	assert.Equal(t, []TriangleRow{
		{NodeID: 10, Triangles: 1},
		{NodeID: 20, Triangles: 1},
		{NodeID: 30, Triangles: 1},
		{NodeID: 40, Triangles: 0},
	}, rows)
}

func TestStreamTriangles_StopsOnError(t *testing.T) {
	g := triangleWithTail(t)
	result, err := algorithm.IntersectingTriangleCount(context.Background(), g, algorithm.Config{Concurrency: 1})
	require.NoError(t, err)

	calls := 0
	err = StreamTriangles(g, result, func(TriangleRow) error {
		calls++
		return fmt.Errorf("sink full")
	})
	assert.EqualError(t, err, "sink full")
	assert.Equal(t, 1, calls)
}

func TestStreamCoefficients(t *testing.T) {
	g := triangleWithTail(t)
	result, err := algorithm.LocalClusteringCoefficient(context.Background(), g, algorithm.Config{Concurrency: 2})
	require.NoError(t, err)

	var rows []CoefficientRow
	require.NoError(t, StreamCoefficients(g, result, func(r CoefficientRow) error {
		rows = append(rows, r)
		return nil
	}))

	require.Len(t, rows, 4)
	assert.Equal(t, CoefficientRow{NodeID: 10, Triangles: 1, Coefficient: 1}, rows[0])
	assert.Equal(t, int64(30), rows[2].NodeID)
	assert.InDelta(t, 1.0/3.0, rows[2].Coefficient, 1e-12)
	assert.Equal(t, 0.0, rows[3].Coefficient)
}

func writeTriangleRows(rows ...TriangleRow) func(Writer) error {
	return func(w Writer) error {
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
		return nil
	}
}

func TestWriteFile_JSONL(t *testing.T) {
	for _, typ := range []compression.Type{compression.TypeNone, compression.TypeGzip, compression.TypeZstd} {
		t.Run(string(typ), func(t *testing.T) {
			opts := FileOptions{Dir: t.TempDir(), BaseName: "triangles", Format: FormatJSONL, Compression: typ}
			info, err := WriteFile(opts, writeTriangleRows(
				TriangleRow{NodeID: 7, Triangles: 2},
				TriangleRow{NodeID: 9, Triangles: 0},
			))
			require.NoError(t, err)
			assert.Equal(t, int64(2), info.Rows)
			assert.Equal(t, filepath.Join(opts.Dir, "triangles.jsonl"+typ.Extension()), info.Path)
			assert.Positive(t, info.Bytes)

			f, err := os.Open(info.Path)
			require.NoError(t, err)
			defer f.Close()
			r, err := compression.NewReader(f, typ)
			require.NoError(t, err)
			defer r.Close()

			var got []TriangleRow
			scanner := bufio.NewScanner(r)
			for scanner.Scan() {
				var row TriangleRow
				require.NoError(t, sonnet.Unmarshal(scanner.Bytes(), &row))
				got = append(got, row)
			}
			require.NoError(t, scanner.Err())
			assert.Equal(t, []TriangleRow{{7, 2}, {9, 0}}, got)
		})
	}
}

func TestJSONLWriter_OneRowPerLine(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, FormatJSONL)
	require.NoError(t, err)
	require.NoError(t, w.Write(TriangleRow{NodeID: 1, Triangles: 1}))
	require.NoError(t, w.Write(TriangleRow{NodeID: 2, Triangles: 1}))
	require.NoError(t, w.Close())

	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
	assert.Equal(t, []string{`{"nodeId":1,"triangles":1}`, `{"nodeId":2,"triangles":1}`},
		strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n"))
}

func TestWriteFile_CSV(t *testing.T) {
	opts := FileOptions{Dir: t.TempDir(), BaseName: "lcc", Format: FormatCSV, Compression: compression.TypeNone}
	info, err := WriteFile(opts, func(w Writer) error {
		if err := w.Write(CoefficientRow{NodeID: 1, Triangles: 1, Coefficient: 0.5}); err != nil {
			return err
		}
		return w.Write(CoefficientRow{NodeID: 2, Triangles: 0, Coefficient: 0})
	})
	require.NoError(t, err)

	f, err := os.Open(info.Path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"nodeId", "triangles", "localClusteringCoefficient"},
		{"1", "1", "0.5"},
		{"2", "0", "0"},
	}, records)
}

func TestWriteFile_RemovesPartialFile(t *testing.T) {
	opts := FileOptions{Dir: t.TempDir(), BaseName: "broken", Format: FormatCSV}
	_, err := WriteFile(opts, func(w Writer) error {
		return fmt.Errorf("stream aborted")
	})
	require.Error(t, err)
	_, statErr := os.Stat(opts.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("NDJSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, f)

	f, err = ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, ".csv", f.Extension())

	_, err = ParseFormat("parquet")
	assert.Error(t, err)
}

func TestSummaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	avg := 0.25
	s := &Summary{
		RunID:               "run-1",
		Algorithm:           "local_clustering_coefficient",
		NodeCount:           4,
		RelationshipCount:   8,
		Concurrency:         2,
		GlobalTriangleCount: 1,
		AverageCoefficient:  &avg,
		Duration:            1500 * time.Millisecond,
		CreatedAt:           time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Output:              &FileInfo{Path: "out.csv", Format: FormatCSV, Rows: 4},
	}

	path, err := WriteSummary(dir, s)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "summary.json"), path)

	got, err := ReadSummary(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), got.ComputeMillis)
	assert.Equal(t, "run-1", got.RunID)
	require.NotNil(t, got.AverageCoefficient)
	assert.Equal(t, 0.25, *got.AverageCoefficient)
	assert.Equal(t, int64(4), got.Output.Rows)
	assert.True(t, s.CreatedAt.Equal(got.CreatedAt))
}
