// Package loader builds graphs from edge-list and adjacency-list files.
package loader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/graph-metrics/pkg/compression"
	"github.com/graph-metrics/pkg/errors"
	"github.com/graph-metrics/pkg/graph"
	"github.com/graph-metrics/pkg/utils"
)

// Format is an input file layout.
type Format string

const (
	// FormatEdgeList has one "source target" pair per line.
	FormatEdgeList Format = "edgelist"
	// FormatAdjacency has "node neighbor neighbor ..." per line.
	FormatAdjacency Format = "adjacency"
)

// ParseFormat parses an input format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatEdgeList, "edges":
		return FormatEdgeList, nil
	case FormatAdjacency, "adj":
		return FormatAdjacency, nil
	default:
		return "", errors.Newf(errors.CodeInvalidInput, "unknown input format %q (want edgelist or adjacency)", s)
	}
}

// Options controls loading.
type Options struct {
	Format      Format
	Orientation graph.Orientation
	Logger      utils.Logger
}

// Stats describes what a load read.
type Stats struct {
	Lines            int64
	Relationships    int64
	DroppedSelfLoops int64
}

// checkEvery is how many lines are read between context checks.
const checkEvery = 1 << 16

// LoadFile reads the graph at path. gzip and zstd input is detected from the
// file header.
func LoadFile(ctx context.Context, path string, opts Options) (*graph.CSRGraph, *Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(errors.CodeNotFound, "failed to open input", err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 1<<16)
	head, _ := br.Peek(4)
	r, err := compression.NewReader(br, compression.Detect(head))
	if err != nil {
		return nil, nil, errors.Wrap(errors.CodeInvalidInput, "failed to open compressed input", err)
	}
	defer r.Close()

	g, stats, err := Load(ctx, r, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, stats, nil
}

// Load reads a graph from r.
func Load(ctx context.Context, r io.Reader, opts Options) (*graph.CSRGraph, *Stats, error) {
	log := opts.Logger
	if log == nil {
		log = utils.GetGlobalLogger()
	}
	format := opts.Format
	if format == "" {
		format = FormatEdgeList
	}

	b := graph.NewBuilder(opts.Orientation)
	stats := &Stats{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		stats.Lines++
		if stats.Lines%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, errors.Wrap(errors.CodeCancelled, "load cancelled", err)
			}
		}

		tok := splitLine(sc.Text())
		if len(tok) == 0 {
			continue
		}

		ids, err := parseIDs(tok)
		if err != nil {
			return nil, nil, errors.Wrap(errors.CodeInvalidInput, fmt.Sprintf("line %d", stats.Lines), err)
		}

		switch format {
		case FormatEdgeList:
			if len(ids) < 2 {
				return nil, nil, errors.Newf(errors.CodeInvalidInput, "line %d: want source and target, got %d fields", stats.Lines, len(ids))
			}
			b.AddRelationship(ids[0], ids[1])
			stats.Relationships++
		case FormatAdjacency:
			b.AddNode(ids[0])
			for _, v := range ids[1:] {
				b.AddRelationship(ids[0], v)
				stats.Relationships++
			}
		default:
			return nil, nil, errors.Newf(errors.CodeInvalidInput, "unknown input format %q", format)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, errors.Wrap(errors.CodeInvalidInput, "failed to read input", err)
	}

	stats.DroppedSelfLoops = b.DroppedSelfLoops()
	g, err := b.Build()
	if err != nil {
		return nil, nil, err
	}

	log.Info("Loaded graph: %d nodes, %d adjacency entries from %d lines (%d self-loops dropped)",
		g.NodeCount(), g.RelationshipCount(), stats.Lines, stats.DroppedSelfLoops)
	return g, stats, nil
}

// splitLine tokenizes a line on whitespace, commas and tabs. Lines starting
// with '#' or '%' are comments.
func splitLine(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' || line[0] == '%' {
		return nil
	}
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

func parseIDs(tok []string) ([]int64, error) {
	ids := make([]int64, len(tok))
	for i, s := range tok {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid node id %q", s)
		}
		ids[i] = id
	}
	return ids, nil
}
