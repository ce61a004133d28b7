// Package export turns completed result stores into externally visible rows
// and writes them to files.
package export

import (
	"strconv"

	"github.com/graph-metrics/internal/algorithm"
	"github.com/graph-metrics/pkg/graph"
)

// Record is a row that can be written by every Writer.
type Record interface {
	CSVHeader() []string
	CSVFields() []string
}

// TriangleRow is one node's triangle count keyed by its original id.
type TriangleRow struct {
	NodeID    int64 `json:"nodeId"`
	Triangles int64 `json:"triangles"`
}

// CSVHeader implements Record.
func (TriangleRow) CSVHeader() []string { return []string{"nodeId", "triangles"} }

// CSVFields implements Record.
func (r TriangleRow) CSVFields() []string {
	return []string{strconv.FormatInt(r.NodeID, 10), strconv.FormatInt(r.Triangles, 10)}
}

// CoefficientRow is one node's local clustering coefficient.
type CoefficientRow struct {
	NodeID      int64   `json:"nodeId"`
	Triangles   int64   `json:"triangles"`
	Coefficient float64 `json:"localClusteringCoefficient"`
}

// CSVHeader implements Record.
func (CoefficientRow) CSVHeader() []string {
	return []string{"nodeId", "triangles", "localClusteringCoefficient"}
}

// CSVFields implements Record.
func (r CoefficientRow) CSVFields() []string {
	return []string{
		strconv.FormatInt(r.NodeID, 10),
		strconv.FormatInt(r.Triangles, 10),
		strconv.FormatFloat(r.Coefficient, 'g', -1, 64),
	}
}

// StreamTriangles calls fn for every node in ascending dense id order. It
// stops at the first error returned by fn.
func StreamTriangles(g graph.Graph, result *algorithm.TriangleCountResult, fn func(TriangleRow) error) error {
	for v := int64(0); v < g.NodeCount(); v++ {
		row := TriangleRow{
			NodeID:    g.ToOriginalNodeID(v),
			Triangles: result.Triangles.Get(v),
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// StreamCoefficients calls fn for every node in ascending dense id order.
func StreamCoefficients(g graph.Graph, result *algorithm.ClusteringResult, fn func(CoefficientRow) error) error {
	for v := int64(0); v < g.NodeCount(); v++ {
		row := CoefficientRow{
			NodeID:      g.ToOriginalNodeID(v),
			Triangles:   result.Triangles.Triangles.Get(v),
			Coefficient: result.Coefficients.Get(v),
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}
