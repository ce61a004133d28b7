package algorithm

import (
	"github.com/graph-metrics/pkg/errors"
	"github.com/graph-metrics/pkg/graph"
)

// distinctNeighbors appends the neighbors of u to buf with duplicates and
// self-loops removed. A neighbor outside [0, N) or a decreasing sequence is
// an INVALID_INPUT error.
func distinctNeighbors(g graph.Graph, u int64, buf []int64) ([]int64, error) {
	n := g.NodeCount()
	buf = buf[:0]
	prev := int64(-1)
	var err error
	g.ForEachNeighbor(u, func(v int64) bool {
		switch {
		case v < 0 || v >= n:
			err = errors.Newf(errors.CodeInvalidInput, "node %d has neighbor %d outside [0,%d)", u, v, n)
			return false
		case v < prev:
			err = errors.Newf(errors.CodeInvalidInput, "node %d has unsorted neighbors: %d after %d", u, v, prev)
			return false
		case v == prev || v == u:
			prev = v
			return true
		}
		prev = v
		buf = append(buf, v)
		return true
	})
	return buf, err
}
