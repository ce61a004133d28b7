package graph

import (
	"github.com/graph-metrics/pkg/errors"
)

// Validate checks that every adjacency list of g is sorted and that every
// neighbor id lies in [0, NodeCount). It returns an INVALID_INPUT error for
// the first violation found.
func Validate(g Graph) error {
	n := g.NodeCount()
	if n < 0 {
		return errors.Newf(errors.CodeInvalidInput, "negative node count %d", n)
	}
	for u := int64(0); u < n; u++ {
		if err := ValidateNode(g, u); err != nil {
			return err
		}
	}
	return nil
}

// ValidateNode checks the adjacency list of a single node.
func ValidateNode(g Graph, u int64) error {
	n := g.NodeCount()
	var err error
	prev := int64(-1)
	g.ForEachNeighbor(u, func(v int64) bool {
		switch {
		case v < 0 || v >= n:
			err = errors.Newf(errors.CodeInvalidInput, "node %d has neighbor %d outside [0,%d)", u, v, n)
		case v < prev:
			err = errors.Newf(errors.CodeInvalidInput, "node %d adjacency not sorted: %d after %d", u, v, prev)
		}
		prev = v
		return err == nil
	})
	return err
}
