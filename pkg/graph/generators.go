package graph

import (
	"math/rand"

	"github.com/graph-metrics/pkg/errors"
)

// Empty returns a graph with n isolated nodes.
func Empty(n int64) (*CSRGraph, error) {
	return FromEdges(n, nil)
}

// Complete returns the complete undirected graph K_n.
func Complete(n int64) (*CSRGraph, error) {
	if n < 0 {
		return nil, errors.Newf(errors.CodeInvalidInput, "complete: n=%d < 0", n)
	}
	edges := make([][2]int64, 0, n*(n-1)/2)
	for i := int64(0); i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, [2]int64{i, j})
		}
	}
	return FromEdges(n, edges)
}

// Cycle returns the undirected cycle C_n. Requires n >= 3.
func Cycle(n int64) (*CSRGraph, error) {
	if n < 3 {
		return nil, errors.Newf(errors.CodeInvalidInput, "cycle: n=%d < 3", n)
	}
	edges := make([][2]int64, 0, n)
	for i := int64(0); i < n; i++ {
		edges = append(edges, [2]int64{i, (i + 1) % n})
	}
	return FromEdges(n, edges)
}

// Star returns a star with one hub (node 0) and n-1 leaves.
func Star(n int64) (*CSRGraph, error) {
	if n < 1 {
		return nil, errors.Newf(errors.CodeInvalidInput, "star: n=%d < 1", n)
	}
	edges := make([][2]int64, 0, n-1)
	for i := int64(1); i < n; i++ {
		edges = append(edges, [2]int64{0, i})
	}
	return FromEdges(n, edges)
}

// RandomSparse returns an Erdős–Rényi G(n, p) graph. Each unordered pair is
// included independently with probability p. The result is deterministic for
// a given seed.
func RandomSparse(n int64, p float64, seed int64) (*CSRGraph, error) {
	if n < 0 {
		return nil, errors.Newf(errors.CodeInvalidInput, "random sparse: n=%d < 0", n)
	}
	if p < 0 || p > 1 {
		return nil, errors.Newf(errors.CodeInvalidInput, "random sparse: p=%.6f not in [0,1]", p)
	}
	rng := rand.New(rand.NewSource(seed))
	var edges [][2]int64
	for i := int64(0); i < n; i++ {
		for j := i + 1; j < n; j++ {
			if p == 1 || (p > 0 && rng.Float64() < p) {
				edges = append(edges, [2]int64{i, j})
			}
		}
	}
	return FromEdges(n, edges)
}
