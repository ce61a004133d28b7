package algorithm

import (
	"github.com/graph-metrics/pkg/graph"
)

// sliceGraph serves raw adjacency lists, including malformed ones.
type sliceGraph struct {
	adj     [][]int64
	panicOn int64
}

func newSliceGraph(adj ...[]int64) *sliceGraph {
	return &sliceGraph{adj: adj, panicOn: -1}
}

func (g *sliceGraph) NodeCount() int64 { return int64(len(g.adj)) }

func (g *sliceGraph) RelationshipCount() int64 {
	var total int64
	for _, l := range g.adj {
		total += int64(len(l))
	}
	return total
}

func (g *sliceGraph) Degree(u int64) int { return len(g.adj[u]) }

func (g *sliceGraph) ForEachNeighbor(u int64, visit func(int64) bool) {
	if u == g.panicOn {
		panic("corrupt adjacency page")
	}
	for _, v := range g.adj[u] {
		if !visit(v) {
			return
		}
	}
}

func (g *sliceGraph) ToOriginalNodeID(u int64) int64 { return u + 1000 }

var _ graph.Graph = (*sliceGraph)(nil)

// bruteForceTriangles counts triangles per node with a cubic scan.
func bruteForceTriangles(g *graph.CSRGraph) []int64 {
	n := g.NodeCount()
	adjacent := make([]map[int64]bool, n)
	for u := int64(0); u < n; u++ {
		adjacent[u] = map[int64]bool{}
		for _, v := range g.Neighbors(u) {
			adjacent[u][v] = true
		}
	}
	counts := make([]int64, n)
	for u := int64(0); u < n; u++ {
		for v := u + 1; v < n; v++ {
			if !adjacent[u][v] {
				continue
			}
			for w := v + 1; w < n; w++ {
				if adjacent[u][w] && adjacent[v][w] {
					counts[u]++
					counts[v]++
					counts[w]++
				}
			}
		}
	}
	return counts
}

func testConfig(workers int) Config {
	return Config{Concurrency: workers}
}
