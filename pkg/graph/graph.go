// Package graph defines the read-only graph view consumed by the compute
// engine and a compact in-memory implementation of it.
//
// Nodes are identified by dense ids in 0..NodeCount()-1. Each node's
// neighbors are produced in non-decreasing order; the original id of a node
// (as known to the data source) is recovered with ToOriginalNodeID.
package graph

// Graph is an immutable adjacency view. Implementations must be safe for
// concurrent use by many goroutines and must not change while a computation
// holds them.
type Graph interface {
	// NodeCount returns the number of nodes N.
	NodeCount() int64
	// RelationshipCount returns the number of stored adjacency entries.
	RelationshipCount() int64
	// Degree returns the number of neighbor entries of nodeID.
	Degree(nodeID int64) int
	// ForEachNeighbor calls visit for each neighbor of nodeID in
	// non-decreasing order, stopping early when visit returns false.
	ForEachNeighbor(nodeID int64, visit func(target int64) bool)
	// ToOriginalNodeID maps a dense id back to the source id.
	ToOriginalNodeID(nodeID int64) int64
}

// Orientation controls how relationships are stored by the Builder.
type Orientation int

const (
	// Undirected stores every relationship in both directions.
	Undirected Orientation = iota
	// Natural stores relationships from source to target only.
	Natural
)

// String returns the string representation of Orientation.
func (o Orientation) String() string {
	switch o {
	case Undirected:
		return "undirected"
	case Natural:
		return "natural"
	default:
		return "unknown"
	}
}

// ParseOrientation parses an orientation name.
func ParseOrientation(s string) (Orientation, bool) {
	switch s {
	case "", "undirected":
		return Undirected, true
	case "natural", "directed":
		return Natural, true
	default:
		return 0, false
	}
}

// CollectNeighbors appends the neighbors of nodeID to buf and returns it.
// Workers reuse buf across nodes to avoid per-node allocations.
func CollectNeighbors(g Graph, nodeID int64, buf []int64) []int64 {
	buf = buf[:0]
	g.ForEachNeighbor(nodeID, func(target int64) bool {
		buf = append(buf, target)
		return true
	})
	return buf
}
