package graph

// CSRGraph stores adjacency in compressed sparse row form: the neighbors of
// node i are targets[offsets[i]:offsets[i+1]], sorted ascending.
type CSRGraph struct {
	offsets     []int64
	targets     []int64
	originalIDs []int64
}

// NewCSRGraph wraps prebuilt arrays. offsets must have len(originalIDs)+1
// entries; no validation is done here, use Validate at the boundary.
func NewCSRGraph(offsets, targets, originalIDs []int64) *CSRGraph {
	return &CSRGraph{offsets: offsets, targets: targets, originalIDs: originalIDs}
}

// NodeCount returns the number of nodes.
func (g *CSRGraph) NodeCount() int64 {
	return int64(len(g.originalIDs))
}

// RelationshipCount returns the number of adjacency entries.
func (g *CSRGraph) RelationshipCount() int64 {
	return int64(len(g.targets))
}

// Degree returns the number of neighbors of nodeID.
func (g *CSRGraph) Degree(nodeID int64) int {
	return int(g.offsets[nodeID+1] - g.offsets[nodeID])
}

// ForEachNeighbor visits the neighbors of nodeID in ascending order.
func (g *CSRGraph) ForEachNeighbor(nodeID int64, visit func(target int64) bool) {
	for _, t := range g.targets[g.offsets[nodeID]:g.offsets[nodeID+1]] {
		if !visit(t) {
			return
		}
	}
}

// Neighbors returns the neighbor slice of nodeID. The slice aliases the
// graph's storage and must not be modified.
func (g *CSRGraph) Neighbors(nodeID int64) []int64 {
	return g.targets[g.offsets[nodeID]:g.offsets[nodeID+1]]
}

// ToOriginalNodeID maps a dense id back to the source id.
func (g *CSRGraph) ToOriginalNodeID(nodeID int64) int64 {
	return g.originalIDs[nodeID]
}
