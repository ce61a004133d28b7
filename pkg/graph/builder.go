package graph

import (
	"sort"

	"github.com/graph-metrics/pkg/errors"
)

// Builder assembles a CSRGraph from relationships keyed by original ids.
// Original ids receive dense ids in order of first appearance. Self-loops
// and parallel relationships are dropped. Builder is not safe for concurrent
// use.
type Builder struct {
	orientation Orientation
	idMap       map[int64]int64
	originalIDs []int64
	sources     []int64
	targets     []int64
	selfLoops   int64
}

// NewBuilder creates a builder with the given orientation.
func NewBuilder(orientation Orientation) *Builder {
	return &Builder{
		orientation: orientation,
		idMap:       make(map[int64]int64),
	}
}

// AddNode registers originalID and returns its dense id.
func (b *Builder) AddNode(originalID int64) int64 {
	if id, ok := b.idMap[originalID]; ok {
		return id
	}
	id := int64(len(b.originalIDs))
	b.idMap[originalID] = id
	b.originalIDs = append(b.originalIDs, originalID)
	return id
}

// AddRelationship registers both endpoints and the relationship between them.
func (b *Builder) AddRelationship(source, target int64) {
	s := b.AddNode(source)
	t := b.AddNode(target)
	if s == t {
		b.selfLoops++
		return
	}
	b.sources = append(b.sources, s)
	b.targets = append(b.targets, t)
}

// NodeCount returns the number of nodes registered so far.
func (b *Builder) NodeCount() int64 {
	return int64(len(b.originalIDs))
}

// DroppedSelfLoops returns how many self-loops were ignored.
func (b *Builder) DroppedSelfLoops() int64 {
	return b.selfLoops
}

// Build produces the CSR graph. The builder may not be reused afterwards.
func (b *Builder) Build() (*CSRGraph, error) {
	n := int64(len(b.originalIDs))
	entries := int64(len(b.sources))
	if b.orientation == Undirected {
		entries *= 2
	}
	if entries < 0 {
		return nil, errors.New(errors.CodeResource, "relationship count overflow")
	}

	degrees := make([]int64, n+1)
	for i := range b.sources {
		degrees[b.sources[i]]++
		if b.orientation == Undirected {
			degrees[b.targets[i]]++
		}
	}

	offsets := make([]int64, n+1)
	for i := int64(0); i < n; i++ {
		offsets[i+1] = offsets[i] + degrees[i]
	}

	cursor := make([]int64, n)
	copy(cursor, offsets[:n])
	targets := make([]int64, entries)
	for i := range b.sources {
		s, t := b.sources[i], b.targets[i]
		targets[cursor[s]] = t
		cursor[s]++
		if b.orientation == Undirected {
			targets[cursor[t]] = s
			cursor[t]++
		}
	}

	// Sort each adjacency list and compact duplicates in place.
	compacted := int64(0)
	newOffsets := make([]int64, n+1)
	for i := int64(0); i < n; i++ {
		list := targets[offsets[i]:offsets[i+1]]
		sort.Slice(list, func(a, c int) bool { return list[a] < list[c] })
		newOffsets[i] = compacted
		for j, t := range list {
			if j > 0 && t == list[j-1] {
				continue
			}
			targets[compacted] = t
			compacted++
		}
	}
	newOffsets[n] = compacted

	g := NewCSRGraph(newOffsets, targets[:compacted:compacted], b.originalIDs)

	b.idMap = nil
	b.sources = nil
	b.targets = nil
	return g, nil
}

// FromEdges is a convenience constructor for undirected graphs whose node ids
// are already dense 0..n-1. Nodes without relationships are kept.
func FromEdges(n int64, edges [][2]int64) (*CSRGraph, error) {
	if n < 0 {
		return nil, errors.Newf(errors.CodeInvalidInput, "negative node count %d", n)
	}
	b := NewBuilder(Undirected)
	for i := int64(0); i < n; i++ {
		b.AddNode(i)
	}
	for _, e := range edges {
		if e[0] < 0 || e[0] >= n || e[1] < 0 || e[1] >= n {
			return nil, errors.Newf(errors.CodeInvalidInput, "edge (%d,%d) outside node range [0,%d)", e[0], e[1], n)
		}
		b.AddRelationship(e[0], e[1])
	}
	return b.Build()
}
