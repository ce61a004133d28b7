package algorithm

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/graph-metrics/pkg/graph"
	"github.com/graph-metrics/pkg/paged"
)

// TriangleCountTask is the default task name of IntersectingTriangleCount.
const TriangleCountTask = "TriangleCount"

// TriangleCountResult holds the per-node triangle counts.
type TriangleCountResult struct {
	// Triangles[v] is the number of triangles v takes part in.
	Triangles *paged.AtomicInt64Array
	// GlobalTriangleCount is the number of distinct triangles.
	GlobalTriangleCount int64
}

// Release frees the result store.
func (r *TriangleCountResult) Release() int64 {
	return r.Triangles.Release()
}

// IntersectingTriangleCount counts, for every node, the triangles it belongs
// to. Node u enumerates neighbors v > u and common neighbors w > v by merging
// the sorted adjacency lists of u and v, so every triangle is found exactly
// once and credited to all three corners.
func IntersectingTriangleCount(ctx context.Context, g graph.Graph, cfg Config, opts ...Option) (*TriangleCountResult, error) {
	cfg = cfg.withTaskName(TriangleCountTask)
	kernel, err := NewKernel(g, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return countTriangles(ctx, kernel)
}

func countTriangles(ctx context.Context, kernel *Kernel) (*TriangleCountResult, error) {
	g := kernel.graph
	var limit []paged.Option
	if kernel.cfg.MaxResultBytes > 0 {
		limit = append(limit, paged.WithMemoryLimit(kernel.cfg.MaxResultBytes))
	}
	triangles, err := paged.NewAtomicInt64Array(g.NodeCount(), 0, limit...)
	if err != nil {
		kernel.finish(err, false)
		return nil, err
	}
	kernel.metrics.SetResultBytes(kernel.cfg.TaskName, triangles.SizeInBytes())

	var global atomic.Int64
	err = kernel.Run(ctx, func(w *Worker, u int64) error {
		var err error
		w.Scratch, err = distinctNeighbors(g, u, w.Scratch)
		if err != nil {
			return err
		}
		nu := w.Scratch

		// Skip to the first neighbor above u.
		first := sort.Search(len(nu), func(i int) bool { return nu[i] > u })

		var local int64
		for i := first; i < len(nu); i++ {
			v := nu[i]
			w.Other, err = distinctNeighbors(g, v, w.Other)
			if err != nil {
				return err
			}
			local += intersectAbove(triangles, nu[i+1:], w.Other, v)
		}
		if local > 0 {
			triangles.Add(u, local)
			global.Add(local)
		}
		return nil
	})
	if err != nil {
		triangles.Release()
		return nil, err
	}

	return &TriangleCountResult{
		Triangles:           triangles,
		GlobalTriangleCount: global.Load(),
	}, nil
}

// intersectAbove merges a (neighbors of u above v) with b (neighbors of v)
// and credits v and every common w > v once per match. It returns the number
// of matches, which the caller credits to u.
func intersectAbove(triangles *paged.AtomicInt64Array, a, b []int64, v int64) int64 {
	j := sort.Search(len(b), func(i int) bool { return b[i] > v })
	var found int64
	for i := 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			triangles.Add(a[i], 1)
			found++
			i++
			j++
		}
	}
	if found > 0 {
		triangles.Add(v, found)
	}
	return found
}
