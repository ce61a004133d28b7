package algorithm

import (
	"context"

	"github.com/graph-metrics/pkg/graph"
	"github.com/graph-metrics/pkg/paged"
)

// ClusteringCoefficientTask is the default task name of LocalClusteringCoefficient.
const ClusteringCoefficientTask = "LocalClusteringCoefficient"

// ClusteringResult holds the local clustering coefficient of every node.
type ClusteringResult struct {
	Coefficients       *paged.AtomicFloat64Array
	AverageCoefficient float64
	Triangles          *TriangleCountResult
}

// Release frees both result stores.
func (r *ClusteringResult) Release() int64 {
	return r.Coefficients.Release() + r.Triangles.Release()
}

// LocalClusteringCoefficient computes 2*t(v) / (d(v)*(d(v)-1)) for every
// node, where t(v) is its triangle count and d(v) its number of distinct
// neighbors. Nodes with fewer than two neighbors get 0. The triangle pass
// and the coefficient pass share one progress logger, reset in between.
func LocalClusteringCoefficient(ctx context.Context, g graph.Graph, cfg Config, opts ...Option) (*ClusteringResult, error) {
	cfg = cfg.withTaskName(ClusteringCoefficientTask)

	triangleKernel, err := NewKernel(g, cfg, opts...)
	if err != nil {
		return nil, err
	}
	triangles, err := countTriangles(ctx, triangleKernel)
	if err != nil {
		return nil, err
	}

	var limit []paged.Option
	if cfg.MaxResultBytes > 0 {
		remaining := cfg.MaxResultBytes - triangles.Triangles.SizeInBytes()
		limit = append(limit, paged.WithMemoryLimit(max(remaining, 1)))
	}
	coefficients, err := paged.NewAtomicFloat64Array(g.NodeCount(), 0, limit...)
	if err != nil {
		triangles.Release()
		return nil, err
	}

	pl := triangleKernel.Progress()
	pl.Reset(g.NodeCount())
	passOpts := append(append([]Option(nil), opts...), WithProgressLogger(pl))
	coefficientKernel, err := NewKernel(g, cfg, passOpts...)
	if err != nil {
		triangles.Release()
		coefficients.Release()
		return nil, err
	}

	err = coefficientKernel.Run(ctx, func(w *Worker, v int64) error {
		var err error
		w.Scratch, err = distinctNeighbors(g, v, w.Scratch)
		if err != nil {
			return err
		}
		d := float64(len(w.Scratch))
		if d < 2 {
			return nil
		}
		t := float64(triangles.Triangles.Get(v))
		coefficients.Set(v, 2*t/(d*(d-1)))
		return nil
	})
	if err != nil {
		triangles.Release()
		coefficients.Release()
		return nil, err
	}

	return &ClusteringResult{
		Coefficients:       coefficients,
		AverageCoefficient: averageOf(coefficients),
		Triangles:          triangles,
	}, nil
}

// averageOf sums in ascending id order so the result does not depend on
// scheduling.
func averageOf(values *paged.AtomicFloat64Array) float64 {
	n := values.Size()
	if n == 0 {
		return 0
	}
	var sum float64
	for i := int64(0); i < n; i++ {
		sum += values.Get(i)
	}
	return sum / float64(n)
}
