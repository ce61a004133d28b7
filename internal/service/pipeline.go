package service

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/graph-metrics/internal/algorithm"
	"github.com/graph-metrics/internal/export"
	"github.com/graph-metrics/internal/loader"
	"github.com/graph-metrics/internal/storage"
	"github.com/graph-metrics/pkg/compression"
	"github.com/graph-metrics/pkg/errors"
	"github.com/graph-metrics/pkg/graph"
	"github.com/graph-metrics/pkg/metrics"
	"github.com/graph-metrics/pkg/model"
	"github.com/graph-metrics/pkg/telemetry"
)

// Result describes a finished run.
type Result struct {
	Run         *model.Run
	Summary     *export.Summary
	Output      *export.FileInfo
	SummaryPath string
	Artifacts   []storage.Artifact
}

// outcome adapts the result of one algorithm to the export and persistence steps.
type outcome struct {
	globalTriangles int64
	average         *float64
	write           func(export.Writer) error
	visit           func(runID string, fn func(model.NodeMetric) error) error
	release         func() int64
}

// Compute loads the configured graph, runs the configured algorithm and
// exports, publishes and records the result. The run row is always moved to
// a terminal status, also when a step fails.
func (s *Service) Compute(ctx context.Context) (res *Result, err error) {
	algo, _ := model.ParseAlgorithm(s.config.Compute.Algorithm)
	run := &model.Run{
		RunID:       s.newRunID(),
		Algorithm:   algo,
		Status:      model.RunStatusPending,
		InputPath:   s.config.Input.Path,
		Concurrency: s.config.Compute.Concurrency,
		CreateTime:  s.clock.Now(),
	}
	log := s.logger.WithFields(map[string]interface{}{"run": run.RunID, "algorithm": string(algo)})

	ctx, span := telemetry.Tracer().Start(ctx, "service.Compute",
		trace.WithAttributes(
			attribute.String("run.id", run.RunID),
			attribute.String("algorithm", string(algo)),
			attribute.String("input.path", run.InputPath),
		),
	)
	defer span.End()

	if s.config.Compute.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Compute.Timeout)
		defer cancel()
	}

	if s.repos != nil {
		if err := s.repos.Run.CreateRun(ctx, run); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "create run failed")
			return nil, err
		}
	}

	defer func() {
		s.finishRun(ctx, run, err)
		span.SetAttributes(attribute.String("run.status", run.Status.String()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, run.Status.String())
			log.Error("Run %s: %v", run.Status, err)
			return
		}
		span.SetStatus(codes.Ok, "")
		log.Info("Run completed in %s", run.EndTime.Sub(run.CreateTime).Round(time.Millisecond))
	}()

	var g *graph.CSRGraph
	err = stage(ctx, "service.load", func(ctx context.Context) error {
		g, err = s.load(ctx)
		if err != nil {
			return err
		}
		run.NodeCount = g.NodeCount()
		run.RelationshipCount = g.RelationshipCount()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.config.Input.Validate {
		if err = stage(ctx, "service.validate", func(context.Context) error { return graph.Validate(g) }); err != nil {
			return nil, err
		}
	}

	if s.repos != nil {
		if err = s.repos.Run.MarkRunning(ctx, run.RunID); err != nil {
			return nil, err
		}
	}
	run.Status = model.RunStatusRunning
	begin := s.clock.Now()
	run.BeginTime = &begin

	var out *outcome
	err = stage(ctx, "service.compute", func(ctx context.Context) error {
		out, err = s.compute(ctx, algo, g)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer out.release()
	run.GlobalTriangleCount = out.globalTriangles
	run.AverageCoefficient = out.average
	elapsed := s.clock.Since(begin)

	res = &Result{Run: run}
	err = stage(ctx, "service.export", func(ctx context.Context) error {
		return s.export(run, out, elapsed, res)
	})
	if err != nil {
		return nil, err
	}

	if s.storage != nil {
		err = stage(ctx, "service.publish", func(ctx context.Context) error {
			publisher := storage.NewPublisher(s.storage, s.config.Storage.Prefix, log)
			res.Artifacts, err = publisher.Publish(ctx, run.RunID, res.Output.Path, res.SummaryPath)
			return err
		})
		if err != nil {
			return nil, err
		}
		run.ResultFile = res.Artifacts[0].Key
	}

	if s.repos != nil && s.config.Database.SaveNodeMetrics {
		err = stage(ctx, "service.persist", func(ctx context.Context) error {
			return s.persistNodeMetrics(ctx, run.RunID, out)
		})
		if err != nil {
			return nil, err
		}
	}

	if path := s.config.Output.MetricsFile; path != "" {
		if werr := metrics.WriteTextfile(path); werr != nil {
			log.Warn("Failed to write metrics to %s: %v", path, werr)
		}
	}

	return res, nil
}

// stage runs fn in a child span unless ctx is already done.
func stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := telemetry.Tracer().Start(ctx, name)
	defer span.End()

	err := ctx.Err()
	if err != nil {
		err = errors.Wrap(errors.CodeCancelled, name+" cancelled", err)
	} else {
		err = fn(ctx)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errors.GetErrorCode(err))
		return err
	}
	return nil
}

func (s *Service) load(ctx context.Context) (*graph.CSRGraph, error) {
	format, err := loader.ParseFormat(s.config.Input.Format)
	if err != nil {
		return nil, errors.Wrap(errors.CodeConfigError, "invalid input format", err)
	}
	orientation, _ := graph.ParseOrientation(s.config.Input.Orientation)
	g, _, err := loader.LoadFile(ctx, s.config.Input.Path, loader.Options{
		Format:      format,
		Orientation: orientation,
		Logger:      s.logger,
	})
	return g, err
}

func (s *Service) kernelConfig() algorithm.Config {
	c := s.config.Compute
	return algorithm.Config{
		Concurrency:    c.Concurrency,
		BatchSize:      int64(c.BatchSize),
		TaskName:       c.TaskName,
		LogBatchSize:   int64(c.LogBatchSize),
		MaxResultBytes: c.MaxResultBytes,
	}
}

func (s *Service) compute(ctx context.Context, algo model.Algorithm, g *graph.CSRGraph) (*outcome, error) {
	opts := []algorithm.Option{
		algorithm.WithLogger(s.logger),
		algorithm.WithMetrics(s.metrics),
		algorithm.WithClock(s.clock),
	}

	switch algo {
	case model.AlgorithmTriangleCount:
		r, err := algorithm.IntersectingTriangleCount(ctx, g, s.kernelConfig(), opts...)
		if err != nil {
			return nil, err
		}
		return &outcome{
			globalTriangles: r.GlobalTriangleCount,
			write: func(w export.Writer) error {
				return export.StreamTriangles(g, r, func(row export.TriangleRow) error { return w.Write(row) })
			},
			visit: func(runID string, fn func(model.NodeMetric) error) error {
				return export.StreamTriangles(g, r, func(row export.TriangleRow) error {
					return fn(model.NodeMetric{RunID: runID, NodeID: row.NodeID, Triangles: row.Triangles, Value: float64(row.Triangles)})
				})
			},
			release: r.Release,
		}, nil

	case model.AlgorithmLocalClusteringCoefficient:
		r, err := algorithm.LocalClusteringCoefficient(ctx, g, s.kernelConfig(), opts...)
		if err != nil {
			return nil, err
		}
		avg := r.AverageCoefficient
		return &outcome{
			globalTriangles: r.Triangles.GlobalTriangleCount,
			average:         &avg,
			write: func(w export.Writer) error {
				return export.StreamCoefficients(g, r, func(row export.CoefficientRow) error { return w.Write(row) })
			},
			visit: func(runID string, fn func(model.NodeMetric) error) error {
				return export.StreamCoefficients(g, r, func(row export.CoefficientRow) error {
					return fn(model.NodeMetric{RunID: runID, NodeID: row.NodeID, Triangles: row.Triangles, Value: row.Coefficient})
				})
			},
			release: r.Release,
		}, nil

	default:
		return nil, errors.Newf(errors.CodeUnsupported, "unsupported algorithm: %s", algo)
	}
}

func (s *Service) export(run *model.Run, out *outcome, elapsed time.Duration, res *Result) error {
	format, err := export.ParseFormat(s.config.Output.Format)
	if err != nil {
		return errors.Wrap(errors.CodeConfigError, "invalid output format", err)
	}
	comp, err := compression.ParseType(s.config.Output.Compression)
	if err != nil {
		return errors.Wrap(errors.CodeConfigError, "invalid output compression", err)
	}

	dir := s.config.RunDir(run.RunID)
	info, err := export.WriteFile(export.FileOptions{
		Dir:         dir,
		BaseName:    run.Algorithm.MetricName(),
		Format:      format,
		Compression: comp,
	}, out.write)
	if err != nil {
		return err
	}
	s.metrics.AddRowsExported(string(format), info.Rows)
	run.ResultFile = info.Path

	summary := &export.Summary{
		RunID:               run.RunID,
		Algorithm:           string(run.Algorithm),
		Input:               run.InputPath,
		NodeCount:           run.NodeCount,
		RelationshipCount:   run.RelationshipCount,
		Concurrency:         run.Concurrency,
		GlobalTriangleCount: run.GlobalTriangleCount,
		AverageCoefficient:  run.AverageCoefficient,
		Output:              info,
		CreatedAt:           run.CreateTime,
		Duration:            elapsed,
	}
	summaryPath, err := export.WriteSummary(dir, summary)
	if err != nil {
		return err
	}

	res.Summary = summary
	res.Output = info
	res.SummaryPath = summaryPath
	return nil
}

func (s *Service) persistNodeMetrics(ctx context.Context, runID string, out *outcome) error {
	batchSize := s.config.Database.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}

	batch := make([]model.NodeMetric, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := s.repos.Metric.SaveNodeMetrics(ctx, batch, batchSize)
		batch = batch[:0]
		return err
	}

	err := out.visit(runID, func(m model.NodeMetric) error {
		batch = append(batch, m)
		if len(batch) == cap(batch) {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	return flush()
}

// finishRun moves the run to its terminal status.
func (s *Service) finishRun(ctx context.Context, run *model.Run, err error) {
	switch {
	case err == nil:
		run.Status = model.RunStatusCompleted
	case isCancellation(err):
		run.Status = model.RunStatusCancelled
		run.StatusInfo = err.Error()
	default:
		run.Status = model.RunStatusFailed
		run.StatusInfo = err.Error()
	}
	end := s.clock.Now()
	run.EndTime = &end

	if s.repos == nil || run.ID == 0 {
		return
	}
	// Record the outcome even when ctx was cancelled or timed out.
	if ferr := s.repos.Run.FinishRun(context.WithoutCancel(ctx), run); ferr != nil {
		s.logger.Error("Failed to record status of run %s: %v", run.RunID, ferr)
	}
}

func isCancellation(err error) bool {
	return errors.IsCancelled(err) ||
		stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, context.DeadlineExceeded)
}
