// Package metrics exposes Prometheus instrumentation for kernel runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder groups the collectors updated by the compute kernels.
type Recorder struct {
	runsTotal      *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	nodesProcessed *prometheus.CounterVec
	activeWorkers  prometheus.Gauge
	resultBytes    *prometheus.GaugeVec
	rowsExported   *prometheus.CounterVec
}

// NewRecorder registers the collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		// Labels: algorithm, status ("completed", "failed", "cancelled")
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "graph_metrics_kernel_runs_total",
			Help: "Kernel runs by algorithm and final state",
		}, []string{"algorithm", "status"}),

		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graph_metrics_kernel_duration_seconds",
			Help:    "Wall time of kernel runs",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"algorithm"}),

		nodesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "graph_metrics_nodes_processed_total",
			Help: "Nodes processed by kernel workers",
		}, []string{"algorithm"}),

		activeWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "graph_metrics_active_workers",
			Help: "Kernel workers currently running",
		}),

		resultBytes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "graph_metrics_result_store_bytes",
			Help: "Memory held by the paged result store of the last run",
		}, []string{"algorithm"}),

		rowsExported: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "graph_metrics_rows_exported_total",
			Help: "Result rows written by format",
		}, []string{"format"}),
	}
}

var defaultRecorder = NewRecorder(prometheus.DefaultRegisterer)

// Default returns the recorder bound to the default registry.
func Default() *Recorder {
	return defaultRecorder
}

// ObserveRun records the outcome of one kernel run.
func (r *Recorder) ObserveRun(algorithm, status string, elapsed time.Duration) {
	r.runsTotal.WithLabelValues(algorithm, status).Inc()
	r.runDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
}

// AddNodes adds n processed nodes.
func (r *Recorder) AddNodes(algorithm string, n int64) {
	r.nodesProcessed.WithLabelValues(algorithm).Add(float64(n))
}

// WorkerStarted increments the active worker gauge.
func (r *Recorder) WorkerStarted() {
	r.activeWorkers.Inc()
}

// WorkerStopped decrements the active worker gauge.
func (r *Recorder) WorkerStopped() {
	r.activeWorkers.Dec()
}

// SetResultBytes records the result store size.
func (r *Recorder) SetResultBytes(algorithm string, bytes int64) {
	r.resultBytes.WithLabelValues(algorithm).Set(float64(bytes))
}

// AddRowsExported adds n exported rows.
func (r *Recorder) AddRowsExported(format string, n int64) {
	r.rowsExported.WithLabelValues(format).Add(float64(n))
}

// WriteTextfile dumps the default registry in the text exposition format,
// for pickup by a node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
