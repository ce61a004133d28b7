// Package telemetry bootstraps OpenTelemetry tracing for graph-metrics runs.
//
// Tracing is off unless enabled through the standard OTEL_* environment
// variables:
//
//	OTEL_ENABLED                 - enable tracing (default: false)
//	OTEL_SERVICE_NAME            - service name (default: graph-metrics)
//	OTEL_EXPORTER_OTLP_ENDPOINT  - OTLP collector endpoint
//	OTEL_EXPORTER_OTLP_PROTOCOL  - grpc or http/protobuf (default: grpc)
//	OTEL_EXPORTER_OTLP_HEADERS   - comma separated key=value headers
//	OTEL_EXPORTER_OTLP_INSECURE  - plaintext transport (default: false)
//	OTEL_TRACES_SAMPLER_ARG      - sampling ratio in [0,1] (default: 1)
//
// When tracing is off the global no-op provider stays installed, so spans
// created through Tracer cost next to nothing.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans created by this module.
const InstrumentationName = "github.com/graph-metrics"

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init installs a global tracer provider according to cfg. A nil or disabled
// config leaves the no-op provider in place.
func Init(ctx context.Context, cfg *Config) (ShutdownFunc, error) {
	if cfg == nil || !cfg.Enabled {
		return noopShutdown, nil
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return noopShutdown, err
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return noopShutdown, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(cfg.sampler()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// Tracer returns the module tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
