package telemetry

import (
	"os"
	"strconv"
	"strings"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DefaultServiceName is reported when no service name is configured.
const DefaultServiceName = "graph-metrics"

// Config holds tracing settings.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	// Protocol is "grpc" or "http/protobuf".
	Protocol string
	Headers  map[string]string
	Insecure bool
	// SampleRatio is the fraction of root spans kept, in [0,1].
	SampleRatio float64
}

// LoadFromEnv reads the OTEL_* environment variables.
func LoadFromEnv() *Config {
	return &Config{
		Enabled:        strings.EqualFold(os.Getenv("OTEL_ENABLED"), "true"),
		ServiceName:    envOrDefault("OTEL_SERVICE_NAME", DefaultServiceName),
		ServiceVersion: envOrDefault("OTEL_SERVICE_VERSION", "unknown"),
		Endpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Protocol:       envOrDefault("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
		Headers:        ParseKeyValuePairs(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
		Insecure:       strings.EqualFold(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"), "true"),
		SampleRatio:    parseRatio(os.Getenv("OTEL_TRACES_SAMPLER_ARG")),
	}
}

func (c *Config) sampler() sdktrace.Sampler {
	switch {
	case c.SampleRatio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case c.SampleRatio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRatio))
	}
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ParseKeyValuePairs parses "k1=v1,k2=v2". Values may contain '='.
func ParseKeyValuePairs(s string) map[string]string {
	result := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		idx := strings.Index(pair, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(pair[:idx])
		if key != "" {
			result[key] = strings.TrimSpace(pair[idx+1:])
		}
	}
	return result
}

// parseRatio returns 1 for empty or malformed input and clamps to [0,1].
func parseRatio(s string) float64 {
	if s == "" {
		return 1
	}
	ratio, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1
	}
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}
