package instrumentation

import (
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: kubectl-jobs)
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Enabled determines if instrumentation is active (default: false for zero overhead)
	// Set to true via INSTRUMENTATION_ENABLED=true to enable metrics and tracing
	Enabled bool

	// MetricsExporter specifies the metrics exporter type
	// Options: "prometheus", "otlp", "stdout" (default: "prometheus")
	MetricsExporter string

	// TracingExporter specifies the tracing exporter type
	// Options: "otlp", "stdout", "none" (default: "none")
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint
	// Example: "http://localhost:4318"
	OTLPEndpoint string

	// OTLPInsecure controls whether to use insecure HTTP for OTLP export.
	// Only set this for local collectors.
	OTLPInsecure bool

	// TraceSamplingRate is the sampling rate for traces (0.0 to 1.0, default: 0.1)
	TraceSamplingRate float64

	// DetailedLabels adds resource_type and context_type labels to job metrics.
	DetailedLabels bool
}

// DefaultConfig returns a Config with sensible defaults based on environment variables.
func DefaultConfig() Config {
	return Config{
		ServiceName:       getEnvOrDefault("OTEL_SERVICE_NAME", "kubectl-jobs"),
		ServiceVersion:    "unknown",
		Enabled:           getEnvBoolOrDefault("INSTRUMENTATION_ENABLED", false),
		MetricsExporter:   getEnvOrDefault("METRICS_EXPORTER", "prometheus"),
		TracingExporter:   getEnvOrDefault("TRACING_EXPORTER", "none"),
		OTLPEndpoint:      getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:      getEnvBoolOrDefault("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate: getEnvFloatOrDefault("OTEL_TRACES_SAMPLER_ARG", 0.1),
		DetailedLabels:    getEnvBoolOrDefault("METRICS_DETAILED_LABELS", false),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.MetricsExporter {
	case "", MetricsExporterPrometheus, MetricsExporterOTLP, MetricsExporterStdout:
	default:
		return &UnsupportedExporterError{Kind: "metrics", Name: c.MetricsExporter}
	}
	switch c.TracingExporter {
	case "", TracingExporterNone, TracingExporterOTLP, TracingExporterStdout:
	default:
		return &UnsupportedExporterError{Kind: "tracing", Name: c.TracingExporter}
	}
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return ErrInvalidSamplingRate
	}
	return nil
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBoolOrDefault returns the boolean value of an environment variable or a default value.
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// getEnvFloatOrDefault returns the float64 value of an environment variable or a default value.
func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// Exporter names.
const (
	MetricsExporterPrometheus = "prometheus"
	MetricsExporterOTLP       = "otlp"
	MetricsExporterStdout     = "stdout"

	TracingExporterNone   = "none"
	TracingExporterOTLP   = "otlp"
	TracingExporterStdout = "stdout"
)

// Constants for metric label values.
const (
	// Status values
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusKilled  = "killed"
	StatusError   = "error"

	// Operation types
	OperationDeploy  = "deploy"
	OperationPatch   = "patch"
	OperationDelete  = "delete"
	OperationGet     = "get"
	OperationList    = "list"
	OperationTop     = "top"
	OperationRefresh = "refresh_kinds"

	// DefaultMetricInterval is the export interval for push-based metric readers.
	DefaultMetricInterval = 10 * time.Second
)
