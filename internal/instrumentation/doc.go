// Package instrumentation provides OpenTelemetry metrics and tracing for
// kubectl jobs.
//
// # Metrics
//
//   - kubectl_jobs_total: Counter of jobs by operation and status
//   - kubectl_job_duration_seconds: Histogram of job durations
//   - kubectl_job_failures_total: Counter of failed jobs by operation and phase
//   - kubectl_jobs_active: Number of jobs currently running
//   - kubectl_jobs_kind_refresh_total: Counter of registry refreshes by source and status
//   - kubectl_jobs_registered_kinds: Gauge of custom kinds in the registry
//
// Kube context names never appear as label values. When detailed labels are
// enabled they are reduced with ClassifyContextName.
//
// # Tracing
//
// Every dispatched operation opens a "kubectl.<operation>" client span. Phase
// transitions are recorded as span events.
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_EXPORTER_OTLP_INSECURE: Use plain HTTP for OTLP
//   - OTEL_TRACES_SAMPLER_ARG: Trace sampling rate (default: 0.1)
//   - METRICS_DETAILED_LABELS: Add resource_type and context_type labels
//
// # Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordJob(ctx, "delete", "deployment", "prod-eu", "success", elapsed)
package instrumentation
