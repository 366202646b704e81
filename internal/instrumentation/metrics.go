package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrStatus       = "status"
	attrOperation    = "operation"
	attrResourceType = "resource_type"
	attrContextType  = "context_type"
	attrPhase        = "phase"
	attrSource       = "source"
)

// Metrics provides methods for recording job metrics. All methods are safe
// on a nil receiver.
type Metrics struct {
	jobsTotal        metric.Int64Counter
	jobDuration      metric.Float64Histogram
	jobFailuresTotal metric.Int64Counter
	kindRefreshTotal metric.Int64Counter
	registeredKinds  metric.Int64Gauge
	activeJobs       metric.Int64UpDownCounter

	// detailedLabels controls whether resource_type and context_type are
	// added to job metrics.
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.jobsTotal, err = meter.Int64Counter(
		"kubectl_jobs_total",
		metric.WithDescription("Total number of kubectl jobs by operation and status"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubectl_jobs_total counter: %w", err)
	}

	m.jobDuration, err = meter.Float64Histogram(
		"kubectl_job_duration_seconds",
		metric.WithDescription("kubectl job duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubectl_job_duration_seconds histogram: %w", err)
	}

	m.jobFailuresTotal, err = meter.Int64Counter(
		"kubectl_job_failures_total",
		metric.WithDescription("Total number of failed kubectl jobs by operation and phase"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubectl_job_failures_total counter: %w", err)
	}

	m.kindRefreshTotal, err = meter.Int64Counter(
		"kubectl_jobs_kind_refresh_total",
		metric.WithDescription("Total number of custom resource registry refreshes"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubectl_jobs_kind_refresh_total counter: %w", err)
	}

	m.registeredKinds, err = meter.Int64Gauge(
		"kubectl_jobs_registered_kinds",
		metric.WithDescription("Number of custom resource kinds in the registry"),
		metric.WithUnit("{kind}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubectl_jobs_registered_kinds gauge: %w", err)
	}

	m.activeJobs, err = meter.Int64UpDownCounter(
		"kubectl_jobs_active",
		metric.WithDescription("Number of kubectl jobs currently running"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubectl_jobs_active counter: %w", err)
	}

	return m, nil
}

// RecordJob records a finished job with its operation, status and duration.
//
// CARDINALITY NOTE: resource_type and context_type are only attached when
// detailed labels are enabled. The kube context is always reduced to its
// classified type, never the raw name.
func (m *Metrics) RecordJob(ctx context.Context, operation, resourceType, kubeContext, status string, duration time.Duration) {
	if m == nil || m.jobsTotal == nil || m.jobDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels {
		attrs = append(attrs,
			attribute.String(attrResourceType, resourceType),
			attribute.String(attrContextType, ClassifyContextName(kubeContext)),
		)
	}

	m.jobsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.jobDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordJobFailure records the phase at which a job failed.
func (m *Metrics) RecordJobFailure(ctx context.Context, operation, phase string) {
	if m == nil || m.jobFailuresTotal == nil {
		return
	}
	m.jobFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrPhase, phase),
	))
}

// RecordKindRefresh records a registry refresh from the named source and the
// resulting number of registered kinds.
func (m *Metrics) RecordKindRefresh(ctx context.Context, source, status string, kinds int) {
	if m == nil || m.kindRefreshTotal == nil {
		return
	}
	m.kindRefreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrSource, source),
		attribute.String(attrStatus, status),
	))
	if status == StatusSuccess && m.registeredKinds != nil {
		m.registeredKinds.Record(ctx, int64(kinds))
	}
}

// IncrementActiveJobs increments the running jobs counter.
func (m *Metrics) IncrementActiveJobs(ctx context.Context) {
	if m == nil || m.activeJobs == nil {
		return
	}
	m.activeJobs.Add(ctx, 1)
}

// DecrementActiveJobs decrements the running jobs counter.
func (m *Metrics) DecrementActiveJobs(ctx context.Context) {
	if m == nil || m.activeJobs == nil {
		return
	}
	m.activeJobs.Add(ctx, -1)
}
