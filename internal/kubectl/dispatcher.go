package kubectl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/giantswarm/kubectl-jobs/internal/accounts"
	"github.com/giantswarm/kubectl-jobs/internal/instrumentation"
	"github.com/giantswarm/kubectl-jobs/internal/jobs"
	"github.com/giantswarm/kubectl-jobs/internal/kinds"
	"github.com/giantswarm/kubectl-jobs/internal/logging"
)

// crdKind is the list target used to discover custom resource kinds.
const crdKind = "CustomResourceDefinition.apiextensions.k8s.io"

// Dispatcher runs resource operations against accounts. Each call is
// one-shot and independent; a Dispatcher is safe for concurrent use.
type Dispatcher struct {
	accounts    accounts.Resolver
	registry    *kinds.Registry
	executor    jobs.Executor
	builder     *Builder
	builderOpts []BuilderOption
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	sink        StatusSink

	mu         sync.Mutex
	refreshers map[string]*kinds.Refresher
}

// Option is a functional option for configuring a Dispatcher.
type Option func(*Dispatcher) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		d.logger = logger
		return nil
	}
}

// WithMetrics records job metrics. A nil Metrics records nothing.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(d *Dispatcher) error {
		d.metrics = metrics
		return nil
	}
}

// WithStatusSink sets the sink receiving phase transitions.
func WithStatusSink(sink StatusSink) Option {
	return func(d *Dispatcher) error {
		if sink == nil {
			sink = NopStatusSink{}
		}
		d.sink = sink
		return nil
	}
}

// WithBuilderOptions configures the command Builder.
func WithBuilderOptions(opts ...BuilderOption) Option {
	return func(d *Dispatcher) error {
		d.builderOpts = append(d.builderOpts, opts...)
		return nil
	}
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(resolver accounts.Resolver, registry *kinds.Registry, executor jobs.Executor, opts ...Option) (*Dispatcher, error) {
	if resolver == nil {
		return nil, errors.New("dispatcher requires an account resolver")
	}
	if executor == nil {
		return nil, errors.New("dispatcher requires an executor")
	}

	d := &Dispatcher{
		accounts:   resolver,
		registry:   registry,
		executor:   executor,
		logger:     slog.Default(),
		sink:       NopStatusSink{},
		refreshers: map[string]*kinds.Refresher{},
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	builder, err := NewBuilder(registry, d.builderOpts...)
	if err != nil {
		return nil, err
	}
	d.builder = builder

	return d, nil
}

// Builder returns the command builder.
func (d *Dispatcher) Builder() *Builder {
	return d.builder
}

// Deploy applies manifest and returns kubectl's output.
func (d *Dispatcher) Deploy(ctx context.Context, account string, manifest *unstructured.Unstructured) (string, error) {
	c := call{operation: instrumentation.OperationDeploy, account: account}
	if manifest != nil {
		c.namespace = manifest.GetNamespace()
		c.ref = kinds.Ref{
			Kind:  manifest.GetKind(),
			Group: manifest.GroupVersionKind().Group,
			Name:  manifest.GetName(),
		}
	}

	return dispatch(ctx, d, c, func(creds accounts.Credentials) (*jobs.Request, error) {
		return d.builder.Deploy(creds, manifest)
	}, d.buffered)
}

// Patch patches the resource named "<Kind> <name>" with body.
func (d *Dispatcher) Patch(ctx context.Context, account, namespace, manifestName string, body any, opts PatchOptions) (string, error) {
	ref, parseErr := kinds.ParseManifestName(manifestName)
	c := call{operation: instrumentation.OperationPatch, account: account, namespace: namespace, ref: ref}

	return dispatch(ctx, d, c, func(creds accounts.Credentials) (*jobs.Request, error) {
		if parseErr != nil {
			return nil, parseErr
		}
		return d.builder.Patch(creds, namespace, ref, body, opts)
	}, d.buffered)
}

// Delete deletes the resource named "<Kind> <name>". A missing resource is
// not an error.
func (d *Dispatcher) Delete(ctx context.Context, account, namespace, manifestName string, opts DeleteOptions) (string, error) {
	ref, parseErr := kinds.ParseManifestName(manifestName)
	c := call{operation: instrumentation.OperationDelete, account: account, namespace: namespace, ref: ref}

	return dispatch(ctx, d, c, func(creds accounts.Credentials) (*jobs.Request, error) {
		if parseErr != nil {
			return nil, parseErr
		}
		return d.builder.Delete(creds, namespace, ref, opts)
	}, d.buffered)
}

// Get retrieves the resource named "<Kind> <name>". When kubectl reports it
// missing the error matches ErrNotFound.
func (d *Dispatcher) Get(ctx context.Context, account, namespace, manifestName string) (*unstructured.Unstructured, error) {
	ref, parseErr := kinds.ParseManifestName(manifestName)
	c := call{operation: instrumentation.OperationGet, account: account, namespace: namespace, ref: ref}

	return dispatch(ctx, d, c, func(creds accounts.Credentials) (*jobs.Request, error) {
		if parseErr != nil {
			return nil, parseErr
		}
		return d.builder.Get(creds, namespace, ref)
	}, func(ctx context.Context, req *jobs.Request) (*jobs.Result[*unstructured.Unstructured], error) {
		return jobs.RunWithConsumer(ctx, d.executor, req, ManifestConsumer)
	})
}

// List returns every object of kind, decoding kubectl's output as it streams.
func (d *Dispatcher) List(ctx context.Context, account, namespace, kind string) ([]*unstructured.Unstructured, error) {
	c := call{operation: instrumentation.OperationList, account: account, namespace: namespace, ref: kinds.Ref{Kind: kind}}

	return dispatch(ctx, d, c, func(creds accounts.Credentials) (*jobs.Request, error) {
		return d.builder.List(creds, namespace, kind)
	}, func(ctx context.Context, req *jobs.Request) (*jobs.Result[[]*unstructured.Unstructured], error) {
		return jobs.RunWithConsumer(ctx, d.executor, req, ManifestListConsumer)
	})
}

// Top returns per-container usage of the pods in namespace.
func (d *Dispatcher) Top(ctx context.Context, account, namespace string) ([]PodMetrics, error) {
	c := call{operation: instrumentation.OperationTop, account: account, namespace: namespace, ref: kinds.Ref{Kind: "pod"}}

	return dispatch(ctx, d, c, func(creds accounts.Credentials) (*jobs.Request, error) {
		return d.builder.Top(creds, namespace)
	}, func(ctx context.Context, req *jobs.Request) (*jobs.Result[[]PodMetrics], error) {
		return jobs.RunWithConsumer(ctx, d.executor, req, TopConsumer)
	})
}

// KindSource lists the CustomResourceDefinitions visible to account.
func (d *Dispatcher) KindSource(account string) kinds.Source {
	return kinds.SourceFunc(func(ctx context.Context) ([]kinds.Entry, error) {
		crds, err := d.List(ctx, account, "", crdKind)
		if err != nil {
			return nil, err
		}
		return kinds.CRDSource(crds).Entries()
	})
}

// Refresher returns the registry refresher for account. There is one
// refresher per account, so concurrent refreshes of the same account share
// one kubectl run. interval applies only when the account's refresher is
// first created; later calls return it unchanged.
func (d *Dispatcher) Refresher(account string, interval time.Duration) *kinds.Refresher {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.refreshers[account]
	if !ok {
		r = kinds.NewRefresher(d.registry, d.KindSource(account), interval, d.logger)
		d.refreshers[account] = r
	}
	return r
}

// RefreshKinds replaces the registry with the custom resource kinds visible
// to account and returns how many are registered. On failure the previous
// registry contents are kept.
func (d *Dispatcher) RefreshKinds(ctx context.Context, account string) (int, error) {
	n, err := d.Refresher(account, 0).Refresh(ctx)
	if err != nil {
		d.metrics.RecordKindRefresh(ctx, "kubectl", instrumentation.StatusError, 0)
		return 0, err
	}
	d.metrics.RecordKindRefresh(ctx, "kubectl", instrumentation.StatusSuccess, n)
	return n, nil
}

func (d *Dispatcher) buffered(ctx context.Context, req *jobs.Request) (*jobs.Result[string], error) {
	return jobs.Run(ctx, d.executor, req)
}

// call identifies one dispatched operation for logs, spans and metrics.
type call struct {
	operation string
	account   string
	namespace string
	ref       kinds.Ref
}

// dispatch drives one operation through building, executing and
// interpreting. The first failure is terminal.
func dispatch[T any](
	ctx context.Context,
	d *Dispatcher,
	c call,
	build func(accounts.Credentials) (*jobs.Request, error),
	run func(context.Context, *jobs.Request) (*jobs.Result[T], error),
) (T, error) {
	var zero T
	start := time.Now()
	resourceType := c.ref.QualifiedKind()

	logger := logging.WithAccount(logging.WithOperation(d.logger, c.operation), c.account)
	if resourceType != "" {
		logger = logger.With(logging.ResourceType(resourceType))
	}
	if c.ref.Name != "" {
		logger = logger.With(logging.ResourceName(c.ref.Name))
	}
	if c.namespace != "" {
		logger = logger.With(logging.Namespace(c.namespace))
	}

	ctx, span := instrumentation.StartJobSpan(ctx, c.operation, resourceType, c.namespace,
		instrumentation.NewSpanAttributeBuilder().WithResource("", c.ref.Name).Build()...)
	defer span.End()

	d.metrics.IncrementActiveJobs(ctx)
	defer d.metrics.DecrementActiveJobs(ctx)

	var kubeContext string
	enter := func(phase Phase, status string) {
		d.sink.UpdateStatus(string(phase), status)
		instrumentation.AddSpanEvent(span, string(phase), attribute.String(instrumentation.SpanAttrPhase, string(phase)))
		logger.DebugContext(ctx, status, logging.Phase(string(phase)))
	}
	fail := func(phase Phase, status string, err error) (T, error) {
		opErr := &OperationError{Operation: c.operation, Phase: phase, Err: err}
		elapsed := time.Since(start)

		d.sink.UpdateStatus(string(PhaseFailed), opErr.Error())
		instrumentation.SetSpanError(span, opErr)
		d.metrics.RecordJobFailure(ctx, c.operation, string(phase))
		d.metrics.RecordJob(ctx, c.operation, resourceType, kubeContext, status, elapsed)

		attrs := []any{logging.Phase(string(phase)), logging.Status(status), slog.Duration(logging.KeyDuration, elapsed), logging.Err(err)}
		switch {
		case errors.Is(err, jobs.ErrExecution):
			logger.ErrorContext(ctx, "kubectl job could not run", attrs...)
		case errors.Is(err, ErrToolFailure):
			logger.WarnContext(ctx, "kubectl job failed", attrs...)
		default:
			logger.WarnContext(ctx, "kubectl job rejected", attrs...)
		}
		return zero, opErr
	}

	enter(PhaseBuilding, fmt.Sprintf("Building kubectl %s command", c.operation))
	creds, err := d.accounts.Resolve(c.account)
	if err != nil {
		return fail(PhaseBuilding, instrumentation.StatusError, err)
	}
	kubeContext = creds.Context
	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithAccount(c.account, creds.Context).Build()...)
	logger = logger.With(logging.Context(creds.Context))

	req, err := build(creds)
	if err != nil {
		return fail(PhaseBuilding, instrumentation.StatusError, err)
	}
	command := strings.Join(logging.RedactArgs(req.Tokens()), " ")

	enter(PhaseExecuting, "Running "+command)
	res, err := run(ctx, req)
	if err != nil {
		if errors.Is(err, jobs.ErrExecution) {
			return fail(PhaseExecuting, instrumentation.StatusError, err)
		}
		return fail(PhaseInterpreting, instrumentation.StatusError, err)
	}
	if res.Status == jobs.StatusKilled {
		return fail(PhaseExecuting, instrumentation.StatusKilled, killedError(req, ctx.Err(), res.Error))
	}

	enter(PhaseInterpreting, fmt.Sprintf("Interpreting %s result", res.Status))
	if res.Status != jobs.StatusSuccess {
		return fail(PhaseInterpreting, instrumentation.StatusFailure, &ToolError{Command: command, Stderr: res.Error})
	}

	elapsed := time.Since(start)
	d.sink.UpdateStatus(string(PhaseDone), fmt.Sprintf("kubectl %s succeeded", c.operation))
	instrumentation.SetSpanSuccess(span)
	d.metrics.RecordJob(ctx, c.operation, resourceType, kubeContext, instrumentation.StatusSuccess, elapsed)
	logger.InfoContext(ctx, "kubectl job finished",
		logging.Status(logging.StatusSuccess), slog.Duration(logging.KeyDuration, elapsed))

	return res.Output, nil
}
