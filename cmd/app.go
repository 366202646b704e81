package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/giantswarm/kubectl-jobs/internal/accounts"
	"github.com/giantswarm/kubectl-jobs/internal/instrumentation"
	"github.com/giantswarm/kubectl-jobs/internal/jobs"
	"github.com/giantswarm/kubectl-jobs/internal/kinds"
	"github.com/giantswarm/kubectl-jobs/internal/kubectl"
	"github.com/giantswarm/kubectl-jobs/internal/logging"
)

// defaultAccount names the ad-hoc account built from --kubeconfig and
// --context when no accounts file is configured.
const defaultAccount = "default"

// newExecutor creates the executor running kubectl. Tests replace it.
var newExecutor = func(logger *slog.Logger) jobs.Executor {
	return jobs.NewProcessExecutor(logger)
}

// app bundles the collaborators of one CLI invocation.
type app struct {
	logger     *slog.Logger
	accounts   accounts.Static
	registry   *kinds.Registry
	provider   *instrumentation.Provider
	dispatcher *kubectl.Dispatcher
}

// newApp wires the dispatcher from the global flags. The caller must call
// close when done.
func newApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	logger := logging.NewLogger(cmd.ErrOrStderr(), globals.debug)

	resolver, err := loadAccounts()
	if err != nil {
		return nil, err
	}

	config := instrumentation.DefaultConfig()
	config.ServiceVersion = rootCmd.Version
	provider, err := instrumentation.NewProvider(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	if provider.Enabled() {
		logger.Debug("OpenTelemetry instrumentation enabled",
			slog.String("metrics", config.MetricsExporter),
			slog.String("tracing", config.TracingExporter))
	}

	a := &app{
		logger:   logger,
		accounts: resolver,
		provider: provider,
	}

	a.registry, err = a.loadRegistry(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	opts := []kubectl.Option{
		kubectl.WithLogger(logger),
		kubectl.WithMetrics(provider.Metrics()),
	}
	if globals.kubectl != "" {
		opts = append(opts, kubectl.WithBuilderOptions(kubectl.WithProgramLine(globals.kubectl)))
	}
	if globals.progress {
		opts = append(opts, kubectl.WithStatusSink(progressSink(cmd.ErrOrStderr())))
	}

	a.dispatcher, err = kubectl.NewDispatcher(resolver, a.registry, newExecutor(logger), opts...)
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// close flushes instrumentation.
func (a *app) close() {
	if err := a.provider.Shutdown(context.Background()); err != nil {
		a.logger.Warn("error during instrumentation shutdown", logging.Err(err))
	}
}

// loadAccounts reads the accounts file, or builds the ad-hoc default account.
func loadAccounts() (accounts.Static, error) {
	if globals.accountsFile != "" {
		return accounts.LoadFile(globals.accountsFile)
	}
	return accounts.Static{
		defaultAccount: {
			Name:           defaultAccount,
			KubeconfigPath: globals.kubeconfig,
			Context:        globals.kubeContext,
		},
	}, nil
}

// kindSources returns the registry sources selected by the global flags.
func (a *app) kindSources() ([]kinds.Source, error) {
	var sources []kinds.Source
	if globals.kindsFile != "" {
		sources = append(sources, kinds.FileSource{Path: globals.kindsFile})
	}
	if globals.discover {
		creds, err := a.accounts.Resolve(globals.account)
		if err != nil {
			return nil, err
		}
		discovery, err := kinds.NewDiscoverySourceForContext(creds.KubeconfigPath, creds.Context, a.logger)
		if err != nil {
			return nil, err
		}
		sources = append(sources, discovery)
	}
	return sources, nil
}

// loadRegistry seeds the registry from the kinds file and cluster discovery.
func (a *app) loadRegistry(ctx context.Context) (*kinds.Registry, error) {
	registry, err := kinds.NewRegistry()
	if err != nil {
		return nil, err
	}

	sources, err := a.kindSources()
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return registry, nil
	}

	metrics := a.provider.Metrics()
	n, err := kinds.NewRefresher(registry, kinds.Merged(sources...), 0, a.logger).Refresh(ctx)
	if err != nil {
		metrics.RecordKindRefresh(ctx, "startup", instrumentation.StatusError, 0)
		return nil, err
	}
	metrics.RecordKindRefresh(ctx, "startup", instrumentation.StatusSuccess, n)
	a.logger.Debug("loaded custom resource kinds", slog.Int("kinds", n))
	return registry, nil
}

// progressSink prints every phase transition as one line.
func progressSink(w io.Writer) kubectl.StatusSink {
	return kubectl.StatusSinkFunc(func(phase, status string) {
		_, _ = fmt.Fprintf(w, "%-12s %s\n", phase, status)
	})
}
