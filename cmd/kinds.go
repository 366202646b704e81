package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/kubectl-jobs/internal/instrumentation"
	"github.com/giantswarm/kubectl-jobs/internal/kinds"
	"github.com/giantswarm/kubectl-jobs/internal/logging"
)

// defaultRefreshInterval is how often `kinds watch` re-lists the cluster's
// CustomResourceDefinitions.
const defaultRefreshInterval = 5 * time.Minute

func newKindsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "Inspect and maintain the custom resource kind registry",
	}
	cmd.AddCommand(newKindsListCmd(), newKindsRefreshCmd(), newKindsWatchCmd())
	return cmd
}

func newKindsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the registered custom resource kinds",
		Long: `Print the custom resource kinds loaded from --kinds-file and, with
--discover-kinds, from cluster discovery.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			return printKinds(cmd, a.registry.Entries())
		},
	}
}

func newKindsRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Register the CustomResourceDefinitions listed by kubectl",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := a.dispatcher.RefreshKinds(cmd.Context(), globals.account); err != nil {
				return err
			}
			return printKinds(cmd, a.registry.Entries())
		},
	}
}

func newKindsWatchCmd() *cobra.Command {
	var (
		interval    time.Duration
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the kind registry current until interrupted",
		Long: `Periodically re-list the cluster's CustomResourceDefinitions, merged
with --kinds-file, and reload immediately whenever the kinds file changes.

With --metrics-addr, refresh metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			sources := []kinds.Source{a.dispatcher.KindSource(globals.account)}
			if globals.kindsFile != "" {
				sources = append([]kinds.Source{kinds.FileSource{Path: globals.kindsFile}}, sources...)
			}
			refresher := kinds.NewRefresher(a.registry, kinds.Merged(sources...), interval, a.logger)

			var server *instrumentation.MetricsServer
			if metricsAddr != "" {
				server, err = instrumentation.NewMetricsServer(instrumentation.MetricsServerConfig{
					Addr:     metricsAddr,
					Provider: a.provider,
				})
				if err != nil {
					return fmt.Errorf("failed to create metrics server: %w", err)
				}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, ctx := errgroup.WithContext(ctx)

			if server != nil {
				g.Go(func() error {
					if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("metrics server: %w", err)
					}
					return nil
				})
				g.Go(func() error {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return server.Shutdown(shutdownCtx)
				})
				a.logger.Info("metrics server started", slog.String("addr", server.Addr()), slog.String("endpoint", "/metrics"))
			}

			// The first refresh must succeed before the registry is reported ready.
			n, err := refresher.Refresh(ctx)
			if err != nil {
				a.provider.Metrics().RecordKindRefresh(ctx, "watch", instrumentation.StatusError, 0)
				cancel()
				_ = g.Wait()
				return fmt.Errorf("initial kinds refresh: %w", err)
			}
			a.provider.Metrics().RecordKindRefresh(ctx, "watch", instrumentation.StatusSuccess, n)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "watching %d custom resource kinds\n", n)
			if server != nil {
				server.SetReady(true)
			}

			g.Go(func() error {
				refresher.Run(ctx)
				return nil
			})

			if globals.kindsFile != "" {
				// The scratch registry only detects edits; the refresher owns a.registry.
				g.Go(func() error {
					return kinds.WatchFile(ctx, globals.kindsFile, kinds.MustNewRegistry(), a.logger, func([]kinds.Entry) {
						refreshOnce(ctx, a, refresher)
					})
				})
			}

			return g.Wait()
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", defaultRefreshInterval, "Time between CustomResourceDefinition listings")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	return cmd
}

// refreshOnce runs one refresh and records its outcome.
func refreshOnce(ctx context.Context, a *app, refresher *kinds.Refresher) {
	metrics := a.provider.Metrics()
	n, err := refresher.Refresh(ctx)
	if err != nil {
		metrics.RecordKindRefresh(ctx, "file", instrumentation.StatusError, 0)
		a.logger.WarnContext(ctx, "failed to refresh kinds after file change", logging.Err(err))
		return
	}
	metrics.RecordKindRefresh(ctx, "file", instrumentation.StatusSuccess, n)
	a.logger.InfoContext(ctx, "refreshed kinds after file change", slog.Int("kinds", n))
}

func printKinds(cmd *cobra.Command, entries []kinds.Entry) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KIND\tNAMESPACED")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%t\n", e.Kind, e.Namespaced)
	}
	return tw.Flush()
}
