package kinds

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Refresher re-populates a Registry from a Source. Concurrent refreshes
// share one Source call; a failed refresh keeps the previous table.
type Refresher struct {
	registry *Registry
	source   Source
	interval time.Duration
	logger   *slog.Logger
	group    singleflight.Group
}

// NewRefresher creates a Refresher. interval is only used by Run.
func NewRefresher(registry *Registry, source Source, interval time.Duration, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		registry: registry,
		source:   source,
		interval: interval,
		logger:   logger,
	}
}

// Refresh loads the source once and swaps the registry table. It returns
// the number of registered kinds. The shared load is detached from any one
// caller's cancellation; a canceled caller stops waiting but the load still
// completes for the others.
func (r *Refresher) Refresh(ctx context.Context) (int, error) {
	loadCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan("refresh", func() (any, error) {
		entries, err := r.source.Kinds(loadCtx)
		if err != nil {
			return 0, fmt.Errorf("load kinds: %w", err)
		}
		if err := r.registry.Replace(entries); err != nil {
			return 0, fmt.Errorf("replace kinds: %w", err)
		}
		return r.registry.Len(), nil
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int), nil
	}
}

// Run refreshes immediately and then on every interval until ctx is done.
// Failures are logged and retried at the next tick.
func (r *Refresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.WarnContext(ctx, "kinds refresher disabled: non-positive interval")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if n, err := r.Refresh(ctx); err != nil {
			r.logger.WarnContext(ctx, "failed to refresh kinds", slog.String("error", err.Error()))
		} else {
			r.logger.DebugContext(ctx, "refreshed kinds", slog.Int("kinds", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
