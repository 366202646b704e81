package kinds

import (
	"context"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Source produces the custom resource kinds of a cluster.
type Source interface {
	Kinds(ctx context.Context) ([]Entry, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]Entry, error)

// Kinds implements Source.
func (f SourceFunc) Kinds(ctx context.Context) ([]Entry, error) {
	return f(ctx)
}

// StaticSource always returns the same entries.
type StaticSource []Entry

// Kinds implements Source.
func (s StaticSource) Kinds(context.Context) ([]Entry, error) {
	return slices.Clone(s), nil
}

// Merged loads every source concurrently and combines their entries. When
// two sources register the same kind, the earlier source wins. Any failing
// source fails the whole load.
func Merged(sources ...Source) Source {
	return SourceFunc(func(ctx context.Context) ([]Entry, error) {
		results := make([][]Entry, len(sources))
		g, ctx := errgroup.WithContext(ctx)
		for i, src := range sources {
			g.Go(func() error {
				entries, err := src.Kinds(ctx)
				if err != nil {
					return err
				}
				results[i] = entries
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return dedupe(slices.Concat(results...)), nil
	})
}

// dedupe drops repeated kinds, keeping the first entry, and sorts the result.
func dedupe(entries []Entry) []Entry {
	seen := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Kind]; !ok {
			seen[e.Kind] = e
		}
	}

	out := make([]Entry, 0, len(seen))
	for _, k := range slices.Sorted(maps.Keys(seen)) {
		out = append(out, seen[k])
	}
	return out
}
