package kinds

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync/atomic"
)

// Entry registers one custom resource kind.
type Entry struct {
	// Kind is the exact kind name including its API group,
	// e.g. "ServiceMonitor.monitoring.coreos.com".
	Kind string `json:"kind" yaml:"kind"`
	// Namespaced reports whether instances live in a namespace.
	Namespaced bool `json:"namespaced" yaml:"namespaced"`
}

// Resolution is the outcome of resolving a kind.
type Resolution struct {
	// Token is the kind as it appears on the kubectl command line.
	Token      string
	Namespaced bool
	BuiltIn    bool
}

type table map[string]Entry

// Registry holds the custom resource kinds known beyond the built-in set.
// It is safe for concurrent use; lookups never block and never observe a
// partially replaced table. The zero value is an empty registry.
type Registry struct {
	current atomic.Pointer[table]
}

// NewRegistry creates a Registry holding entries.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{}
	if err := r.Replace(entries); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
func MustNewRegistry(entries ...Entry) *Registry {
	r, err := NewRegistry(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// Replace swaps the registered kinds for entries. The new table is built
// aside and published in one step; on error the current table is kept.
func (r *Registry) Replace(entries []Entry) error {
	next := make(table, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Kind) == "" {
			return fmt.Errorf("registry entry with empty kind")
		}
		if _, dup := next[e.Kind]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateKind, e.Kind)
		}
		next[e.Kind] = e
	}

	r.current.Store(&next)
	return nil
}

// Lookup returns the entry registered under exactly kind.
func (r *Registry) Lookup(kind string) (Entry, bool) {
	e, ok := r.table()[kind]
	return e, ok
}

// Entries returns the registered entries sorted by kind.
func (r *Registry) Entries() []Entry {
	t := r.table()
	out := make([]Entry, 0, len(t))
	for _, k := range slices.Sorted(maps.Keys(t)) {
		out = append(out, t[k])
	}
	return out
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int {
	return len(r.table())
}

// IsBuiltIn reports whether kind (with optional group) is served by the
// built-in table.
func (r *Registry) IsBuiltIn(kind, group string) bool {
	_, ok := r.builtin(kind, group)
	return ok
}

// Resolve resolves kind and group to a command-line token and scoping.
//
// Built-in kinds resolve to their lower-cased kind without group, so
// "Deployment"/"apps" becomes "deployment". A group that disagrees with the
// built-in table sends the kind to the registry, which is searched by exact
// qualified name. A miss returns an *UnregisteredKindError.
func (r *Registry) Resolve(kind, group string) (Resolution, error) {
	if b, ok := r.builtin(kind, group); ok {
		return Resolution{Token: b.Kind, Namespaced: b.Namespaced, BuiltIn: true}, nil
	}

	qualified := qualify(kind, group)
	e, ok := r.Lookup(qualified)
	if !ok {
		return Resolution{}, &UnregisteredKindError{Kind: qualified}
	}

	return Resolution{Token: e.Kind, Namespaced: e.Namespaced}, nil
}

// ResolveRef is shorthand for Resolve(ref.Kind, ref.Group).
func (r *Registry) ResolveRef(ref Ref) (Resolution, error) {
	return r.Resolve(ref.Kind, ref.Group)
}

func (r *Registry) builtin(kind, group string) (builtinKind, bool) {
	return lookupBuiltin(kind, group, false)
}

// table returns the current table, or nil before the first Replace.
func (r *Registry) table() table {
	if t := r.current.Load(); t != nil {
		return *t
	}
	return nil
}
