package kinds

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	discoveryfake "k8s.io/client-go/discovery/fake"
	clienttesting "k8s.io/client-go/testing"
)

func TestDiscoverySource_Kinds(t *testing.T) {
	fakeDiscovery := &discoveryfake.FakeDiscovery{Fake: &clienttesting.Fake{}}
	fakeDiscovery.Resources = []*metav1.APIResourceList{
		{
			GroupVersion: "v1",
			APIResources: []metav1.APIResource{
				{Name: "pods", Kind: "Pod", Namespaced: true},
				{Name: "pods/log", Kind: "Pod", Namespaced: true},
			},
		},
		{
			GroupVersion: "apps/v1",
			APIResources: []metav1.APIResource{
				{Name: "deployments", Kind: "Deployment", Namespaced: true},
			},
		},
		{
			GroupVersion: "monitoring.coreos.com/v1",
			APIResources: []metav1.APIResource{
				{Name: "servicemonitors", Kind: "ServiceMonitor", Namespaced: true},
				{Name: "prometheusrules", Kind: "PrometheusRule", Namespaced: true},
				{Name: "servicemonitors/status", Kind: "ServiceMonitor", Namespaced: true},
			},
		},
		{
			GroupVersion: "cert-manager.io/v1",
			APIResources: []metav1.APIResource{
				{Name: "clusterissuers", Kind: "ClusterIssuer", Namespaced: false},
			},
		},
		{
			GroupVersion: "cert-manager.io/v1beta1",
			APIResources: []metav1.APIResource{
				{Name: "clusterissuers", Kind: "ClusterIssuer", Namespaced: false},
			},
		},
	}

	entries, err := NewDiscoverySource(fakeDiscovery, nil).Kinds(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Kind: "ClusterIssuer.cert-manager.io", Namespaced: false},
		{Kind: "PrometheusRule.monitoring.coreos.com", Namespaced: true},
		{Kind: "ServiceMonitor.monitoring.coreos.com", Namespaced: true},
	}, entries)
}

func crd(name, kind, group, scope string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "apiextensions.k8s.io/v1",
		"kind":       "CustomResourceDefinition",
		"metadata":   map[string]any{"name": name},
		"spec": map[string]any{
			"group": group,
			"scope": scope,
			"names": map[string]any{"kind": kind},
		},
	}}
}

func TestDiscoverySource_CoreGroupIsStrict(t *testing.T) {
	fakeDiscovery := &discoveryfake.FakeDiscovery{Fake: &clienttesting.Fake{}}
	fakeDiscovery.Resources = []*metav1.APIResourceList{
		{
			GroupVersion: "v1",
			APIResources: []metav1.APIResource{
				{Name: "deployments", Kind: "Deployment", Namespaced: true},
			},
		},
		{
			GroupVersion: "example.com/v1",
			APIResources: []metav1.APIResource{
				{Name: "configmaps", Kind: "ConfigMap", Namespaced: true},
			},
		},
	}

	entries, err := NewDiscoverySource(fakeDiscovery, nil).Kinds(context.Background())
	require.NoError(t, err)

	var kinds []string
	for _, e := range entries {
		kinds = append(kinds, e.Kind)
	}
	assert.ElementsMatch(t, []string{"Deployment", "ConfigMap.example.com"}, kinds)
}

func TestCRDSource_Entries(t *testing.T) {
	source := CRDSource{
		crd("servicemonitors.monitoring.coreos.com", "ServiceMonitor", "monitoring.coreos.com", "Namespaced"),
		crd("clusterissuers.cert-manager.io", "ClusterIssuer", "cert-manager.io", "Cluster"),
		nil,
	}

	entries, err := source.Entries()
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Kind: "ClusterIssuer.cert-manager.io", Namespaced: false},
		{Kind: "ServiceMonitor.monitoring.coreos.com", Namespaced: true},
	}, entries)

	broken := CRDSource{crd("broken.example.com", "", "example.com", "Namespaced")}
	_, err = broken.Entries()
	assert.Error(t, err)
}

func writeKindsFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestFileSource_Kinds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kinds.yaml")
	writeKindsFile(t, path, `kinds:
  - kind: ServiceMonitor.monitoring.coreos.com
    namespaced: true
  - kind: ClusterIssuer.cert-manager.io
`)

	entries, err := FileSource{Path: path}.Kinds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Kind: "ServiceMonitor.monitoring.coreos.com", Namespaced: true},
		{Kind: "ClusterIssuer.cert-manager.io", Namespaced: false},
	}, entries)

	_, err = FileSource{Path: filepath.Join(dir, "missing.yaml")}.Kinds(context.Background())
	assert.Error(t, err)

	writeKindsFile(t, path, "kinds: [not: valid")
	_, err = FileSource{Path: path}.Kinds(context.Background())
	assert.Error(t, err)
}

func TestWatchFile_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kinds.yaml")
	writeKindsFile(t, path, "kinds:\n  - kind: A.example.com\n")

	registry := MustNewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan []Entry, 10)
	done := make(chan error, 1)
	go func() {
		done <- WatchFile(ctx, path, registry, nil, func(e []Entry) { reloads <- e })
	}()

	select {
	case entries := <-reloads:
		assert.Equal(t, []Entry{{Kind: "A.example.com"}}, entries)
	case <-time.After(5 * time.Second):
		t.Fatal("initial load did not happen")
	}

	writeKindsFile(t, path, "kinds:\n  - kind: B.example.com\n    namespaced: true\n")

	require.Eventually(t, func() bool {
		_, ok := registry.Lookup("B.example.com")
		return ok
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchFile_InitialLoadError(t *testing.T) {
	err := WatchFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), MustNewRegistry(), nil, nil)
	assert.Error(t, err)
}

func TestRefresher_Refresh(t *testing.T) {
	registry := MustNewRegistry(Entry{Kind: "Old.example.com"})

	var calls atomic.Int32
	source := SourceFunc(func(context.Context) ([]Entry, error) {
		calls.Add(1)
		return []Entry{{Kind: "New.example.com", Namespaced: true}}, nil
	})

	n, err := NewRefresher(registry, source, time.Minute, nil).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int32(1), calls.Load())

	_, ok := registry.Lookup("Old.example.com")
	assert.False(t, ok)
	_, ok = registry.Lookup("New.example.com")
	assert.True(t, ok)
}

func TestRefresher_FailureKeepsTable(t *testing.T) {
	registry := MustNewRegistry(Entry{Kind: "Old.example.com"})
	source := SourceFunc(func(context.Context) ([]Entry, error) {
		return nil, errors.New("api server unavailable")
	})

	_, err := NewRefresher(registry, source, time.Minute, nil).Refresh(context.Background())
	require.Error(t, err)

	_, ok := registry.Lookup("Old.example.com")
	assert.True(t, ok)
}

func TestRefresher_CoalescesConcurrentRefreshes(t *testing.T) {
	registry := MustNewRegistry()
	release := make(chan struct{})
	var calls atomic.Int32

	source := SourceFunc(func(context.Context) ([]Entry, error) {
		calls.Add(1)
		<-release
		return StaticSource{{Kind: "A.example.com"}}.Kinds(context.Background())
	})
	refresher := NewRefresher(registry, source, time.Minute, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = refresher.Refresh(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Less(t, calls.Load(), int32(5))
	assert.Equal(t, 1, registry.Len())
}

func TestRefresher_CanceledCallerDoesNotCancelSharedLoad(t *testing.T) {
	registry := MustNewRegistry()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	source := SourceFunc(func(ctx context.Context) ([]Entry, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []Entry{{Kind: "A.example.com"}}, nil
	})
	refresher := NewRefresher(registry, source, time.Minute, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := refresher.Refresh(firstCtx)
		firstErr <- err
	}()
	<-started

	type result struct {
		n   int
		err error
	}
	second := make(chan result, 1)
	go func() {
		n, err := refresher.Refresh(context.Background())
		second <- result{n: n, err: err}
	}()

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 1, res.n)
	assert.Equal(t, 1, registry.Len())
}

func TestRefresher_Run(t *testing.T) {
	registry := MustNewRegistry()
	var calls atomic.Int32
	source := SourceFunc(func(context.Context) ([]Entry, error) {
		calls.Add(1)
		return []Entry{{Kind: "A.example.com"}}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		NewRefresher(registry, source, 10*time.Millisecond, nil).Run(ctx)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, 1, registry.Len())
}

func TestMerged(t *testing.T) {
	first := StaticSource{
		{Kind: "ServiceMonitor.monitoring.coreos.com", Namespaced: true},
		{Kind: "Shared.example.com", Namespaced: true},
	}
	second := StaticSource{
		{Kind: "Shared.example.com", Namespaced: false},
		{Kind: "ClusterIssuer.cert-manager.io"},
	}

	entries, err := Merged(first, second).Kinds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Kind: "ClusterIssuer.cert-manager.io"},
		{Kind: "ServiceMonitor.monitoring.coreos.com", Namespaced: true},
		{Kind: "Shared.example.com", Namespaced: true},
	}, entries)

	boom := errors.New("discovery unavailable")
	_, err = Merged(first, SourceFunc(func(context.Context) ([]Entry, error) { return nil, boom })).Kinds(context.Background())
	require.ErrorIs(t, err, boom)

	entries, err = Merged().Kinds(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
