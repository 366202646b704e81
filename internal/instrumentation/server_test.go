package instrumentation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsServer(t *testing.T) {
	_, err := NewMetricsServer(MetricsServerConfig{Addr: ":9090"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instrumentation provider is required")

	provider, err := NewProvider(context.Background(), Config{})
	require.NoError(t, err)

	srv, err := NewMetricsServer(MetricsServerConfig{Provider: provider})
	require.NoError(t, err)
	assert.Equal(t, DefaultMetricsAddr, srv.Addr())

	srv, err = NewMetricsServer(MetricsServerConfig{Addr: "127.0.0.1:9191", Provider: provider})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9191", srv.Addr())
}

func TestMetricsServer_Handler(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{ServiceVersion: "v1.0.0"})
	require.NoError(t, err)
	srv, err := NewMetricsServer(MetricsServerConfig{Provider: provider})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err, path)
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, _ := get("/metrics")
	assert.Equal(t, http.StatusOK, code)

	code, body := get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok","version":"v1.0.0"}`, body)

	code, body = get("/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.JSONEq(t, `{"status":"not ready","version":"v1.0.0"}`, body)

	srv.SetReady(true)
	code, _ = get("/readyz")
	assert.Equal(t, http.StatusOK, code)
}
