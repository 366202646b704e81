package instrumentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultMetricsAddr is the listen address of the metrics server.
const DefaultMetricsAddr = ":9090"

// MetricsServerConfig configures a MetricsServer.
type MetricsServerConfig struct {
	// Addr is the listen address (default: ":9090").
	Addr string
	// Provider must use the prometheus metrics exporter for /metrics to
	// carry job metrics.
	Provider *Provider
}

// MetricsServer serves /metrics and the /healthz and /readyz health endpoints on a
// dedicated port. It starts out not ready.
type MetricsServer struct {
	server  *http.Server
	ready   atomic.Bool
	version string
}

// HealthResponse is the JSON body of the health endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// NewMetricsServer creates a MetricsServer. It does not start listening.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.Provider == nil {
		return nil, errors.New("instrumentation provider is required")
	}
	if config.Addr == "" {
		config.Addr = DefaultMetricsAddr
	}

	s := &MetricsServer{version: config.Provider.config.ServiceVersion}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.writeStatus(w, http.StatusOK, "ok")
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !s.ready.Load() {
			s.writeStatus(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		s.writeStatus(w, http.StatusOK, "ok")
	})

	s.server = &http.Server{
		Addr:              config.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// SetReady sets the state reported by /readyz.
func (s *MetricsServer) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *MetricsServer) writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: status, Version: s.version})
}

// Addr returns the configured listen address.
func (s *MetricsServer) Addr() string {
	return s.server.Addr
}

// Handler returns the HTTP handler.
func (s *MetricsServer) Handler() http.Handler {
	return s.server.Handler
}

// Start listens and serves until Shutdown. It returns http.ErrServerClosed
// after a clean shutdown.
func (s *MetricsServer) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
