// Package metrics provides Prometheus metrics for tool usage and
// upstream Falcon API calls, with an optional /metrics HTTP listener.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carlosmmatos/falcon-mcp-go/internal/falcon"
)

// Manager owns the metrics registry and, when an address is configured,
// the HTTP listener that exposes it. All methods are safe for
// concurrent use.
type Manager struct {
	config *Config
	logger *slog.Logger

	registry *prometheus.Registry
	server   *http.Server
	addr     net.Addr
	wg       sync.WaitGroup

	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	upstream     *prometheus.CounterVec
}

// The falcon client reports upstream call outcomes through this.
var _ falcon.RequestRecorder = (*Manager)(nil)

// NewManager creates a metrics manager. Collectors are always
// registered on a private registry; the HTTP listener only starts when
// config.Addr is set.
func NewManager(config *Config, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Manager{
		config:   config,
		logger:   logger,
		registry: registry,
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "falcon_mcp",
				Name:      "tool_calls_total",
				Help:      "Total number of MCP tool invocations",
			},
			[]string{"tool", "status"}, // status=ok/error
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "falcon_mcp",
				Name:      "tool_duration_seconds",
				Help:      "Tool invocation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		upstream: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "falcon_mcp",
				Name:      "upstream_requests_total",
				Help:      "Total number of Falcon API requests by status code",
			},
			[]string{"operation", "status_code"},
		),
	}

	if config.Addr == "" {
		logger.Debug("Metrics listener disabled (METRICS_ADDR not set)")
		return m, nil
	}

	ln, err := net.Listen("tcp", config.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind metrics listener on %s: %w", config.Addr, err)
	}
	m.addr = ln.Addr()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	m.server = &http.Server{Handler: mux}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Warn("Metrics listener stopped unexpectedly", "error", err)
		}
	}()

	logger.Info("Metrics listener started", "addr", m.addr.String())
	return m, nil
}

// ListenAddr returns the bound listener address, or "" when the
// listener is disabled.
func (m *Manager) ListenAddr() string {
	if m.addr == nil {
		return ""
	}
	return m.addr.String()
}

// RecordToolCall records one tool invocation with its outcome and
// duration.
func (m *Manager) RecordToolCall(tool string, isError bool, elapsed time.Duration) {
	status := "ok"
	if isError {
		status = "error"
	}
	m.toolCalls.WithLabelValues(tool, status).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// RecordUpstreamRequest records one Falcon API request outcome.
func (m *Manager) RecordUpstreamRequest(operation string, statusCode int) {
	m.upstream.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
}

// Close shuts down the metrics listener and waits for its goroutine.
// Safe to call when the listener never started, and idempotent.
func (m *Manager) Close() error {
	if m.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := m.server.Shutdown(ctx)
	m.wg.Wait()
	return err
}
