// Package app wires the Datagroom MCP server subsystems into a running
// application: gateway client, tool registry, MCP streamable HTTP transport,
// health endpoints, and the Prometheus metrics endpoint.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/datagroom-ai/datagroom-mcp/internal/config"
	"github.com/datagroom-ai/datagroom-mcp/internal/gateway"
	"github.com/datagroom-ai/datagroom-mcp/internal/health"
	"github.com/datagroom-ai/datagroom-mcp/internal/observe"
	"github.com/datagroom-ai/datagroom-mcp/internal/tools"
)

// shutdownGrace is how long in-flight requests get to finish after the run
// context is cancelled.
const shutdownGrace = 10 * time.Second

// App owns the HTTP server lifecycle. Create with [New], run with [App.Run].
type App struct {
	cfg    *config.Config
	client *gateway.Client
	srv    *http.Server
}

// New constructs the full application from cfg: the gateway client (failing
// fast when the credential is missing), the five-tool registry, and the HTTP
// mux serving the MCP endpoint at /mcp alongside /healthz, /readyz, and
// /metrics.
func New(cfg *config.Config, version string) (*App, error) {
	metrics := observe.DefaultMetrics()

	client, err := gateway.New(cfg.Gateway, metrics)
	if err != nil {
		return nil, err
	}

	registry := tools.New(client, cfg.Gateway.DefaultUser, metrics)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "datagroom-mcp",
		Version: version,
	}, nil)
	registry.Register(server)

	streamable := mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return server }, nil)

	checks := health.New(health.Checker{Name: "gateway", Check: client.Ping})

	mux := http.NewServeMux()
	mux.Handle("/mcp", observe.Middleware(metrics)(streamable))
	mux.HandleFunc("/healthz", checks.Healthz)
	mux.HandleFunc("/readyz", checks.Readyz)
	mux.Handle("/metrics", promhttp.Handler())

	return &App{
		cfg:    cfg,
		client: client,
		srv: &http.Server{
			Addr:              cfg.Server.ListenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to [shutdownGrace] before returning.
func (a *App) Run(ctx context.Context) error {
	slog.Info("datagroom-mcp listening",
		"addr", a.cfg.Server.ListenAddr,
		"mcp_endpoint", "/mcp",
		"gateway", a.cfg.Gateway.URL,
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
