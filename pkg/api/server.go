// Package api is the thin HTTP boundary in front of the routing engine:
// enough of fasthttp/goccy-json/go.geojson to exercise that stack, not a
// feature-complete gateway (no CORS negotiation, no compression).
package api

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"mrouter/pkg/cache"
	"mrouter/pkg/routing"
	"mrouter/pkg/store"
)

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxConcurrent int
}

// DefaultConfig returns sane defaults for local/CI use.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Addr:          ":8080",
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  10 * time.Second,
		MaxConcurrent: 256,
	}
}

// Handlers wires an Engine and Store to the HTTP surface. Cache is optional
// — a nil Cache just means every request is computed fresh.
type Handlers struct {
	Engine *routing.Engine
	Store  store.Store
	Cache  *cacheConfig
}

// cacheConfig bundles the TTLs the handlers apply when a cache.Config is
// supplied; kept distinct from cache.Config so this package doesn't need a
// live Redis connection just to compile or to run without one.
type cacheConfig struct {
	RouteTTL  time.Duration
	ConfigTTL time.Duration
	Enabled   bool
}

// NewCacheConfig builds a cacheConfig from a loaded cache.Config.
func NewCacheConfig(c *cache.Config) *cacheConfig {
	if c == nil {
		return &cacheConfig{Enabled: false}
	}
	return &cacheConfig{RouteTTL: c.RouteTTL, ConfigTTL: c.ConfigTTL, Enabled: true}
}

// handleMetrics serves /metrics from prometheus/client_golang's default
// registry.
var handleMetrics = fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())

// NewServer builds the fasthttp.Server, wiring middleware (request ID,
// logging, panic recovery, concurrency limit) around the route table.
func NewServer(cfg ServerConfig, h *Handlers) *fasthttp.Server {
	sem := make(chan struct{}, cfg.MaxConcurrent)

	router := func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/route":
			h.HandleRoute(ctx)
		case "/explore":
			h.HandleExplore(ctx)
		case "/health":
			h.HandleHealth(ctx)
		case "/metrics":
			handleMetrics(ctx)
		default:
			writeError(ctx, fasthttp.StatusNotFound, "not_found", "unknown route: "+string(ctx.Path()))
		}
	}

	handler := withMiddleware(router, sem)

	return &fasthttp.Server{
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ListenAndServe starts srv and blocks until SIGINT/SIGTERM, then shuts it
// down gracefully.
func ListenAndServe(srv *fasthttp.Server, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("mrouter api listening on %s", addr)
		errCh <- srv.ListenAndServe(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sig:
		log.Print("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.ShutdownWithContext(ctx)
	}
}
