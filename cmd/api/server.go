package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bookgraph/internal/book"
	"bookgraph/internal/graph"
	"bookgraph/internal/httpx"
	"bookgraph/internal/store"
)

const readyTimeout = 500 * time.Millisecond

// newRouter registers the GraphQL endpoint and health checks.
// The GraphQL handler is served at /graphql and at the root path.
func newRouter(graphHandler http.Handler, backend store.Backend) *http.ServeMux {
	router := http.NewServeMux()

	router.Handle("/graphql", graphHandler)
	router.Handle("/{$}", graphHandler)

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONSuccess(w, r, map[string]string{"status": "ok"}, nil)
	})

	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := backend.Ping(ctx); err != nil {
			httpx.JSONError(w, r, http.StatusServiceUnavailable, "NOT_READY", "storage not ready", nil)
			return
		}
		httpx.JSONSuccess(w, r, map[string]string{"status": "ready"}, nil)
	})

	return router
}

// newHandler wraps router with the middleware stack configured by cfg.
// The returned stop function releases middleware resources.
func newHandler(cfg *config, router http.Handler, l *zap.Logger) (http.Handler, func()) {
	middlewares := []func(http.Handler) http.Handler{
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(l.Named("http")),
		httpx.RecoveryMiddleware(l.Named("http")),
		httpx.SecurityHeadersMiddleware(cfg.HSTS),
		httpx.CORSMiddleware(cfg.CORSOrigins, graph.Methods),
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	}

	stop := func() {}
	if cfg.RateLimit.RPS > 0 {
		rl := httpx.NewRateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TrustProxies)
		middlewares = append(middlewares, rl.Middleware)
		stop = rl.Stop
	}

	return httpx.Chain(router, middlewares...), stop
}

// newGraphHandler wires storage, service, metrics and schema together.
func newGraphHandler(backend store.Backend, reg prometheus.Registerer, l *zap.Logger) (http.Handler, error) {
	metrics := graph.NewMetrics()
	if err := reg.Register(metrics); err != nil {
		return nil, err
	}

	schema, err := graph.NewSchema(graph.NewResolver(book.NewService(backend), l, metrics), l)
	if err != nil {
		return nil, err
	}

	return graph.NewHandler(schema), nil
}

// serve runs srv until ctx is canceled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, l *zap.Logger) error {
	lis, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}

	l.Info("Listening", zap.String("addr", lis.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err = <-errCh; errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// runDebugHandler serves Prometheus metrics at /debug/metrics until ctx is canceled.
func runDebugHandler(ctx context.Context, addr string, reg *prometheus.Registry, l *zap.Logger) {
	stdL, err := zap.NewStdLogAt(l, zap.WarnLevel)
	if err != nil {
		l.Error("Failed to create debug handler logger", zap.Error(err))
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/debug/metrics", promhttp.InstrumentMetricHandler(
		reg, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			ErrorLog:          stdL,
			ErrorHandling:     promhttp.ContinueOnError,
			Registry:          reg,
			EnableOpenMetrics: true,
		}),
	))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ErrorLog:          stdL,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := serve(ctx, srv, 3*time.Second, l); err != nil {
		l.Error("Debug handler stopped", zap.Error(err))
		return
	}

	l.Info("Debug handler stopped")
}
