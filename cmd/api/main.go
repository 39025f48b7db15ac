package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"bookgraph/internal/platform/logging"
	"bookgraph/internal/store"
)

func main() {
	loadEnvFiles()

	var cfg config
	kctx := kong.Parse(&cfg, kongOptions()...)

	logger, err := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		kctx.Fatalf("cannot set up logging: %s", err)
	}
	defer func() { _ = logger.Sync() }()

	if _, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf)); err != nil {
		logger.Sugar().Warnf("Failed to set GOMAXPROCS: %s.", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &cfg, logger); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func run(ctx context.Context, cfg *config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, cfg.Storage.Timeout)
	backend, err := store.Open(connectCtx, cfg.storeConfig(), logger.Named("storage"))
	connectCancel()
	if err != nil {
		return err
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Storage.Timeout)
		defer cancel()

		if err := backend.Close(closeCtx); err != nil {
			logger.Warn("Failed to close storage", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	graphHandler, err := newGraphHandler(backend, reg, logger.Named("graphql"))
	if err != nil {
		return err
	}

	handler, stopMiddlewares := newHandler(cfg, newRouter(graphHandler, backend), logger)
	defer stopMiddlewares()

	var wg sync.WaitGroup

	if cfg.DebugAddr != "" && cfg.DebugAddr != "-" {
		wg.Add(1)

		go func() {
			defer wg.Done()
			runDebugHandler(ctx, cfg.DebugAddr, reg, logger.Named("debug"))
		}()
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	err = serve(ctx, srv, 10*time.Second, logger.Named("http"))

	cancel()
	wg.Wait()

	return err
}
