package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"bookgraph/internal/platform/logging"
	"bookgraph/internal/store"
)

const connectTimeout = 10 * time.Second

func main() {
	loadEnvFiles()

	var cfg config
	kctx := kong.Parse(&cfg, kongOptions()...)

	logger, err := logging.Setup(cfg.LogLevel, "console")
	if err != nil {
		kctx.Fatalf("cannot set up logging: %s", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &cfg, logger); err != nil {
		logger.Fatal("Migration failed", zap.String("command", cfg.Command), zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config, logger *zap.Logger) error {
	if cfg.Command == "create" {
		// does not need a database connection
		return goose.RunContext(ctx, cfg.Command, nil, cfg.Dir, withDefaultType(cfg.Args)...)
	}

	pool, err := store.OpenPG(ctx, cfg.PostgreSQLURL, connectTimeout)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetLogger(zap.NewStdLog(logger.Named("goose")))
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	logger.Info(
		"Running migrations",
		zap.String("command", cfg.Command),
		zap.String("dir", cfg.Dir),
		zap.String("url", store.RedactDSN(cfg.PostgreSQLURL)),
	)

	if err := goose.RunContext(ctx, cfg.Command, db, cfg.Dir, cfg.Args...); err != nil {
		return err
	}

	logger.Info("Migrations done", zap.String("command", cfg.Command))
	return nil
}

// withDefaultType makes 'create' produce SQL migrations unless a type is given.
func withDefaultType(args []string) []string {
	if len(args) == 1 {
		return append(args, "sql")
	}
	return args
}
