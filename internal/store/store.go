// Package store implements book.Repository on top of the supported storage backends.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"bookgraph/internal/book"
)

// Backend names accepted by Open.
const (
	BackendMongoDB    = "mongodb"
	BackendPostgreSQL = "postgresql"
	BackendMemory     = "memory"
)

// Backends lists all supported backend names; the first one is the default.
var Backends = []string{BackendMongoDB, BackendPostgreSQL, BackendMemory}

// Backend is a book.Repository with a connection lifecycle.
type Backend interface {
	book.Repository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Config selects and configures a storage backend.
type Config struct {
	Backend string `validate:"oneof=mongodb postgresql memory"`

	MongoDBURI        string `validate:"required_if=Backend mongodb"`
	MongoDBDatabase   string `validate:"required_if=Backend mongodb"`
	MongoDBCollection string `validate:"required_if=Backend mongodb"`

	PostgreSQLURL string `validate:"required_if=Backend postgresql"`

	Timeout time.Duration `validate:"required_unless=Backend memory,gte=0"`
}

var validate = validator.New()

// Validate checks that cfg carries every setting its backend needs.
func (cfg Config) Validate() error {
	err := validate.Struct(cfg)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fe := verrs[0]
	if fe.Field() == "Backend" {
		return fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	return fmt.Errorf("storage backend %q: invalid %s (%s)", cfg.Backend, fe.Field(), fe.Tag())
}

// Open connects to the configured backend.
// It returns only after the connection has been verified.
func Open(ctx context.Context, cfg Config, l *zap.Logger) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendMongoDB:
		client, err := ConnectMongo(ctx, cfg.MongoDBURI, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("cannot connect to MongoDB (%s): %w", RedactDSN(cfg.MongoDBURI), err)
		}
		l.Info(
			"Connected to MongoDB",
			zap.String("uri", RedactDSN(cfg.MongoDBURI)),
			zap.String("database", cfg.MongoDBDatabase),
			zap.String("collection", cfg.MongoDBCollection),
		)
		return NewBookMongo(client, cfg.MongoDBDatabase, cfg.MongoDBCollection, cfg.Timeout), nil

	case BackendPostgreSQL:
		pool, err := OpenPG(ctx, cfg.PostgreSQLURL, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("cannot connect to PostgreSQL (%s): %w", RedactDSN(cfg.PostgreSQLURL), err)
		}
		l.Info("Connected to PostgreSQL", zap.String("url", RedactDSN(cfg.PostgreSQLURL)))
		return NewBookPG(pool, cfg.Timeout), nil

	case BackendMemory:
		l.Warn("Using in-memory storage; data will be lost on exit")
		return NewBookMemory(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// RedactDSN hides credentials in a connection string.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
