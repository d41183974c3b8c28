// Package storage opens the document store selected by configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/carlot/carlot/internal/config"
	"github.com/carlot/carlot/internal/repository"
	"github.com/carlot/carlot/internal/repository/memory"
	"github.com/carlot/carlot/internal/repository/postgres"
	"github.com/carlot/carlot/internal/repository/redisstore"
	"github.com/carlot/carlot/internal/repository/sqlite"
)

// Open connects to the backend named by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		logger.Info("connecting to PostgreSQL", "url", RedactURL(cfg.DatabaseURL))
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		return store, nil

	case config.DriverRedis:
		logger.Info("connecting to Redis", "url", RedactURL(cfg.RedisURL), "prefix", cfg.RedisKeyPrefix)
		store, err := redisstore.Open(ctx, cfg.RedisURL, cfg.RedisKeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return store, nil

	case config.DriverSQLite:
		logger.Info("opening SQLite database", "path", cfg.SQLitePath)
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
		return store, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// RedactURL hides the password in a connection URL for logging.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}
