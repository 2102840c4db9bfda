// Package history keeps the most recent generation results. Every backend
// stores newest first and evicts the oldest entries beyond its limit.
package history

import (
	"context"
	"fmt"

	"github.com/Conceptual-Machines/uivariants-api/internal/config"
	"github.com/Conceptual-Machines/uivariants-api/internal/database"
	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"github.com/redis/go-redis/v9"
)

// Store is the persistence boundary for assembled results
type Store interface {
	// Append adds a result, evicting the oldest beyond the retention limit
	Append(ctx context.Context, result models.GenerationResult) error
	// List returns up to limit results, newest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]models.GenerationResult, error)
	Clear(ctx context.Context) error
	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error
}

// New builds the backend selected by cfg.HistoryBackend
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = config.DefaultHistoryLimit
	}

	switch cfg.HistoryBackend {
	case "", config.HistoryBackendMemory:
		return NewMemoryStore(limit), nil

	case config.HistoryBackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return NewRedisStore(client, limit), nil

	case config.HistoryBackendPostgres:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db, &GenerationRecord{}); err != nil {
			return nil, err
		}
		return NewGormStore(db, limit), nil

	default:
		return nil, fmt.Errorf("unknown history backend: %s (allowed: memory, redis, postgres)", cfg.HistoryBackend)
	}
}
