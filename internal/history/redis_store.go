package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Conceptual-Machines/uivariants-api/internal/logger"
	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"github.com/redis/go-redis/v9"
)

const redisHistoryKey = "uivariants:history"

// RedisStore keeps history as a capped list of JSON documents
type RedisStore struct {
	client *redis.Client
	key    string
	limit  int
}

// NewRedisStore creates a store on an existing client
func NewRedisStore(client *redis.Client, limit int) *RedisStore {
	return &RedisStore{client: client, key: redisHistoryKey, limit: limit}
}

func (s *RedisStore) Append(ctx context.Context, result models.GenerationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode history entry: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key, payload)
		pipe.LTrim(ctx, s.key, 0, int64(s.limit-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, limit int) ([]models.GenerationResult, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	raw, err := s.client.LRange(ctx, s.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	out := make([]models.GenerationResult, 0, len(raw))
	for _, item := range raw {
		var result models.GenerationResult
		if err := json.Unmarshal([]byte(item), &result); err != nil {
			logger.Warn("Skipping unreadable history entry", logger.Fields{"error": err.Error()})
			continue
		}
		out = append(out, result)
	}
	return out, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
