package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/eliteadvisers/portal/internal/config"
)

// RedisStorage keeps session values in Redis so several local processes
// (CLI and companion server) share one login. Values never expire here; the
// API is the only judge of token validity.
type RedisStorage struct {
	rdb *redis.Client
}

// NewRedisStorage wraps a connected client.
func NewRedisStorage(rdb *redis.Client) *RedisStorage {
	return &RedisStorage{rdb: rdb}
}

func (s *RedisStorage) Load(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, config.CacheKey.SessionKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStorage) Store(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, config.CacheKey.SessionKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, config.CacheKey.SessionKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
