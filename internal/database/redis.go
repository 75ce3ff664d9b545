package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eliteadvisers/portal/internal/config"
)

// sessionClientName tags the session store connection in CLIENT LIST.
const sessionClientName = "portal-session-store"

// sessionRedisOptions parses REDIS_URL into options for the session store
// connection. The session blob is a single small key, so one idle
// connection is enough.
func sessionRedisOptions(cfg *config.Config) (*redis.Options, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse session store redis URL: %w", err)
	}
	opt.ClientName = sessionClientName
	opt.PoolSize = 2
	opt.MinIdleConns = 1
	return opt, nil
}

// NewSessionRedisClient connects to the Redis instance that backs the
// session store and pings it once.
func NewSessionRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := sessionRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping session store redis: %w", err)
	}

	log.Info().
		Str("store", config.SessionStoreRedis).
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Session storage ready")

	return rdb, nil
}
