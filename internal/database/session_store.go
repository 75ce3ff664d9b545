package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eliteadvisers/portal/internal/config"
	"github.com/eliteadvisers/portal/internal/session"
)

// OpenSessionStorage returns the session backend selected by SESSION_STORE.
// The returned close func releases the backend and is never nil.
func OpenSessionStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (session.Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		log.Info().Str("store", cfg.SessionStore).Msg("Session storage ready")
		return session.NewMemoryStorage(), noop, nil

	case config.SessionStoreFile, "":
		log.Info().Str("store", config.SessionStoreFile).Str("path", cfg.SessionFile).Msg("Session storage ready")
		return session.NewFileStorage(cfg.SessionFile), noop, nil

	case config.SessionStoreRedis:
		rdb, err := NewSessionRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, noop, err
		}
		return session.NewRedisStorage(rdb), rdb.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown session store %q", cfg.SessionStore)
}
