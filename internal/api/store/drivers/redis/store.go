// Package redis backs the token blacklist with Redis. Revocations are plain
// keys with a TTL matching the token expiry, so cleanup is native and
// DeleteExpired has nothing to do.
package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/simpledungeon/api/internal/api/store"
)

type Store struct {
	client *redis.Client
}

var _ store.Store = (*Store)(nil)

type Config struct {
	Addr     string
	Password string
	DB       int
}

func NewStore(cfg Config) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// NewStoreWithClient wraps an existing client. Used by tests.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// ApplyMigrations is a no-op; the schema is just keyspace conventions.
func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) RevokedTokens() store.RevokedTokens { return &revokedTokensRepo{client: s.client} }
