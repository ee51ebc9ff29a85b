package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

type revokedTokensRepo struct {
	client *redis.Client
}

func (r *revokedTokensRepo) Revoke(ctx context.Context, fingerprint string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired, nothing to blacklist.
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+fingerprint, 1, ttl).Err()
}

func (r *revokedTokensRepo) IsRevoked(ctx context.Context, fingerprint string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+fingerprint).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteExpired is a no-op; Redis evicts revocations via key TTLs.
func (r *revokedTokensRepo) DeleteExpired(context.Context) error { return nil }
