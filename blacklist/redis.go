package blacklist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "abl"

// Redis is a Redis-backed [Blacklist] shared across instances. Tokens are
// keyed by SHA-256 digest so raw token material never lands in Redis, and
// each key carries a TTL matching the token expiry.
//
// Redis instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Redis struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedis creates a [Redis] blacklist on the given client. prefix sets the
// Redis key namespace; empty selects the default.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Redis{redis: client, prefix: prefix}
}

func (b *Redis) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return b.prefix + ":" + hex.EncodeToString(sum[:])
}

// Add marks token revoked until expiresAt. Already-expired tokens are not
// stored.
func (b *Redis) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := b.redis.Set(ctx, b.key(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Contains reports whether token is currently revoked. Expiry is enforced by
// the key TTL.
func (b *Redis) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.redis.Exists(ctx, b.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (b *Redis) Close() error {
	return nil
}
