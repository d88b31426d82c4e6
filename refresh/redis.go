package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "arl"

const (
	rotateStatusNotActive int64 = 0
	rotateStatusRotated   int64 = 1
)

// Old jti must still exist for the rotation to win; the check and the
// swap happen in one script so two racing refreshes cannot both succeed.
const rotateScript = `
local existed = redis.call("EXISTS", KEYS[1])
if existed == 0 then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("SET", KEYS[2], ARGV[1], "PX", ARGV[2])
return 1
`

var rotateLua = redis.NewScript(rotateScript)

// RedisLedger is a Redis-backed [Ledger]. Each active jti is one key with a
// JSON-encoded [Record] value and a TTL matching the token expiry, so Redis
// retires stale entries on its own.
//
// RedisLedger instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedisLedger struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisLedger creates a [RedisLedger] on the given client. prefix sets the
// Redis key namespace; empty selects the default.
func NewRedisLedger(client redis.UniversalClient, prefix string) *RedisLedger {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisLedger{redis: client, prefix: prefix}
}

func (l *RedisLedger) key(jti string) string {
	return l.prefix + ":" + jti
}

func recordTTL(rec Record) time.Duration {
	ttl := time.Until(time.Unix(rec.ExpiresAt, 0))
	if ttl <= 0 {
		return 0
	}
	return ttl
}

// Add inserts rec with a TTL derived from its expiry. Records already past
// expiry are not stored.
func (l *RedisLedger) Add(ctx context.Context, rec Record) error {
	ttl := recordTTL(rec)
	if ttl <= 0 {
		return nil
	}

	encoded, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := l.redis.Set(ctx, l.key(rec.JTI), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Revoke removes jti. Absent keys are ignored.
func (l *RedisLedger) Revoke(ctx context.Context, jti string) error {
	if err := l.redis.Del(ctx, l.key(jti)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// IsActive reports whether jti is present. Expiry is enforced by the key TTL.
func (l *RedisLedger) IsActive(ctx context.Context, jti string) (bool, error) {
	n, err := l.redis.Exists(ctx, l.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

// Rotate retires oldJTI and installs next with a Lua compare-and-swap, so
// concurrent rotations of the same jti produce exactly one winner across all
// instances sharing the ledger.
func (l *RedisLedger) Rotate(ctx context.Context, oldJTI string, next Record) error {
	ttl := recordTTL(next)
	if ttl <= 0 {
		return ErrNotActive
	}

	encoded, err := json.Marshal(next)
	if err != nil {
		return err
	}

	result, err := rotateLua.Run(
		ctx,
		l.redis,
		[]string{l.key(oldJTI), l.key(next.JTI)},
		encoded,
		ttl.Milliseconds(),
	).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	code, ok := result.(int64)
	if !ok {
		return fmt.Errorf("%w: invalid rotate script response", ErrRedisUnavailable)
	}

	switch code {
	case rotateStatusNotActive:
		return ErrNotActive
	case rotateStatusRotated:
		return nil
	default:
		return fmt.Errorf("%w: unknown rotate script status", ErrRedisUnavailable)
	}
}

// Close is a no-op; the Redis client is owned by the caller.
func (l *RedisLedger) Close() error {
	return nil
}
