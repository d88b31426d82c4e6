package blacklist

import (
	"context"
	"errors"
	"time"
)

// ErrRedisUnavailable is an exported constant or variable used by the authentication engine.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Blacklist is the revoked-access-token set. Implementations must treat an
// entry as gone once expiresAt passes.
type Blacklist interface {
	// Add marks token revoked until expiresAt. Tokens already past expiry
	// need no entry and may be ignored.
	Add(ctx context.Context, token string, expiresAt time.Time) error

	// Contains reports whether token is currently revoked.
	Contains(ctx context.Context, token string) (bool, error)

	// Close releases backend resources. Safe to call more than once.
	Close() error
}
