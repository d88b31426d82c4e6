package refresh

import (
	"context"
	"errors"
	"time"
)

// ErrNotActive is returned by [Ledger.Rotate] when the jti being rotated is
// absent from the ledger — already rotated, revoked, or expired.
var ErrNotActive = errors.New("refresh token not active")

// ErrRedisUnavailable is an exported constant or variable used by the authentication engine.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Record is the ledger entry kept per active refresh-token identity. It
// carries enough client context to render a session list and to audit
// rotation activity.
type Record struct {
	JTI       string `json:"jti"`
	Subject   string `json:"sub"`
	ExpiresAt int64  `json:"exp"`
	UserAgent string `json:"ua,omitempty"`
	IP        string `json:"ip,omitempty"`
}

// Expired reports whether the record's expiry is at or before now.
func (r Record) Expired(now time.Time) bool {
	return r.ExpiresAt <= now.Unix()
}

// Ledger is the active-set store behind refresh rotation. Implementations
// must make Rotate atomic: of any number of concurrent Rotate calls for the
// same old jti, exactly one succeeds and the rest observe [ErrNotActive].
type Ledger interface {
	// Add inserts rec as active. Adding an existing jti overwrites it.
	Add(ctx context.Context, rec Record) error

	// Revoke removes jti from the active set. Revoking an absent jti is
	// not an error.
	Revoke(ctx context.Context, jti string) error

	// IsActive reports whether jti is present and unexpired.
	IsActive(ctx context.Context, jti string) (bool, error)

	// Rotate retires oldJTI and installs next in one atomic step. Returns
	// [ErrNotActive] when oldJTI is not in the active set.
	Rotate(ctx context.Context, oldJTI string, next Record) error

	// Close releases backend resources. Safe to call more than once.
	Close() error
}
