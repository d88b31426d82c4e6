package goauth

import (
	"errors"
	"fmt"

	"github.com/inertiapixel/goauth/jwt"
)

var (
	// ErrUnauthorized is an exported constant or variable used by the authentication engine.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoToken is an exported constant or variable used by the authentication engine.
	ErrNoToken = errors.New("no token provided")
	// ErrRefreshInvalid is an exported constant or variable used by the authentication engine.
	// It wraps ErrUnauthorized so errors.Is(err, ErrUnauthorized) holds at the API boundary.
	ErrRefreshInvalid = fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	// ErrRefreshReuse is an exported constant or variable used by the authentication engine.
	// It wraps ErrUnauthorized so errors.Is(err, ErrUnauthorized) holds at the API boundary.
	ErrRefreshReuse = fmt.Errorf("%w: refresh token reuse detected", ErrUnauthorized)
	// ErrMissingSecret is an exported constant or variable used by the authentication engine.
	ErrMissingSecret = errors.New("signing secret not configured")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrLedgerUnavailable is an exported constant or variable used by the authentication engine.
	ErrLedgerUnavailable = errors.New("refresh ledger unavailable")
	// ErrBlacklistUnavailable is an exported constant or variable used by the authentication engine.
	ErrBlacklistUnavailable = errors.New("blacklist unavailable")
)

// Token verification sentinels are shared with the jwt package so errors.Is
// works on either side of the boundary.
var (
	// ErrTokenExpired is an exported constant or variable used by the authentication engine.
	ErrTokenExpired = jwt.ErrTokenExpired
	// ErrTokenInvalid is an exported constant or variable used by the authentication engine.
	ErrTokenInvalid = jwt.ErrTokenInvalid
)
