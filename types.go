package goauth

import (
	"context"

	"github.com/inertiapixel/goauth/jwt"
)

// Claims is the authenticated identity carried in tokens. It is the jwt
// package's claim set re-exported at the public boundary.
type Claims = jwt.Claims

// Credentials is the token pair presented with a request. Either field may be
// empty; [Engine.Authenticate] decides what the combination means.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// State is the terminal state of one [Engine.Authenticate] evaluation.
//
// State instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type State uint8

const (
	// StateNoCredential is an exported constant or variable used by the authentication engine.
	StateNoCredential State = iota
	// StateBlacklisted is an exported constant or variable used by the authentication engine.
	StateBlacklisted
	// StateValidAccess is an exported constant or variable used by the authentication engine.
	StateValidAccess
	// StateExpiredAccess is an exported constant or variable used by the authentication engine.
	StateExpiredAccess
	// StateInvalidAccess is an exported constant or variable used by the authentication engine.
	StateInvalidAccess
	// StateRefreshedOk is an exported constant or variable used by the authentication engine.
	StateRefreshedOk
	// StateRefreshRejected is an exported constant or variable used by the authentication engine.
	StateRefreshRejected
)

// Reason classifies why a session ended, as reported to the session-timeout
// hook and to HTTP clients.
type Reason string

const (
	// ReasonMissing is an exported constant or variable used by the authentication engine.
	ReasonMissing Reason = "missing"
	// ReasonBlacklisted is an exported constant or variable used by the authentication engine.
	ReasonBlacklisted Reason = "blacklisted"
	// ReasonExpired is an exported constant or variable used by the authentication engine.
	ReasonExpired Reason = "expired"
	// ReasonInvalid is an exported constant or variable used by the authentication engine.
	ReasonInvalid Reason = "invalid"
)

// Decision is the outcome of [Engine.Authenticate]. Claims is set on the
// accepting states (ValidAccess, RefreshedOk); Reason on the rejecting ones.
// On RefreshedOk the rotated token pair is carried for the transport layer to
// hand back to the client.
type Decision struct {
	State        State
	Claims       *Claims
	Reason       Reason
	AccessToken  string
	RefreshToken string
}

// Accepted reports whether the decision lets the request proceed.
func (d *Decision) Accepted() bool {
	if d == nil {
		return false
	}
	return d.State == StateValidAccess || d.State == StateRefreshedOk
}

// LoginResult is returned by the token-issuing operations: Login, OAuthLogin,
// and Refresh.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Claims       Claims
}

// IdentityProvider is the interface callers implement to plug their user
// database into the engine. VerifyCredentials returns the identity claims for
// a valid identifier/password pair and an error otherwise; the engine maps
// every provider error to [ErrInvalidCredentials] so backend detail never
// reaches clients.
type IdentityProvider interface {
	VerifyCredentials(ctx context.Context, identifier, password string) (Claims, error)
}
