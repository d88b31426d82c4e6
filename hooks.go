package goauth

import (
	"context"
	"time"
)

// LoginEvent is delivered to OnLoginSuccess after a credential login issues a
// token pair.
type LoginEvent struct {
	Claims    Claims
	IP        string
	UserAgent string
	At        time.Time
}

// LoginErrorEvent is delivered to OnLoginError when credential verification
// fails. Err is the provider's error; clients only ever see
// [ErrInvalidCredentials].
type LoginErrorEvent struct {
	Identifier string
	Err        error
	IP         string
	UserAgent  string
	At         time.Time
}

// OAuthEvent is delivered to OnOAuthSuccess after an externally completed
// OAuth exchange is converted into a token pair.
type OAuthEvent struct {
	Provider  string
	Claims    Claims
	IP        string
	UserAgent string
	At        time.Time
}

// OAuthErrorEvent is delivered to OnOAuthError when an OAuth login is
// rejected.
type OAuthErrorEvent struct {
	Provider string
	Err      error
	At       time.Time
}

// TokenEvent is delivered to OnTokenIssued, OnTokenRefresh, and
// OnTokenBlacklisted. Claims is best-effort: nil when the token could not be
// decoded.
type TokenEvent struct {
	Claims *Claims
	At     time.Time
}

// LogoutEvent is delivered to OnLogout. Claims is best-effort decoded from
// the surrendered access token.
type LogoutEvent struct {
	Claims *Claims
	At     time.Time
}

// TimeoutEvent is delivered to OnSessionTimeout exactly once per rejected
// Authenticate call, carrying the rejection reason and whatever identity
// could be decoded without trusting the token.
type TimeoutEvent struct {
	Reason Reason
	Claims *Claims
	At     time.Time
}

// Hooks is the set of optional lifecycle callbacks. Every field may be nil.
// Callbacks run on a dedicated dispatcher goroutine, never on the request
// path; a panicking hook is logged and isolated, and can never change an
// authentication outcome.
//
// Hooks instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hooks struct {
	OnLoginSuccess     func(ctx context.Context, ev LoginEvent)
	OnLoginError       func(ctx context.Context, ev LoginErrorEvent)
	OnOAuthSuccess     func(ctx context.Context, ev OAuthEvent)
	OnOAuthError       func(ctx context.Context, ev OAuthErrorEvent)
	OnTokenIssued      func(ctx context.Context, ev TokenEvent)
	OnTokenRefresh     func(ctx context.Context, ev TokenEvent)
	OnLogout           func(ctx context.Context, ev LogoutEvent)
	OnTokenBlacklisted func(ctx context.Context, ev TokenEvent)
	OnSessionTimeout   func(ctx context.Context, ev TimeoutEvent)
}

func (h Hooks) empty() bool {
	return h.OnLoginSuccess == nil &&
		h.OnLoginError == nil &&
		h.OnOAuthSuccess == nil &&
		h.OnOAuthError == nil &&
		h.OnTokenIssued == nil &&
		h.OnTokenRefresh == nil &&
		h.OnLogout == nil &&
		h.OnTokenBlacklisted == nil &&
		h.OnSessionTimeout == nil
}
