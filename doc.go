// Package goauth provides a token lifecycle engine with short-lived JWT access
// tokens, rotating JWT refresh tokens with replay protection, an access-token
// blacklist for pre-expiry revocation, and lifecycle hooks for application
// integration.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goauth is the public surface. It exposes [Engine], [Builder], [Config],
// [Hooks], and value types (Decision, LoginResult, MetricsSnapshot). Token
// signing lives in jwt/, active-jti state in refresh/, revocation state in
// blacklist/, and HTTP transport glue in middleware/.
//
// # What this package must NOT do
//
//   - Perform credential verification; that belongs to the injected
//     [IdentityProvider].
//   - Speak any OAuth provider protocol; OAuthLogin accepts claims from an
//     exchange completed elsewhere.
//   - Let a hook callback change an authentication outcome.
//
// # Performance contract
//
// Authenticate is the hot path. With a valid access token it costs one
// blacklist membership check plus one signature verification and no ledger
// round-trips; only the refresh paths touch the ledger.
package goauth
