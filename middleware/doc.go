// Package middleware exposes the HTTP adapter for Engine authentication:
// bearer access tokens, a refresh-token cookie, and transparent session
// continuation.
//
// # Guards
//
//   - [Authenticate] — full state machine with optional auto-refresh; rotated
//     tokens are surfaced via the refresh cookie and the X-Access-Token
//     response header.
//   - [RequireAccess] — access-token-only verification, no refresh attempt.
//
// Each guard reads the Authorization header and refresh cookie, calls
// Engine.Authenticate, and injects verified claims into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.Authenticate.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Touch the ledger or blacklist (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from the Engine.
package middleware
