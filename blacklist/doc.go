// Package blacklist holds access tokens that were revoked before their
// natural expiry, typically by logout. Entries live exactly as long as the
// token they shadow: once the token's own expiry passes, the entry is
// useless and is dropped.
//
// # Architecture boundaries
//
// This package stores and answers membership for raw token strings only. It
// does NOT parse tokens or decide what revocation means — the Engine consults
// it before trusting any verified access token.
//
// # What this package must NOT do
//
//   - Import goauth or jwt (no upward imports).
//   - Keep entries past the shadowed token's expiry.
package blacklist
