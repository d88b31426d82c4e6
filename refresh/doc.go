// Package refresh tracks which refresh-token identities (jti) are currently
// active and performs atomic one-winner rotation. A refresh token is usable
// exactly as long as its jti is present in the ledger; rotation retires the
// old jti and installs its successor in a single step so a replayed token can
// never win twice.
//
// # Backends
//
// [MemoryLedger] is a process-local map suitable for single-instance
// deployments and tests. [RedisLedger] shares the active set across instances
// and performs rotation with a Lua compare-and-swap script.
//
// # Architecture boundaries
//
// This package owns jti lifecycle state only. It does NOT parse or verify
// tokens, mint jti values, or decide authentication outcomes — those
// responsibilities belong to the jwt package and the Engine.
//
// # What this package must NOT do
//
//   - Import goauth or jwt (no upward imports).
//   - Inspect token strings; callers hand it jti values already verified.
//   - Extend a record's expiry on read.
package refresh
