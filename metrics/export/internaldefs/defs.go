package internaldefs

import (
	goauth "github.com/inertiapixel/goauth"
)

// CounterDef defines a public type used by goauth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goauth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goauth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication engine.
var CounterDefs = []CounterDef{
	{ID: goauth.MetricLoginSuccess, Name: "goauth_login_success_total", Help: "Successful login attempts."},
	{ID: goauth.MetricLoginFailure, Name: "goauth_login_failure_total", Help: "Failed login attempts."},
	{ID: goauth.MetricOAuthSuccess, Name: "goauth_oauth_success_total", Help: "Successful OAuth logins."},
	{ID: goauth.MetricOAuthFailure, Name: "goauth_oauth_failure_total", Help: "Rejected OAuth logins."},
	{ID: goauth.MetricTokenIssued, Name: "goauth_token_issued_total", Help: "Issued token pairs."},
	{ID: goauth.MetricRefreshSuccess, Name: "goauth_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: goauth.MetricRefreshFailure, Name: "goauth_refresh_failure_total", Help: "Failed refresh attempts."},
	{ID: goauth.MetricRefreshReuseDetected, Name: "goauth_refresh_reuse_detected_total", Help: "Detected refresh token reuses."},
	{ID: goauth.MetricTokenBlacklisted, Name: "goauth_token_blacklisted_total", Help: "Access tokens revoked onto the blacklist."},
	{ID: goauth.MetricLogout, Name: "goauth_logout_total", Help: "Logout operations."},
	{ID: goauth.MetricAuthAccepted, Name: "goauth_auth_accepted_total", Help: "Authenticate calls accepted on a valid access token."},
	{ID: goauth.MetricAuthRefreshed, Name: "goauth_auth_refreshed_total", Help: "Authenticate calls accepted via transparent refresh."},
	{ID: goauth.MetricAuthRejected, Name: "goauth_auth_rejected_total", Help: "Rejected Authenticate calls."},
	{ID: goauth.MetricTimeoutMissing, Name: "goauth_timeout_missing_total", Help: "Sessions ended for missing credentials."},
	{ID: goauth.MetricTimeoutExpired, Name: "goauth_timeout_expired_total", Help: "Sessions ended on token expiry."},
	{ID: goauth.MetricTimeoutInvalid, Name: "goauth_timeout_invalid_total", Help: "Sessions ended on invalid tokens."},
	{ID: goauth.MetricTimeoutBlacklisted, Name: "goauth_timeout_blacklisted_total", Help: "Sessions ended on blacklisted tokens."},
}

// HistogramDefs is an exported constant or variable used by the authentication engine.
var HistogramDefs = []HistogramDef{
	{ID: goauth.MetricAuthenticateLatency, Name: "goauth_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authentication engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
