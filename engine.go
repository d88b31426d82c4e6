package goauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inertiapixel/goauth/blacklist"
	"github.com/inertiapixel/goauth/jwt"
	"github.com/inertiapixel/goauth/refresh"
)

// Engine defines a public type used by goauth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config     Config
	jwtManager *jwt.Manager
	ledger     refresh.Ledger
	blacklist  blacklist.Blacklist
	identity   IdentityProvider
	hooks      Hooks
	dispatcher *hookDispatcher
	metrics    *Metrics

	ownsLedger    bool
	ownsBlacklist bool
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.dispatcher != nil {
		e.dispatcher.Close()
	}
	if e.ownsLedger && e.ledger != nil {
		_ = e.ledger.Close()
	}
	if e.ownsBlacklist && e.blacklist != nil {
		_ = e.blacklist.Close()
	}
}

// HooksDropped describes the hooksdropped operation and its observable behavior.
//
// HooksDropped may return an error when input validation, dependency calls, or security checks fail.
// HooksDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) HooksDropped() uint64 {
	if e == nil || e.dispatcher == nil {
		return 0
	}
	return e.dispatcher.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

/*
====================================
AUTHENTICATE
====================================
*/

// Authenticate evaluates the presented token pair and returns the terminal
// [Decision]. Accepting outcomes (ValidAccess, RefreshedOk) return a nil
// error; every rejecting outcome returns the Decision alongside
// [ErrUnauthorized] and emits exactly one session-timeout hook. Backend
// failures (ledger or blacklist unreachable) return a nil Decision and a
// wrapped availability error instead, so callers can distinguish "rejected"
// from "cannot decide".
func (e *Engine) Authenticate(ctx context.Context, creds Credentials) (*Decision, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	decision, err := e.authenticate(ctx, creds)
	e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))
	return decision, err
}

func (e *Engine) authenticate(ctx context.Context, creds Credentials) (*Decision, error) {
	// A refresh credential never stands in for a missing bearer token;
	// transparent refresh only heals an expired one.
	if creds.AccessToken == "" {
		return e.reject(ctx, StateNoCredential, ReasonMissing, nil)
	}

	// Blacklist wins over a valid signature.
	revoked, err := e.blacklist.Contains(ctx, creds.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlacklistUnavailable, err)
	}
	if revoked {
		decoded, _ := e.jwtManager.DecodeUnverified(creds.AccessToken)
		return e.reject(ctx, StateBlacklisted, ReasonBlacklisted, decoded)
	}

	claims, err := e.jwtManager.ParseAccess(creds.AccessToken)
	if err == nil {
		e.metricInc(MetricAuthAccepted)
		return &Decision{State: StateValidAccess, Claims: claims}, nil
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		if creds.RefreshToken != "" && e.config.Session.AutoRefresh {
			return e.autoRefresh(ctx, creds.RefreshToken)
		}
		decoded, _ := e.jwtManager.DecodeUnverified(creds.AccessToken)
		return e.reject(ctx, StateExpiredAccess, ReasonExpired, decoded)
	}

	return e.reject(ctx, StateInvalidAccess, ReasonInvalid, nil)
}

func (e *Engine) autoRefresh(ctx context.Context, refreshToken string) (*Decision, error) {
	result, err := e.rotate(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrLedgerUnavailable) {
			return nil, err
		}

		// Whatever broke the refresh credential (bad signature, expiry,
		// consumed jti), the caller learns only that it is invalid.
		decoded, _ := e.jwtManager.DecodeUnverified(refreshToken)
		return e.reject(ctx, StateRefreshRejected, ReasonInvalid, decoded)
	}

	e.metricInc(MetricAuthRefreshed)
	claims := result.Claims
	return &Decision{
		State:        StateRefreshedOk,
		Claims:       &claims,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, nil
}

func (e *Engine) reject(ctx context.Context, state State, reason Reason, decoded *Claims) (*Decision, error) {
	e.metricInc(MetricAuthRejected)
	switch reason {
	case ReasonMissing:
		e.metricInc(MetricTimeoutMissing)
	case ReasonBlacklisted:
		e.metricInc(MetricTimeoutBlacklisted)
	case ReasonExpired:
		e.metricInc(MetricTimeoutExpired)
	case ReasonInvalid:
		e.metricInc(MetricTimeoutInvalid)
	}

	e.emitSessionTimeout(ctx, reason, decoded)

	return &Decision{State: state, Reason: reason}, ErrUnauthorized
}

/*
====================================
LOGIN / OAUTH
====================================
*/

// Login verifies identifier/password through the injected [IdentityProvider]
// and issues a fresh token pair. Provider failures surface as
// [ErrInvalidCredentials] with the underlying error delivered only to the
// login-error hook.
func (e *Engine) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.identity.VerifyCredentials(ctx, identifier, password)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitLoginError(ctx, identifier, err)
		return nil, ErrInvalidCredentials
	}

	result, err := e.establish(ctx, claims)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitLoginSuccess(ctx, result.Claims)

	return result, nil
}

// OAuthLogin converts an externally completed OAuth exchange into a token
// pair. provider is a label for hooks ("google", "facebook", ...); the
// protocol exchange itself happens outside this package. Claims must carry a
// subject and email or the login is rejected.
func (e *Engine) OAuthLogin(ctx context.Context, provider string, claims Claims) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	if claims.Subject == "" || claims.Email == "" {
		e.metricInc(MetricOAuthFailure)
		e.emitOAuthError(ctx, provider, jwt.ErrIncompleteClaims)
		return nil, ErrInvalidCredentials
	}

	result, err := e.establish(ctx, claims)
	if err != nil {
		e.metricInc(MetricOAuthFailure)
		e.emitOAuthError(ctx, provider, err)
		return nil, err
	}

	e.metricInc(MetricOAuthSuccess)
	e.emitOAuthSuccess(ctx, provider, result.Claims)

	return result, nil
}

// establish is the shared issuing path: mint a pair, record the refresh jti
// as active, announce the issuance.
func (e *Engine) establish(ctx context.Context, claims Claims) (*LoginResult, error) {
	identity := identityClaims(&claims)

	access, refreshToken, jti, err := e.issuePair(identity)
	if err != nil {
		return nil, err
	}

	rec := refresh.Record{
		JTI:       jti,
		Subject:   identity.Subject,
		ExpiresAt: time.Now().Add(e.config.JWT.RefreshTTL).Unix(),
		UserAgent: userAgentFromContext(ctx),
		IP:        clientIPFromContext(ctx),
	}
	if err := e.ledger.Add(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	e.metricInc(MetricTokenIssued)
	e.emitTokenIssued(ctx, identity)

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refreshToken,
		Claims:       identity,
	}, nil
}

func (e *Engine) issuePair(claims Claims) (access, refreshToken, jti string, err error) {
	access, err = e.jwtManager.IssueAccess(claims)
	if err != nil {
		return "", "", "", err
	}

	jti = jwt.NewTokenID()
	refreshToken, err = e.jwtManager.IssueRefresh(claims, jti)
	if err != nil {
		return "", "", "", err
	}

	return access, refreshToken, jti, nil
}

// identityClaims strips registered bookkeeping (exp, iat, jti, issuer) so a
// pair minted from old claims gets fresh lifetimes.
func identityClaims(c *Claims) Claims {
	out := Claims{
		Name:   c.Name,
		Email:  c.Email,
		Avatar: c.Avatar,
	}
	out.Subject = c.Subject
	return out
}

/*
====================================
REFRESH
====================================
*/

// Refresh is the explicit client-initiated rotation: verify the refresh
// token, atomically retire its jti in favor of a successor, and return the
// new pair. A jti that is no longer active means the token was already
// rotated or revoked; that surfaces as [ErrRefreshReuse].
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if refreshToken == "" {
		return nil, ErrNoToken
	}

	return e.rotate(ctx, refreshToken)
}

func (e *Engine) rotate(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := e.jwtManager.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, errors.Join(ErrRefreshInvalid, err)
	}

	identity := identityClaims(claims)

	access, nextToken, jti, err := e.issuePair(identity)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	next := refresh.Record{
		JTI:       jti,
		Subject:   identity.Subject,
		ExpiresAt: time.Now().Add(e.config.JWT.RefreshTTL).Unix(),
		UserAgent: userAgentFromContext(ctx),
		IP:        clientIPFromContext(ctx),
	}
	if err := e.ledger.Rotate(ctx, claims.ID, next); err != nil {
		if errors.Is(err, refresh.ErrNotActive) {
			e.metricInc(MetricRefreshReuseDetected)
			e.metricInc(MetricRefreshFailure)
			return nil, ErrRefreshReuse
		}
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitTokenRefresh(ctx, identity)

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: nextToken,
		Claims:       identity,
	}, nil
}

/*
====================================
LOGOUT
====================================
*/

// Logout revokes the surrendered pair: the access token goes on the blacklist
// until its own expiry, and the refresh jti leaves the active ledger. A
// missing access token is the caller's error ([ErrNoToken]); everything else
// is idempotent, so replaying a logout or handing in garbled tokens succeeds
// quietly.
func (e *Engine) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if accessToken == "" {
		return ErrNoToken
	}

	expiresAt := time.Now().Add(e.config.JWT.AccessTTL)
	decoded, ok := e.jwtManager.DecodeUnverified(accessToken)
	if ok && decoded.ExpiresAt != nil {
		expiresAt = decoded.ExpiresAt.Time
	}

	if err := e.blacklist.Add(ctx, accessToken, expiresAt); err != nil {
		return fmt.Errorf("%w: %v", ErrBlacklistUnavailable, err)
	}
	e.metricInc(MetricTokenBlacklisted)
	e.emitTokenBlacklisted(ctx, decoded)

	if refreshToken != "" {
		if rc, rok := e.jwtManager.DecodeUnverified(refreshToken); rok && rc.ID != "" {
			if err := e.ledger.Revoke(ctx, rc.ID); err != nil {
				return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
			}
		}
	}

	e.metricInc(MetricLogout)
	e.emitLogout(ctx, decoded)

	return nil
}

/*
====================================
HOOK EMISSION
====================================
*/

func (e *Engine) hookContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	// Hooks run after the request may have completed; keep its values,
	// shed its cancellation.
	return context.WithoutCancel(ctx)
}

func (e *Engine) emitLoginSuccess(ctx context.Context, claims Claims) {
	h := e.hooks.OnLoginSuccess
	if h == nil {
		return
	}
	ev := LoginEvent{
		Claims:    claims,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		At:        time.Now(),
	}
	hctx := e.hookContext(ctx)
	e.dispatcher.Emit(ctx, func() { h(hctx, ev) })
}

func (e *Engine) emitLoginError(ctx context.Context, identifier string, cause error) {
	h := e.hooks.OnLoginError
	if h == nil {
		return
	}
	ev := LoginErrorEvent{
		Identifier: identifier,
		Err:        cause,
		IP:         clientIPFromContext(ctx),
		UserAgent:  userAgentFromContext(ctx),
		At:         time.Now(),
	}
	hctx := e.hookContext(ctx)
	e.dispatcher.Emit(ctx, func() { h(hctx, ev) })
}

func (e *Engine) emitOAuthSuccess(ctx context.Context, provider string, claims Claims) {
	h := e.hooks.OnOAuthSuccess
	if h == nil {
		return
	}
	ev := OAuthEvent{
		Provider:  provider,
		Claims:    claims,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		At:        time.Now(),
	}
	hctx := e.hookContext(ctx)
	e.dispatcher.Emit(ctx, func() { h(hctx, ev) })
}

func (e *Engine) emitOAuthError(ctx context.Context, provider string, cause error) {
	h := e.hooks.OnOAuthError
	if h == nil {
		return
	}
	ev := OAuthErrorEvent{Provider: provider, Err: cause, At: time.Now()}
	hctx := e.hookContext(ctx)
	e.dispatcher.Emit(ctx, func() { h(hctx, ev) })
}

func (e *Engine) emitTokenIssued(ctx context.Context, claims Claims) {
	h := e.hooks.OnTokenIssued
	if h == nil {
		return
	}
	c := claims
	ev := TokenEvent{Claims: &c, At: time.Now()}
	hctx := e.hookContext(ctx)
	e.dispatcher.Emit(ctx, func() { h(hctx, ev) })
}

func (e *Engine) emitTokenRefresh(ctx context.Context, claims Claims) {
	h := e.hooks.OnTokenRefresh
	if h == nil {
		return
	}
	c := claims
	ev := TokenEvent{Claims: &c, At: time.Now()}
	hctx := e.hookContext(ctx)
	e.dispatcher.Emit(ctx, func() { h(hctx, ev) })
}

func (e *Engine) emitTokenBlacklisted(ctx context.Context, claims *Claims) {
	h := e.hooks.OnTokenBlacklisted
	if h == nil {
		return
	}
	ev := TokenEvent{Claims: claims, At: time.Now()}
	hctx := e.hookContext(ctx)
	e.dispatcher.Emit(ctx, func() { h(hctx, ev) })
}

func (e *Engine) emitLogout(ctx context.Context, claims *Claims) {
	h := e.hooks.OnLogout
	if h == nil {
		return
	}
	ev := LogoutEvent{Claims: claims, At: time.Now()}
	hctx := e.hookContext(ctx)
	e.dispatcher.Emit(ctx, func() { h(hctx, ev) })
}

func (e *Engine) emitSessionTimeout(ctx context.Context, reason Reason, claims *Claims) {
	h := e.hooks.OnSessionTimeout
	if h == nil {
		return
	}
	ev := TimeoutEvent{Reason: reason, Claims: claims, At: time.Now()}
	hctx := e.hookContext(ctx)
	e.dispatcher.Emit(ctx, func() { h(hctx, ev) })
}
