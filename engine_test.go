package goauth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/inertiapixel/goauth/jwt"
)

type stubProvider struct {
	password string
	claims   Claims
}

func (p stubProvider) VerifyCredentials(_ context.Context, identifier, password string) (Claims, error) {
	if identifier == p.claims.Email && password == p.password {
		return p.claims, nil
	}
	return Claims{}, errors.New("unknown identifier or bad password")
}

func testProvider() stubProvider {
	c := Claims{Name: "Ann", Email: "ann@x.com"}
	c.Subject = "u1"
	return stubProvider{password: "correct-password-123", claims: c}
}

func engineTestConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.AccessSecret = []byte("engine-test-access-secret-0123456789")
	cfg.JWT.RefreshSecret = []byte("engine-test-refresh-secret-987654321")
	return cfg
}

func newTestEngine(t *testing.T, mutate func(*Config), hooks Hooks) *Engine {
	t.Helper()

	cfg := engineTestConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := New().
		WithConfig(cfg).
		WithIdentityProvider(testProvider()).
		WithHooks(hooks).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

// expiredAccessToken mints a token signed with the engine's access secret
// whose expiry has already passed.
func expiredAccessToken(t *testing.T, cfg Config, claims Claims) string {
	t.Helper()

	mgr, err := jwt.NewManager(jwt.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     time.Nanosecond,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
	if err != nil {
		t.Fatal(err)
	}
	token, err := mgr.IssueAccess(claims)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	return token
}

func expiredRefreshToken(t *testing.T, cfg Config, claims Claims) string {
	t.Helper()

	mgr, err := jwt.NewManager(jwt.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    time.Nanosecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	token, err := mgr.IssueRefresh(claims, jwt.NewTokenID())
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	return token
}

func TestLoginLogoutLifecycle(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})
	ctx := context.Background()

	result, err := engine.Login(ctx, "ann@x.com", "correct-password-123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("login returned empty tokens")
	}
	if result.Claims.Subject != "u1" || result.Claims.Name != "Ann" {
		t.Fatalf("claims mismatch: %+v", result.Claims)
	}

	decision, err := engine.Authenticate(ctx, Credentials{AccessToken: result.AccessToken})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if decision.State != StateValidAccess || !decision.Accepted() {
		t.Fatalf("want ValidAccess, got state %d", decision.State)
	}
	if decision.Claims.Subject != "u1" {
		t.Fatalf("decision claims mismatch: %+v", decision.Claims)
	}

	if err := engine.Logout(ctx, result.AccessToken, result.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	decision, err = engine.Authenticate(ctx, Credentials{AccessToken: result.AccessToken})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized after logout, got %v", err)
	}
	if decision.State != StateBlacklisted || decision.Reason != ReasonBlacklisted {
		t.Fatalf("want Blacklisted/blacklisted, got %d/%s", decision.State, decision.Reason)
	}

	// The surrendered refresh token is dead too.
	if _, err := engine.Refresh(ctx, result.RefreshToken); !errors.Is(err, ErrRefreshReuse) {
		t.Fatalf("want ErrRefreshReuse after logout, got %v", err)
	}
}

func TestLoginBadPassword(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})

	if _, err := engine.Login(context.Background(), "ann@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateNoCredential(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})

	decision, err := engine.Authenticate(context.Background(), Credentials{})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if decision.State != StateNoCredential || decision.Reason != ReasonMissing {
		t.Fatalf("want NoCredential/missing, got %d/%s", decision.State, decision.Reason)
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})

	decision, err := engine.Authenticate(context.Background(), Credentials{AccessToken: "not.a.jwt"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if decision.State != StateInvalidAccess || decision.Reason != ReasonInvalid {
		t.Fatalf("want InvalidAccess/invalid, got %d/%s", decision.State, decision.Reason)
	}
}

func TestAuthenticateExpiredWithAutoRefresh(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})
	ctx := context.Background()

	result, err := engine.Login(ctx, "ann@x.com", "correct-password-123")
	if err != nil {
		t.Fatal(err)
	}

	expired := expiredAccessToken(t, engine.config, result.Claims)

	decision, err := engine.Authenticate(ctx, Credentials{
		AccessToken:  expired,
		RefreshToken: result.RefreshToken,
	})
	if err != nil {
		t.Fatalf("authenticate with refresh: %v", err)
	}
	if decision.State != StateRefreshedOk {
		t.Fatalf("want RefreshedOk, got %d", decision.State)
	}
	if decision.AccessToken == "" || decision.RefreshToken == "" {
		t.Fatal("RefreshedOk decision missing rotated tokens")
	}
	if decision.RefreshToken == result.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}
	if decision.Claims.Subject != "u1" {
		t.Fatalf("rotated claims mismatch: %+v", decision.Claims)
	}

	// The pre-rotation refresh token lost its jti; replaying it is rejected.
	replay, err := engine.Authenticate(ctx, Credentials{
		AccessToken:  expired,
		RefreshToken: result.RefreshToken,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized on replay, got %v", err)
	}
	if replay.State != StateRefreshRejected || replay.Reason != ReasonInvalid {
		t.Fatalf("want RefreshRejected/invalid, got %d/%s", replay.State, replay.Reason)
	}

	// The rotated-in pair works.
	next, err := engine.Authenticate(ctx, Credentials{AccessToken: decision.AccessToken})
	if err != nil {
		t.Fatalf("rotated access token rejected: %v", err)
	}
	if next.State != StateValidAccess {
		t.Fatalf("want ValidAccess, got %d", next.State)
	}
}

func TestAuthenticateExpiredWithoutAutoRefresh(t *testing.T) {
	engine := newTestEngine(t, func(c *Config) { c.Session.AutoRefresh = false }, Hooks{})
	ctx := context.Background()

	result, err := engine.Login(ctx, "ann@x.com", "correct-password-123")
	if err != nil {
		t.Fatal(err)
	}
	expired := expiredAccessToken(t, engine.config, result.Claims)

	decision, err := engine.Authenticate(ctx, Credentials{
		AccessToken:  expired,
		RefreshToken: result.RefreshToken,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if decision.State != StateExpiredAccess || decision.Reason != ReasonExpired {
		t.Fatalf("want ExpiredAccess/expired, got %d/%s", decision.State, decision.Reason)
	}
}

func TestAuthenticateRefreshOnlyCredential(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})
	ctx := context.Background()

	result, err := engine.Login(ctx, "ann@x.com", "correct-password-123")
	if err != nil {
		t.Fatal(err)
	}

	// A live refresh token alone is not a bearer credential; transparent
	// refresh only heals an expired one.
	decision, err := engine.Authenticate(ctx, Credentials{RefreshToken: result.RefreshToken})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized for refresh-only request, got %v", err)
	}
	if decision.State != StateNoCredential || decision.Reason != ReasonMissing {
		t.Fatalf("want NoCredential/missing, got %d/%s", decision.State, decision.Reason)
	}

	// The rejection must not consume the refresh token's jti.
	if _, err := engine.Refresh(ctx, result.RefreshToken); err != nil {
		t.Fatalf("explicit refresh after refresh-only rejection: %v", err)
	}
}

func TestAuthenticateExpiredRefreshRejectedAsInvalid(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})
	ctx := context.Background()

	result, err := engine.Login(ctx, "ann@x.com", "correct-password-123")
	if err != nil {
		t.Fatal(err)
	}

	expiredAccess := expiredAccessToken(t, engine.config, result.Claims)
	expiredRefresh := expiredRefreshToken(t, engine.config, result.Claims)

	// The refresh credential's failure cause (here: its own expiry) is not
	// leaked; every refresh-path failure reads as invalid.
	decision, err := engine.Authenticate(ctx, Credentials{
		AccessToken:  expiredAccess,
		RefreshToken: expiredRefresh,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if decision.State != StateRefreshRejected || decision.Reason != ReasonInvalid {
		t.Fatalf("want RefreshRejected/invalid, got %d/%s", decision.State, decision.Reason)
	}
}

func TestExplicitRefreshRotation(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})
	ctx := context.Background()

	result, err := engine.Login(ctx, "ann@x.com", "correct-password-123")
	if err != nil {
		t.Fatal(err)
	}

	rotated, err := engine.Refresh(ctx, result.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == result.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	if _, err := engine.Refresh(ctx, result.RefreshToken); !errors.Is(err, ErrRefreshReuse) {
		t.Fatalf("want ErrRefreshReuse on replay, got %v", err)
	}
	if _, err := engine.Refresh(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("rotated token must refresh: %v", err)
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})

	if _, err := engine.Refresh(context.Background(), ""); !errors.Is(err, ErrNoToken) {
		t.Fatalf("want ErrNoToken, got %v", err)
	}
	if _, err := engine.Refresh(context.Background(), "not.a.jwt"); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("want ErrRefreshInvalid, got %v", err)
	}
}

func TestRefreshFailuresAreUnauthorized(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})
	ctx := context.Background()

	if _, err := engine.Refresh(ctx, "not.a.jwt"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want invalid refresh to satisfy errors.Is(err, ErrUnauthorized), got %v", err)
	}

	result, err := engine.Login(ctx, "ann@x.com", "correct-password-123")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Refresh(ctx, result.RefreshToken); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Refresh(ctx, result.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want reuse to satisfy errors.Is(err, ErrUnauthorized), got %v", err)
	}
}

func TestRefreshConcurrencySingleWinner(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})
	ctx := context.Background()

	result, err := engine.Login(ctx, "ann@x.com", "correct-password-123")
	if err != nil {
		t.Fatal(err)
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := engine.Refresh(ctx, result.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	fail := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		if errors.Is(err, ErrRefreshReuse) {
			fail++
			continue
		}
		t.Fatalf("unexpected refresh error: %v", err)
	}

	if success != 1 {
		t.Fatalf("expected exactly one refresh success, got %d", success)
	}
	if fail != n-1 {
		t.Fatalf("expected %d refresh failures, got %d", n-1, fail)
	}
}

func TestLogoutRequiresAccessToken(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})

	if err := engine.Logout(context.Background(), "", ""); !errors.Is(err, ErrNoToken) {
		t.Fatalf("want ErrNoToken, got %v", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})
	ctx := context.Background()

	result, err := engine.Login(ctx, "ann@x.com", "correct-password-123")
	if err != nil {
		t.Fatal(err)
	}

	if err := engine.Logout(ctx, result.AccessToken, result.RefreshToken); err != nil {
		t.Fatal(err)
	}
	if err := engine.Logout(ctx, result.AccessToken, result.RefreshToken); err != nil {
		t.Fatalf("second logout must succeed, got %v", err)
	}

	// Garbled tokens are revoked quietly.
	if err := engine.Logout(ctx, "garbage-access", "garbage-refresh"); err != nil {
		t.Fatalf("logout with garbled tokens: %v", err)
	}
}

func TestOAuthLogin(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})
	ctx := context.Background()

	claims := Claims{Name: "Bob", Email: "bob@x.com"}
	claims.Subject = "u2"

	result, err := engine.OAuthLogin(ctx, "google", claims)
	if err != nil {
		t.Fatalf("oauth login: %v", err)
	}

	decision, err := engine.Authenticate(ctx, Credentials{AccessToken: result.AccessToken})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if decision.Claims.Email != "bob@x.com" {
		t.Fatalf("claims mismatch: %+v", decision.Claims)
	}
}

func TestOAuthLoginIncompleteClaims(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})

	if _, err := engine.OAuthLogin(context.Background(), "google", Claims{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestBuilderOneShot(t *testing.T) {
	b := New().
		WithConfig(engineTestConfig()).
		WithIdentityProvider(testProvider())

	engine, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("second Build must fail")
	}
}

func TestBuilderRequiresProvider(t *testing.T) {
	if _, err := New().WithConfig(engineTestConfig()).Build(); err == nil {
		t.Fatal("Build without identity provider must fail")
	}
}

func TestMetricsAccounting(t *testing.T) {
	engine := newTestEngine(t, nil, Hooks{})
	ctx := context.Background()

	result, err := engine.Login(ctx, "ann@x.com", "correct-password-123")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Login(ctx, "ann@x.com", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}
	if _, err := engine.Authenticate(ctx, Credentials{AccessToken: result.AccessToken}); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Authenticate(ctx, Credentials{}); err == nil {
		t.Fatal("expected rejection")
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("login success counter = %d", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLoginFailure] != 1 {
		t.Fatalf("login failure counter = %d", snap.Counters[MetricLoginFailure])
	}
	if snap.Counters[MetricAuthAccepted] != 1 {
		t.Fatalf("auth accepted counter = %d", snap.Counters[MetricAuthAccepted])
	}
	if snap.Counters[MetricAuthRejected] != 1 {
		t.Fatalf("auth rejected counter = %d", snap.Counters[MetricAuthRejected])
	}
	if snap.Counters[MetricTimeoutMissing] != 1 {
		t.Fatalf("timeout missing counter = %d", snap.Counters[MetricTimeoutMissing])
	}
	if snap.Counters[MetricTokenIssued] != 1 {
		t.Fatalf("token issued counter = %d", snap.Counters[MetricTokenIssued])
	}
}
