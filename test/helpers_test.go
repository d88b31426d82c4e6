//go:build integration
// +build integration

package test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goauth "github.com/inertiapixel/goauth"
	"github.com/inertiapixel/goauth/refresh"
)

func newIntegrationLedger(t *testing.T) (*refresh.RedisLedger, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ledger := refresh.NewRedisLedger(rdb, "arl")

	return ledger, rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func makeRecord(jti, subject string) refresh.Record {
	return refresh.Record{
		JTI:       jti,
		Subject:   subject,
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
		UserAgent: "integration-test",
		IP:        "127.0.0.1",
	}
}

// integrationProvider accepts a single fixed credential pair.
type integrationProvider struct{}

func (integrationProvider) VerifyCredentials(_ context.Context, identifier, password string) (goauth.Claims, error) {
	if identifier != "ann@x.com" || password != "correct-password-123" {
		return goauth.Claims{}, fmt.Errorf("unknown identity")
	}
	claims := goauth.Claims{Name: "Ann", Email: identifier}
	claims.Subject = "u1"
	return claims, nil
}

func newIntegrationEngine(t *testing.T, rdb *redis.Client) *goauth.Engine {
	t.Helper()

	cfg := goauth.DefaultConfig()
	cfg.JWT.AccessSecret = []byte("integration-access-secret-000001")
	cfg.JWT.RefreshSecret = []byte("integration-refresh-secret-00001")

	engine, err := goauth.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityProvider(integrationProvider{}).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}
