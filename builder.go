package goauth

import (
	"errors"

	"github.com/inertiapixel/goauth/blacklist"
	"github.com/inertiapixel/goauth/jwt"
	"github.com/inertiapixel/goauth/refresh"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goauth APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	identity IdentityProvider
	hooks    Hooks

	ledger    refresh.Ledger
	blacklist blacklist.Blacklist

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis selects Redis-backed ledger and blacklist implementations so
// rotation state and revocations are shared across instances. Without it the
// engine falls back to process-local stores.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithIdentityProvider describes the withidentityprovider operation and its observable behavior.
//
// WithIdentityProvider may return an error when input validation, dependency calls, or security checks fail.
// WithIdentityProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithIdentityProvider(p IdentityProvider) *Builder {
	b.identity = p
	return b
}

// WithHooks describes the withhooks operation and its observable behavior.
//
// WithHooks may return an error when input validation, dependency calls, or security checks fail.
// WithHooks does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithHooks(h Hooks) *Builder {
	b.hooks = h
	return b
}

// WithLedger overrides the refresh ledger implementation. The caller retains
// ownership; [Engine.Close] will not close an injected ledger.
func (b *Builder) WithLedger(l refresh.Ledger) *Builder {
	b.ledger = l
	return b
}

// WithBlacklist overrides the blacklist implementation. The caller retains
// ownership; [Engine.Close] will not close an injected blacklist.
func (b *Builder) WithBlacklist(bl blacklist.Blacklist) *Builder {
	b.blacklist = bl
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.identity == nil {
		return nil, errors.New("identity provider required")
	}

	jm, err := jwt.NewManager(jwt.Config{
		AccessSecret:  cloneBytes(cfg.JWT.AccessSecret),
		RefreshSecret: cloneBytes(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:     cfg,
		jwtManager: jm,
		identity:   b.identity,
		hooks:      b.hooks,
	}

	// -------- REFRESH LEDGER --------
	switch {
	case b.ledger != nil:
		engine.ledger = b.ledger
	case b.redis != nil:
		engine.ledger = refresh.NewRedisLedger(b.redis, cfg.Session.RedisPrefix)
		engine.ownsLedger = true
	default:
		engine.ledger = refresh.NewMemoryLedger()
		engine.ownsLedger = true
	}

	// -------- BLACKLIST --------
	switch {
	case b.blacklist != nil:
		engine.blacklist = b.blacklist
	case b.redis != nil:
		engine.blacklist = blacklist.NewRedis(b.redis, cfg.Blacklist.RedisPrefix)
		engine.ownsBlacklist = true
	default:
		engine.blacklist = blacklist.NewMemoryWithInterval(cfg.Blacklist.PurgeInterval)
		engine.ownsBlacklist = true
	}

	engine.dispatcher = newHookDispatcher(cfg.Hooks, b.hooks)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
