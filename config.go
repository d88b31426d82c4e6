package goauth

import (
	"errors"
	"net/http"
	"time"
)

// Config defines a public type used by goauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT       JWTConfig
	Session   SessionConfig
	Blacklist BlacklistConfig
	Hooks     HookConfig
	Metrics   MetricsConfig
	Cookie    CookieConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by goauth APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goauth APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// AutoRefresh lets Authenticate rotate an expired session transparently
	// when a refresh token accompanies the request.
	AutoRefresh bool
	RedisPrefix string
}

/*
====================================
BLACKLIST CONFIG
====================================
*/

// BlacklistConfig defines a public type used by goauth APIs.
//
// BlacklistConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BlacklistConfig struct {
	RedisPrefix   string
	PurgeInterval time.Duration
}

/*
====================================
HOOK CONFIG
====================================
*/

// HookConfig defines a public type used by goauth APIs.
//
// HookConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HookConfig struct {
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig controls the refresh-token cookie written by the HTTP
// middleware.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig returns the baseline configuration used by New. Secrets are
// left empty and must be supplied by the caller before Build.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Leeway:     0,
		},
		Session: SessionConfig{
			AutoRefresh: true,
			RedisPrefix: "arl",
		},
		Blacklist: BlacklistConfig{
			RedisPrefix:   "abl",
			PurgeInterval: time.Minute,
		},
		Hooks: HookConfig{
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Cookie: CookieConfig{
			Name:     "refresh_token",
			Path:     "/",
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = cloneBytes(cfg.JWT.AccessSecret)
	out.JWT.RefreshSecret = cloneBytes(cfg.JWT.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// JWT
	if len(c.JWT.AccessSecret) == 0 {
		return ErrMissingSecret
	}
	if len(c.JWT.RefreshSecret) == 0 {
		return ErrMissingSecret
	}
	if string(c.JWT.AccessSecret) == string(c.JWT.RefreshSecret) {
		return errors.New("JWT access and refresh secrets must differ")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be >= AccessTTL")
	}
	if c.JWT.Leeway < 0 {
		return errors.New("JWT Leeway must be >= 0")
	}
	if c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be <= 2m")
	}

	// Blacklist
	if c.Blacklist.PurgeInterval < 0 {
		return errors.New("Blacklist PurgeInterval must be >= 0")
	}

	// Hooks
	if c.Hooks.BufferSize < 0 {
		return errors.New("Hooks BufferSize must be >= 0")
	}

	// Cookie
	if c.Cookie.Name == "" {
		return errors.New("Cookie Name must not be empty")
	}
	switch c.Cookie.SameSite {
	case http.SameSiteDefaultMode, http.SameSiteLaxMode, http.SameSiteStrictMode:
		// valid
	case http.SameSiteNoneMode:
		if !c.Cookie.Secure {
			return errors.New("Cookie SameSite=None requires Secure")
		}
	default:
		return errors.New("Cookie SameSite policy is invalid")
	}

	return nil
}
