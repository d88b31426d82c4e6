package goauth

import (
	"net/http"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults with secrets", func(c *Config) {}, true},
		{"missing access secret", func(c *Config) { c.JWT.AccessSecret = nil }, false},
		{"missing refresh secret", func(c *Config) { c.JWT.RefreshSecret = nil }, false},
		{"shared secret", func(c *Config) { c.JWT.RefreshSecret = cloneBytes(c.JWT.AccessSecret) }, false},
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }, false},
		{"zero refresh ttl", func(c *Config) { c.JWT.RefreshTTL = 0 }, false},
		{"refresh shorter than access", func(c *Config) { c.JWT.RefreshTTL = time.Minute; c.JWT.AccessTTL = time.Hour }, false},
		{"negative leeway", func(c *Config) { c.JWT.Leeway = -time.Second }, false},
		{"excessive leeway", func(c *Config) { c.JWT.Leeway = 10 * time.Minute }, false},
		{"negative purge interval", func(c *Config) { c.Blacklist.PurgeInterval = -time.Second }, false},
		{"negative hook buffer", func(c *Config) { c.Hooks.BufferSize = -1 }, false},
		{"empty cookie name", func(c *Config) { c.Cookie.Name = "" }, false},
		{"samesite none insecure", func(c *Config) { c.Cookie.SameSite = http.SameSiteNoneMode; c.Cookie.Secure = false }, false},
		{"samesite none secure", func(c *Config) { c.Cookie.SameSite = http.SameSiteNoneMode; c.Cookie.Secure = true }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := engineTestConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCloneConfigCopiesSecrets(t *testing.T) {
	cfg := engineTestConfig()
	clone := cloneConfig(cfg)

	clone.JWT.AccessSecret[0] ^= 0xFF
	if cfg.JWT.AccessSecret[0] == clone.JWT.AccessSecret[0] {
		t.Fatal("clone shares the access secret backing array")
	}

	clone.JWT.RefreshSecret[0] ^= 0xFF
	if cfg.JWT.RefreshSecret[0] == clone.JWT.RefreshSecret[0] {
		t.Fatal("clone shares the refresh secret backing array")
	}
}

func TestDefaultConfigLifetimes(t *testing.T) {
	cfg := defaultConfig()

	if cfg.JWT.AccessTTL != 15*time.Minute {
		t.Fatalf("AccessTTL default = %v", cfg.JWT.AccessTTL)
	}
	if cfg.JWT.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("RefreshTTL default = %v", cfg.JWT.RefreshTTL)
	}
	if !cfg.Session.AutoRefresh {
		t.Fatal("AutoRefresh should default on")
	}
	if cfg.Cookie.Name != "refresh_token" {
		t.Fatalf("cookie name default = %q", cfg.Cookie.Name)
	}
}
