package config

import (
	"testing"
	"time"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()
	if !cfg.Enabled {
		t.Error("rate limiting should default to enabled")
	}
	if cfg.Capacity != 60 {
		t.Errorf("Capacity = %d, want 60", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 {
		t.Errorf("RefillTokens = %d, want 1", cfg.RefillTokens)
	}
	if cfg.RefillInterval != time.Second {
		t.Errorf("RefillInterval = %v, want 1s", cfg.RefillInterval)
	}
	if cfg.TTL < 5*cfg.RefillInterval {
		t.Errorf("TTL %v below the 5x refill interval floor", cfg.TTL)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Errorf("Capacity = %d, want clamped to 1", cfg.Capacity)
	}
	if cfg.TTL != 10*time.Second {
		t.Errorf("TTL = %v, want raised to 10s (5x interval)", cfg.TTL)
	}
}

func TestLoadRateLimitConfigBurstOverride(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "500ms")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 5 {
		t.Errorf("Capacity = %d, want 5 from burst override", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 || cfg.RefillInterval != 500*time.Millisecond {
		t.Errorf("refill = %d per %v, want 1 per 500ms", cfg.RefillTokens, cfg.RefillInterval)
	}
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	if !cfg.Enabled {
		t.Error("cache should default to enabled")
	}
	if !cfg.Methods["GET"] {
		t.Error("GET should be cached by default")
	}
	if cfg.Methods["POST"] {
		t.Error("POST must never be cached by default")
	}
	if cfg.TTL != 30*time.Second {
		t.Errorf("TTL = %v, want 30s", cfg.TTL)
	}
	if cfg.MaxBodyBytes != 1048576 {
		t.Errorf("MaxBodyBytes = %d, want 1048576", cfg.MaxBodyBytes)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("X_BOOL", "yes")
	if !envBool("X_BOOL", false) {
		t.Error("yes should parse as true")
	}
	t.Setenv("X_BOOL", "OFF")
	if envBool("X_BOOL", true) {
		t.Error("OFF should parse as false")
	}
	t.Setenv("X_BOOL", "maybe")
	if !envBool("X_BOOL", true) {
		t.Error("unparseable value should fall back to the default")
	}
}

func TestEnvIntDefault(t *testing.T) {
	if got := envIntDefault("UNSET_QUOTA_VAR", 10); got != 10 {
		t.Errorf("unset var = %d, want default 10", got)
	}
	t.Setenv("X_QUOTA", "25")
	if got := envIntDefault("X_QUOTA", 10); got != 25 {
		t.Errorf("set var = %d, want 25", got)
	}
	t.Setenv("X_QUOTA", "not-a-number")
	if got := envIntDefault("X_QUOTA", 10); got != 10 {
		t.Errorf("malformed var = %d, want default 10", got)
	}
}

func TestParseMethods(t *testing.T) {
	m := parseMethods("get, head ,POST")
	for _, want := range []string{"GET", "HEAD", "POST"} {
		if !m[want] {
			t.Errorf("parseMethods missing %s", want)
		}
	}
	if len(m) != 3 {
		t.Errorf("parseMethods returned %d entries, want 3", len(m))
	}
}
