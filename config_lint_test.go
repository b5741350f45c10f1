package goDash

import (
	"testing"
)

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func TestLint_DefaultConfigNoWarnings(t *testing.T) {
	cfg := defaultConfig()
	if ws := cfg.Lint(); len(ws) != 0 {
		t.Fatalf("expected no warnings for default config, got %v", ws.Codes())
	}
}

func TestLint_Codes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"memory backend", func(c *Config) { c.Session.Backend = BackendMemory }, "session_not_durable"},
		{"plain http", func(c *Config) { c.Transport.BaseURL = "http://localhost:8080" }, "plaintext_transport"},
		{"unprefixed redis", func(c *Config) {
			c.Session.Backend = BackendRedis
			c.Session.RedisAddr = "localhost:6379"
		}, "redis_prefix_empty"},
		{"blocking audit", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.DropIfFull = false
		}, "audit_blocking"},
		{"latency without metrics", func(c *Config) { c.Metrics.Enabled = false }, "latency_without_metrics"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if !containsCode(cfg.Lint().Codes(), tc.code) {
				t.Errorf("expected %s warning", tc.code)
			}
		})
	}
}

func TestLint_RedisWithPrefixNoWarning(t *testing.T) {
	cfg := defaultConfig()
	cfg.Session.Backend = BackendRedis
	cfg.Session.RedisAddr = "localhost:6379"
	cfg.Session.RedisPrefix = "godash"
	if containsCode(cfg.Lint().Codes(), "redis_prefix_empty") {
		t.Error("prefixed redis should not warn")
	}
}
