package goDash

import (
	"errors"
	"net/url"
	"strings"
)

// Config holds every tunable of the dashboard client core.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Session   SessionConfig
	Transport TransportConfig
	Guard     GuardConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// BackendKind selects the persistent session store implementation.
type BackendKind string

const (
	// BackendMemory keeps the session in process memory only.
	BackendMemory BackendKind = "memory"
	// BackendSQLite persists the session in a local SQLite file.
	BackendSQLite BackendKind = "sqlite"
	// BackendRedis persists the session in Redis.
	BackendRedis BackendKind = "redis"
)

// SessionConfig describes where and under which keys the session persists.
type SessionConfig struct {
	Backend     BackendKind
	TokenKey    string
	UserKey     string
	SQLitePath  string
	RedisAddr   string
	RedisPrefix string
}

/*
====================================
TRANSPORT CONFIG
====================================
*/

// TransportConfig describes the remote Task API.
type TransportConfig struct {
	BaseURL       string
	LoginPath     string
	DashboardPath string
	UserAgent     string
}

/*
====================================
GUARD CONFIG
====================================
*/

// GuardConfig describes view gating. EntryView is where anonymous users are
// redirected; PublicViews render without a session.
type GuardConfig struct {
	EntryView   string
	PublicViews []string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			Backend:    BackendSQLite,
			TokenKey:   "task_token",
			UserKey:    "task_user",
			SQLitePath: "godash-session.db",
		},
		Transport: TransportConfig{
			BaseURL:       "https://task-api-eight-flax.vercel.app",
			LoginPath:     "/api/login",
			DashboardPath: "/api/dashboard",
			UserAgent:     "goDash/1",
		},
		Guard: GuardConfig{
			EntryView:   "/",
			PublicViews: []string{"/"},
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Guard.PublicViews != nil {
		out.Guard.PublicViews = append([]string(nil), cfg.Guard.PublicViews...)
	}
	return out
}

// Validate reports the first configuration error, if any.
func (c *Config) Validate() error {
	// Session
	switch c.Session.Backend {
	case BackendMemory:
	case BackendSQLite:
		if strings.TrimSpace(c.Session.SQLitePath) == "" {
			return errors.New("Session SQLitePath is required for the sqlite backend")
		}
	case BackendRedis:
		if strings.TrimSpace(c.Session.RedisAddr) == "" {
			return errors.New("Session RedisAddr is required for the redis backend")
		}
	default:
		return errors.New("unsupported session backend")
	}
	if strings.TrimSpace(c.Session.TokenKey) == "" || strings.TrimSpace(c.Session.UserKey) == "" {
		return errors.New("Session TokenKey and UserKey must be set")
	}
	if c.Session.TokenKey == c.Session.UserKey {
		return errors.New("Session TokenKey and UserKey must differ")
	}

	// Transport
	u, err := url.Parse(c.Transport.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("Transport BaseURL must be an absolute http(s) URL")
	}
	if !strings.HasPrefix(c.Transport.LoginPath, "/") || !strings.HasPrefix(c.Transport.DashboardPath, "/") {
		return errors.New("Transport paths must start with /")
	}

	// Guard
	if !strings.HasPrefix(c.Guard.EntryView, "/") {
		return errors.New("Guard EntryView must start with /")
	}
	entryPublic := false
	for _, v := range c.Guard.PublicViews {
		if !strings.HasPrefix(v, "/") {
			return errors.New("Guard PublicViews entries must start with /")
		}
		if v == c.Guard.EntryView {
			entryPublic = true
		}
	}
	if !entryPublic {
		return errors.New("Guard EntryView must be listed in PublicViews")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}

// LintWarning is a non-fatal configuration finding.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports configurations that are valid but probably unintended.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings
	if c.Session.Backend == BackendMemory {
		ws = append(ws, LintWarning{"session_not_durable", "memory backend loses the session on restart"})
	}
	if strings.HasPrefix(c.Transport.BaseURL, "http://") {
		ws = append(ws, LintWarning{"plaintext_transport", "bearer token is sent over plain http"})
	}
	if c.Session.Backend == BackendRedis && c.Session.RedisPrefix == "" {
		ws = append(ws, LintWarning{"redis_prefix_empty", "session keys are unprefixed in a shared redis"})
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		ws = append(ws, LintWarning{"audit_blocking", "a full audit buffer blocks session transitions"})
	}
	if !c.Metrics.Enabled && c.Metrics.EnableLatencyHistograms {
		ws = append(ws, LintWarning{"latency_without_metrics", "latency histograms need metrics enabled"})
	}
	return ws
}
