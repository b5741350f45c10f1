package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	goDash "github.com/MrEthical07/goDash"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const defaultConfigPath = "godash.toml"

type fileConfig struct {
	BaseURL     string   `toml:"base_url"`
	UserAgent   string   `toml:"user_agent"`
	Backend     string   `toml:"backend"`
	SQLitePath  string   `toml:"sqlite_path"`
	RedisAddr   string   `toml:"redis_addr"`
	RedisPrefix string   `toml:"redis_prefix"`
	TokenKey    string   `toml:"token_key"`
	UserKey     string   `toml:"user_key"`
	EntryView   string   `toml:"entry_view"`
	PublicViews []string `toml:"public_views"`
	Audit       bool     `toml:"audit"`
	LogLevel    string   `toml:"log_level"`
}

type appConfig struct {
	Core     goDash.Config
	LogLevel zerolog.Level
}

// loadAppConfig layers defaults, the TOML file at path and GODASH_*
// variables read through getenv. An empty path tries godash.toml and
// tolerates its absence.
func loadAppConfig(path string, getenv func(string) string) (appConfig, error) {
	cfg := appConfig{
		Core:     goDash.DefaultConfig(),
		LogLevel: zerolog.InfoLevel,
	}

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	switch {
	case err == nil:
		if err := cfg.apply(raw, meta.IsDefined); err != nil {
			return appConfig{}, err
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		return appConfig{}, fmt.Errorf("load godash config: %w", err)
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return appConfig{}, err
	}
	if err := cfg.Core.Validate(); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}

func (c *appConfig) apply(raw fileConfig, defined func(...string) bool) error {
	if defined("base_url") {
		c.Core.Transport.BaseURL = strings.TrimSpace(raw.BaseURL)
	}
	if defined("user_agent") {
		c.Core.Transport.UserAgent = strings.TrimSpace(raw.UserAgent)
	}
	if defined("backend") {
		c.Core.Session.Backend = goDash.BackendKind(strings.TrimSpace(raw.Backend))
	}
	if defined("sqlite_path") {
		c.Core.Session.SQLitePath = strings.TrimSpace(raw.SQLitePath)
	}
	if defined("redis_addr") {
		c.Core.Session.RedisAddr = strings.TrimSpace(raw.RedisAddr)
	}
	if defined("redis_prefix") {
		c.Core.Session.RedisPrefix = strings.TrimSpace(raw.RedisPrefix)
	}
	if defined("token_key") {
		c.Core.Session.TokenKey = strings.TrimSpace(raw.TokenKey)
	}
	if defined("user_key") {
		c.Core.Session.UserKey = strings.TrimSpace(raw.UserKey)
	}
	if defined("entry_view") {
		c.Core.Guard.EntryView = strings.TrimSpace(raw.EntryView)
	}
	if defined("public_views") {
		c.Core.Guard.PublicViews = normalizeViews(raw.PublicViews)
	}
	if defined("audit") {
		c.Core.Audit.Enabled = raw.Audit
	}
	if defined("log_level") {
		level, err := zerolog.ParseLevel(strings.TrimSpace(raw.LogLevel))
		if err != nil {
			return fmt.Errorf("parse log_level: %w", err)
		}
		c.LogLevel = level
	}
	return nil
}

func (c *appConfig) applyEnv(getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	if v := strings.TrimSpace(getenv("GODASH_BASE_URL")); v != "" {
		c.Core.Transport.BaseURL = v
	}
	if v := strings.TrimSpace(getenv("GODASH_BACKEND")); v != "" {
		c.Core.Session.Backend = goDash.BackendKind(v)
	}
	if v := strings.TrimSpace(getenv("GODASH_SQLITE_PATH")); v != "" {
		c.Core.Session.SQLitePath = v
	}
	if v := strings.TrimSpace(getenv("GODASH_REDIS_ADDR")); v != "" {
		c.Core.Session.RedisAddr = v
	}
	if v := strings.TrimSpace(getenv("GODASH_LOG_LEVEL")); v != "" {
		level, err := zerolog.ParseLevel(v)
		if err != nil {
			return fmt.Errorf("parse GODASH_LOG_LEVEL: %w", err)
		}
		c.LogLevel = level
	}
	return nil
}

func normalizeViews(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// newLogger writes human-readable lines to out. Color is dropped when out is
// not a terminal.
func newLogger(level zerolog.Level, out io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal(out),
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "godash").Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
