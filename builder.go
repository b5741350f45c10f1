package goDash

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goDash/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Builder assembles a [Manager] from a [Config] and optional injected
// dependencies.
//
// Builder instances are intended to be configured during initialization and
// used for exactly one Build.
type Builder struct {
	config Config

	backend   session.Backend
	store     *session.Store
	redis     redis.UniversalClient
	navigator Navigator
	logger    *zerolog.Logger
	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBackend injects a session backend. It overrides Config.Session.Backend.
func (b *Builder) WithBackend(backend session.Backend) *Builder {
	b.backend = backend
	return b
}

// WithStore injects a ready store. It overrides WithBackend and the
// configured backend.
func (b *Builder) WithStore(store *session.Store) *Builder {
	b.store = store
	return b
}

// WithRedis injects the client used by the redis backend instead of dialing
// Config.Session.RedisAddr.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithNavigator sets the navigator called when a session ends.
func (b *Builder) WithNavigator(n Navigator) *Builder {
	b.navigator = n
	return b
}

// WithLogger sets the logger. The default discards everything.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = &logger
	return b
}

// WithAuditSink sets where audit events go once Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the request latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, opens the session backend, restores the
// persisted session and returns the Manager.
//
// A backend that cannot be read at startup fails Build with
// [ErrStoreUnavailable]; the Manager never starts from a guessed state.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if b.logger != nil {
		logger = *b.logger
	}
	logger = logger.With().Str("component", "session").Logger()

	m := &Manager{
		logger:  logger,
		metrics: NewMetrics(cfg.Metrics),
	}
	m.SetNavigator(b.navigator)

	// -------- SESSION STORE --------
	store := b.store
	if store == nil {
		backend, closers, err := b.openBackend(cfg.Session)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		m.closers = closers
		store = session.NewStore(backend, session.Keys{
			Token: cfg.Session.TokenKey,
			User:  cfg.Session.UserKey,
		})
	}
	m.store = store.WithCorruptionHook(m.storeCorrupt)

	// -------- AUDIT --------
	m.audit = newAuditDispatcher(cfg.Audit, b.auditSink)

	// -------- RESTORE --------
	sess, ok, err := store.Read(context.Background())
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if ok {
		m.current = sess
		logger.Debug().Bool("identity", sess.Identity != nil).Msg("session restored")
	}

	b.built = true
	return m, nil
}

func (b *Builder) openBackend(cfg SessionConfig) (session.Backend, []func() error, error) {
	if b.backend != nil {
		return b.backend, nil, nil
	}

	switch cfg.Backend {
	case BackendMemory:
		return session.NewMemoryBackend(), nil, nil
	case BackendSQLite:
		backend, err := session.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return backend, []func() error{backend.Close}, nil
	case BackendRedis:
		if b.redis != nil {
			return session.NewRedisBackend(b.redis, cfg.RedisPrefix), nil, nil
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return session.NewRedisBackend(client, cfg.RedisPrefix), []func() error{client.Close}, nil
	default:
		return nil, nil, errors.New("unsupported session backend")
	}
}
