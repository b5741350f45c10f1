package goDash

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goDash/session"
	"github.com/rs/zerolog"
)

// Manager is the in-memory authority over the current session.
//
// Manager holds at most one session, writes it through to a [session.Store]
// and publishes every committed change as a [Transition]. Mutations are
// serialized; reads never block on store I/O.
//
//	Docs: docs/manager.md
type Manager struct {
	mu      sync.Mutex
	current session.Session
	seq     uint64

	store     *session.Store
	navigator atomic.Pointer[navigatorHolder]
	logger    zerolog.Logger
	metrics   *Metrics
	audit     *auditDispatcher
	closers   []func() error
	closeOnce sync.Once

	subs      subscriberSet
	pendingMu sync.Mutex
	pending   []pendingTransition
	deliverMu sync.Mutex
}

type navigatorHolder struct {
	nav Navigator
}

// Login replaces the current session with (token, identity).
//
// The store is written first; if that fails the in-memory session is left
// unchanged and the error wraps [ErrStoreUnavailable]. Requests already in
// flight keep the credential they were sent with.
func (m *Manager) Login(ctx context.Context, token string, identity *session.Identity) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if token == "" {
		m.LoginFailed(ctx, ErrTokenRequired)
		return ErrTokenRequired
	}
	if identity == nil {
		m.LoginFailed(ctx, ErrIdentityRequired)
		return ErrIdentityRequired
	}

	next := session.Session{Token: token, Identity: identity}.Clone()

	m.mu.Lock()
	if err := m.store.Write(ctx, next); err != nil {
		m.mu.Unlock()
		m.metricInc(MetricStoreFailure)
		m.metricInc(MetricLoginFailure)
		m.logger.Error().Err(err).Msg("session write failed, login not applied")
		m.emitAudit(ctx, auditEventLoginFailure, false, identity, "", ErrStoreUnavailable)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	changed := !m.current.Equal(next)
	if changed {
		m.commitLocked(ctx, next, ReasonLogin)
	}
	m.mu.Unlock()

	m.metricInc(MetricLoginSuccess)
	m.emitAudit(ctx, auditEventLoginSuccess, true, identity, string(ReasonLogin), nil)
	if changed {
		m.flush()
	}
	return nil
}

// LoginFailed records a sign-in attempt that never reached a session: a
// refusal from the login endpoint, a network failure or invalid input. The
// session is left untouched.
func (m *Manager) LoginFailed(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.metricInc(MetricLoginFailure)
	m.logger.Debug().Str("code", string(auditErrorCode(err))).Msg("login not applied")
	m.emitAudit(ctx, auditEventLoginFailure, false, nil, "", err)
}

// Logout ends the current session. Logging out while anonymous does nothing:
// no store call, no transition and no navigation.
//
// A failing store clear still ends the in-memory session; the error is
// returned wrapping [ErrStoreUnavailable].
//
// Navigation and subscribers run before Logout returns unless another
// goroutine is already delivering transitions; that goroutine then delivers
// this one after its current work.
func (m *Manager) Logout(ctx context.Context) error {
	if m == nil {
		return ErrManagerNotReady
	}

	m.mu.Lock()
	if !m.current.Authenticated() {
		m.mu.Unlock()
		m.metricInc(MetricLogoutNoop)
		return nil
	}
	prev := m.current.Identity
	err := m.store.Clear(ctx)
	m.commitLocked(ctx, session.Session{}, ReasonLogout)
	m.mu.Unlock()

	m.metricInc(MetricLogout)
	m.emitAudit(ctx, auditEventLogout, err == nil, prev, string(ReasonLogout), storeErr(err))
	m.flush()

	if err != nil {
		m.storeFailed(err, "session clear failed on logout")
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Invalidate ends the session because the server rejected token. It acts only
// while token is still the current credential, so a late rejection of a
// replaced session leaves the newer one alone. It reports whether a
// transition happened.
func (m *Manager) Invalidate(ctx context.Context, token string) bool {
	if m == nil || token == "" {
		return false
	}

	m.mu.Lock()
	if m.current.Token != token {
		m.mu.Unlock()
		m.metricInc(MetricStaleRejection)
		m.logger.Debug().Msg("credential rejection for a token that is no longer current")
		return false
	}
	prev := m.current.Identity
	err := m.store.Clear(ctx)
	m.commitLocked(ctx, session.Session{}, ReasonCredentialRejected)
	m.mu.Unlock()

	m.metricInc(MetricForcedLogout)
	m.logger.Warn().Str("reason", string(ReasonCredentialRejected)).Msg("session ended by server")
	m.emitAudit(ctx, auditEventCredentialRejected, err == nil, prev, string(ReasonCredentialRejected), ErrCredentialRejected)
	m.flush()

	if err != nil {
		m.storeFailed(err, "session clear failed on credential rejection")
	}
	return true
}

// Current returns a copy of the current session. ok is false when anonymous.
func (m *Manager) Current() (session.Session, bool) {
	if m == nil {
		return session.Session{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current.Authenticated() {
		return session.Session{}, false
	}
	return m.current.Clone(), true
}

// State returns the current coarse state.
func (m *Manager) State() State {
	if m == nil {
		return StateAnonymous
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return stateOf(m.current)
}

// Subscribe registers fn for every later transition and returns a function
// that removes it. fn runs outside the Manager's lock and may call back into
// the Manager; transitions it causes are delivered after fn returns.
func (m *Manager) Subscribe(fn func(Transition)) (unsubscribe func()) {
	if m == nil || fn == nil {
		return func() {}
	}
	id := m.subs.add(fn)
	var once sync.Once
	return func() {
		once.Do(func() { m.subs.remove(id) })
	}
}

// SetNavigator replaces the navigator called when a session ends. A nil
// navigator disables navigation.
func (m *Manager) SetNavigator(n Navigator) {
	if m == nil {
		return
	}
	if n == nil {
		m.navigator.Store(nil)
		return
	}
	m.navigator.Store(&navigatorHolder{nav: n})
}

// Metrics returns the Manager's counters, shared with the request pipeline.
func (m *Manager) Metrics() *Metrics {
	if m == nil {
		return nil
	}
	return m.metrics
}

// MetricsSnapshot returns a point-in-time copy of all metrics.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return m.metrics.Snapshot()
}

// AuditDropped returns how many audit events were dropped on a full buffer.
func (m *Manager) AuditDropped() uint64 {
	if m == nil {
		return 0
	}
	return m.audit.Dropped()
}

// Logger returns the Manager's logger for components built around it.
func (m *Manager) Logger() zerolog.Logger {
	if m == nil {
		return zerolog.Nop()
	}
	return m.logger
}

// Close flushes the audit dispatcher and releases backends opened by the
// Builder. The session itself stays persisted.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	var firstErr error
	m.closeOnce.Do(func() {
		m.audit.Close()
		for _, c := range m.closers {
			if err := c(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	})
	return firstErr
}

// commitLocked installs next and queues its transition. Callers hold m.mu so
// queue order equals commit order.
func (m *Manager) commitLocked(ctx context.Context, next session.Session, reason Reason) {
	if ctx == nil {
		ctx = context.Background()
	}
	from := stateOf(m.current)
	m.current = next
	m.seq++

	t := Transition{
		From:    from,
		To:      stateOf(next),
		Session: next.Clone(),
		Reason:  reason,
		Seq:     m.seq,
		At:      time.Now().UTC(),
	}
	m.logger.Debug().
		Uint64("seq", t.Seq).
		Stringer("from", t.From).
		Stringer("to", t.To).
		Str("reason", string(reason)).
		Msg("session transition")

	m.pendingMu.Lock()
	m.pending = append(m.pending, pendingTransition{ctx: context.WithoutCancel(ctx), t: t})
	m.pendingMu.Unlock()
}

// flush delivers queued transitions. Only one goroutine delivers at a time;
// others leave their transitions to it. A nested call from a subscriber
// returns immediately and the outer loop picks its transition up.
func (m *Manager) flush() {
	for {
		if !m.deliverMu.TryLock() {
			return
		}
		for {
			p, ok := m.popPending()
			if !ok {
				break
			}
			m.deliver(p)
		}
		m.deliverMu.Unlock()

		if !m.hasPending() {
			return
		}
	}
}

func (m *Manager) popPending() (pendingTransition, bool) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	if len(m.pending) == 0 {
		return pendingTransition{}, false
	}
	p := m.pending[0]
	m.pending[0] = pendingTransition{}
	m.pending = m.pending[1:]
	return p, true
}

func (m *Manager) hasPending() bool {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	return len(m.pending) > 0
}

// deliver navigates first so subscribers observe the entry view already
// selected.
func (m *Manager) deliver(p pendingTransition) {
	if p.t.EndedSession() {
		if h := m.navigator.Load(); h != nil && h.nav != nil {
			m.metricInc(MetricNavigation)
			h.nav.NavigateToEntry(p.ctx, p.t)
		}
	}
	for _, sub := range m.subs.snapshot() {
		sub.fn(p.t)
	}
}

func (m *Manager) storeFailed(err error, msg string) {
	m.metricInc(MetricStoreFailure)
	m.logger.Error().Err(err).Msg(msg)
	m.emitAudit(context.Background(), auditEventStoreFailure, false, nil, "", ErrStoreUnavailable)
}

func (m *Manager) storeCorrupt(ctx context.Context, err error) {
	m.metricInc(MetricStoreCorrupt)
	m.logger.Warn().Err(err).Msg("persisted identity unreadable, keeping token without identity")
	m.emitAudit(ctx, auditEventStoreCorrupt, false, nil, "", err)
}

func (m *Manager) metricInc(id MetricID) {
	m.metrics.Inc(id)
}

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return ErrStoreUnavailable
}
