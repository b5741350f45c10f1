package transport

import (
	"context"
	"net/http"
	"time"

	goDash "github.com/MrEthical07/goDash"
	"github.com/MrEthical07/goDash/session"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// SessionSource is the read and invalidate surface of the session manager.
// [*goDash.Manager] implements it.
type SessionSource interface {
	Current() (session.Session, bool)
	Invalidate(ctx context.Context, token string) bool
}

// Decorate returns req carrying "Authorization: Bearer <token>" when ok and
// the token is non-empty. The original request is never modified. Requests
// whose context is marked with [goDash.WithoutCredentials] are returned as
// they are.
func Decorate(req *http.Request, sess session.Session, ok bool) *http.Request {
	if req == nil || !ok || sess.Token == "" || goDash.CredentialsDisabled(req.Context()) {
		return req
	}
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+sess.Token)
	return out
}

// IsCredentialRejected reports whether resp is a 401.
func IsCredentialRejected(resp *http.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusUnauthorized
}

// Option configures a [Transport].
type Option func(*Transport)

// WithBase sets the underlying RoundTripper (default http.DefaultTransport).
func WithBase(rt http.RoundTripper) Option {
	return func(t *Transport) {
		if rt != nil {
			t.base = rt
		}
	}
}

// WithMetrics records request counters and latency into m.
func WithMetrics(m *goDash.Metrics) Option {
	return func(t *Transport) { t.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

// WithUserAgent sets User-Agent on requests that carry none.
func WithUserAgent(ua string) Option {
	return func(t *Transport) { t.userAgent = ua }
}

// Transport decorates outgoing requests with the current credential and
// invalidates the session on 401.
//
//	Docs: docs/transport.md
type Transport struct {
	base      http.RoundTripper
	source    SessionSource
	metrics   *goDash.Metrics
	logger    zerolog.Logger
	userAgent string

	rejections singleflight.Group
}

// New returns a Transport reading the session from source.
func New(source SessionSource, opts ...Option) *Transport {
	t := &Transport{
		base:   http.DefaultTransport,
		source: source,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ForManager returns a Transport sharing mgr's metrics and logger.
func ForManager(mgr *goDash.Manager, opts ...Option) *Transport {
	base := []Option{
		WithMetrics(mgr.Metrics()),
		WithLogger(mgr.Logger().With().Str("component", "transport").Logger()),
	}
	return New(mgr, append(base, opts...)...)
}

// RoundTrip implements http.RoundTripper.
//
// The session is captured once, before sending. A 401 invalidates exactly
// that captured token, so a rejection arriving after the user signed in again
// does not end the new session. The response is returned unchanged.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var (
		sess session.Session
		ok   bool
	)
	if t.source != nil {
		sess, ok = t.source.Current()
	}

	out := Decorate(req, sess, ok)
	decorated := out != req
	if decorated {
		t.metrics.Inc(goDash.MetricRequestDecorated)
	} else {
		t.metrics.Inc(goDash.MetricRequestAnonymous)
	}
	if t.userAgent != "" && out.Header.Get("User-Agent") == "" {
		if !decorated {
			out = req.Clone(req.Context())
		}
		out.Header.Set("User-Agent", t.userAgent)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(out)
	t.metrics.Observe(goDash.MetricRequestLatency, time.Since(start))
	if err != nil {
		t.metrics.Inc(goDash.MetricNetworkFailure)
		return nil, err
	}

	if IsCredentialRejected(resp) && decorated {
		t.metrics.Inc(goDash.MetricCredentialRejected)
		t.reject(req.Context(), req.URL.Path, sess.Token)
	}
	return resp, nil
}

// reject collapses concurrent invalidations of one token into a single call.
func (t *Transport) reject(ctx context.Context, path, token string) {
	v, _, shared := t.rejections.Do(token, func() (any, error) {
		return t.source.Invalidate(context.WithoutCancel(ctx), token), nil
	})
	acted, _ := v.(bool)
	t.logger.Debug().
		Str("path", path).
		Bool("ended_session", acted).
		Bool("shared", shared).
		Msg("credential rejected")
}
