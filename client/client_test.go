package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goDash "github.com/MrEthical07/goDash"
	"github.com/MrEthical07/goDash/internal/taskapi"
	"github.com/MrEthical07/goDash/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	api    *taskapi.Server
	srv    *httptest.Server
	mgr    *goDash.Manager
	client *Client
	store  *session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	api, err := taskapi.New(taskapi.Options{})
	require.NoError(t, err)
	srv := api.Start()
	t.Cleanup(srv.Close)

	backend := session.NewMemoryBackend()
	cfg := goDash.DefaultConfig()
	cfg.Session.Backend = goDash.BackendMemory
	cfg.Transport.BaseURL = srv.URL

	mgr, err := goDash.New().WithConfig(cfg).WithBackend(backend).Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	c, err := New(mgr, cfg.Transport)
	require.NoError(t, err)

	return &fixture{
		api:    api,
		srv:    srv,
		mgr:    mgr,
		client: c,
		store:  session.NewStore(backend, session.DefaultKeys()),
	}
}

func TestLoginInstallsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.client.Login(ctx, taskapi.DemoEmail, taskapi.DemoPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, int64(1), sess.Identity.ID)
	assert.Equal(t, "User1", sess.Identity.DisplayName())

	cur, ok := f.mgr.Current()
	require.True(t, ok)
	assert.True(t, cur.Equal(sess))

	stored, ok, err := f.store.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, stored.Equal(sess))
}

func TestLoginFailureLeavesSessionAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.Login(ctx, taskapi.DemoEmail, taskapi.DemoPassword)
	require.NoError(t, err)
	before, _ := f.mgr.Current()

	_, err = f.client.Login(ctx, taskapi.DemoEmail, "wrong-password")
	require.ErrorIs(t, err, goDash.ErrLoginFailed)

	var se *goDash.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "Invalid credentials", se.Message)

	after, ok := f.mgr.Current()
	require.True(t, ok, "a refused login must not end the existing session")
	assert.True(t, after.Equal(before))
}

func TestLoginRequiresCredentials(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.Login(context.Background(), " ", "")
	assert.ErrorIs(t, err, goDash.ErrLoginFailed)
	assert.Equal(t, goDash.StateAnonymous, f.mgr.State())
}

func TestLoginErrorPayloadIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"Invalid Credentials!"}`))
	}))
	defer srv.Close()

	cfg := goDash.DefaultConfig()
	cfg.Session.Backend = goDash.BackendMemory
	cfg.Transport.BaseURL = srv.URL
	mgr, err := goDash.New().WithConfig(cfg).Build()
	require.NoError(t, err)
	defer mgr.Close()

	c, err := New(mgr, cfg.Transport)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "a@example.com", "secret")
	assert.ErrorIs(t, err, goDash.ErrLoginFailed)
	assert.Equal(t, goDash.StateAnonymous, mgr.State())
}

func TestDashboardWithSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.client.Login(ctx, taskapi.DemoEmail, taskapi.DemoPassword)
	require.NoError(t, err)

	d, err := f.client.Dashboard(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, d.Users)
	assert.NotEmpty(t, d.Products)
	assert.Greater(t, d.TotalClicks(), 0)
	assert.Equal(t, int64(1), f.api.DashboardHits())
}

func TestDashboardWithoutSessionIsRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.Dashboard(context.Background())
	require.ErrorIs(t, err, goDash.ErrCredentialRejected)
	assert.Equal(t, goDash.StateAnonymous, f.mgr.State())
}

func TestRevokedTokenEndsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.client.Login(ctx, taskapi.DemoEmail, taskapi.DemoPassword)
	require.NoError(t, err)
	require.NoError(t, f.api.Revoke(sess.Token))

	var transitions []goDash.Transition
	unsub := f.mgr.Subscribe(func(tr goDash.Transition) { transitions = append(transitions, tr) })
	defer unsub()

	_, err = f.client.Dashboard(ctx)
	require.ErrorIs(t, err, goDash.ErrCredentialRejected)

	_, ok := f.mgr.Current()
	assert.False(t, ok)
	_, ok, err = f.store.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "store must be cleared with memory")

	_, err = f.client.Dashboard(ctx)
	require.ErrorIs(t, err, goDash.ErrCredentialRejected)
	require.Len(t, transitions, 1)
	assert.Equal(t, goDash.ReasonCredentialRejected, transitions[0].Reason)
}

func TestNetworkFailure(t *testing.T) {
	f := newFixture(t)
	f.srv.Close()

	_, err := f.client.Login(context.Background(), taskapi.DemoEmail, taskapi.DemoPassword)
	assert.ErrorIs(t, err, goDash.ErrNetworkFailure)
	_, err = f.client.Dashboard(context.Background())
	assert.ErrorIs(t, err, goDash.ErrNetworkFailure)
}

func TestServerErrorIsUnexpected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := goDash.DefaultConfig()
	cfg.Session.Backend = goDash.BackendMemory
	cfg.Transport.BaseURL = srv.URL
	mgr, err := goDash.New().WithConfig(cfg).Build()
	require.NoError(t, err)
	defer mgr.Close()
	c, err := New(mgr, cfg.Transport)
	require.NoError(t, err)

	_, err = c.Dashboard(context.Background())
	assert.ErrorIs(t, err, goDash.ErrUnexpectedResponse)
	assert.NotErrorIs(t, err, goDash.ErrCredentialRejected)
}

func TestMemberHelpers(t *testing.T) {
	m := Member{Name: "Alexandra Deff", Status: "Active", JoinDate: "2023-03-14"}
	assert.Equal(t, "AD", m.Initials())
	assert.True(t, m.Active())
	joined, ok := m.Joined()
	require.True(t, ok)
	assert.Equal(t, 2023, joined.Year())

	_, ok = Member{JoinDate: "yesterday"}.Joined()
	assert.False(t, ok)
}

func TestLoginFailuresAreCountedAndAudited(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		password string
		wantCode string
	}{
		{
			name: "refused",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
			},
			password: "secret",
			wantCode: "login_failed",
		},
		{
			name: "undecodable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"token":`))
			},
			password: "secret",
			wantCode: "unexpected_response",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
			password: "secret",
			wantCode: "unexpected_response",
		},
		{
			name:     "missing password",
			handler:  func(w http.ResponseWriter, r *http.Request) {},
			wantCode: "login_failed",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			cfg := goDash.DefaultConfig()
			cfg.Session.Backend = goDash.BackendMemory
			cfg.Transport.BaseURL = srv.URL
			cfg.Audit.Enabled = true
			cfg.Audit.BufferSize = 4
			sink := goDash.NewChannelSink(4)
			mgr, err := goDash.New().WithConfig(cfg).WithAuditSink(sink).Build()
			require.NoError(t, err)
			defer mgr.Close()
			c, err := New(mgr, cfg.Transport)
			require.NoError(t, err)

			_, err = c.Login(context.Background(), "a@example.com", tc.password)
			require.Error(t, err)
			assert.Equal(t, goDash.StateAnonymous, mgr.State())
			assert.Equal(t, uint64(1), mgr.Metrics().Value(goDash.MetricLoginFailure))

			select {
			case ev := <-sink.Events():
				assert.Equal(t, "login_failure", ev.EventType)
				assert.False(t, ev.Success)
				assert.Equal(t, tc.wantCode, ev.Error)
			case <-time.After(2 * time.Second):
				t.Fatal("no audit event for failed login")
			}
		})
	}
}

func TestLoginNetworkFailureIsAudited(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	cfg := goDash.DefaultConfig()
	cfg.Session.Backend = goDash.BackendMemory
	cfg.Transport.BaseURL = srv.URL
	cfg.Audit.Enabled = true
	sink := goDash.NewChannelSink(1)
	mgr, err := goDash.New().WithConfig(cfg).WithAuditSink(sink).Build()
	require.NoError(t, err)
	defer mgr.Close()
	c, err := New(mgr, cfg.Transport)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), taskapi.DemoEmail, taskapi.DemoPassword)
	require.ErrorIs(t, err, goDash.ErrNetworkFailure)

	select {
	case ev := <-sink.Events():
		assert.Equal(t, "network_failure", ev.Error)
	case <-time.After(2 * time.Second):
		t.Fatal("no audit event for failed login")
	}
}
