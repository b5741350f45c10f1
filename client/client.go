package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	goDash "github.com/MrEthical07/goDash"
	"github.com/MrEthical07/goDash/session"
	"github.com/MrEthical07/goDash/transport"
	"github.com/rs/zerolog"
)

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 4 << 10

// Option configures a Client.
type Option func(*options)

type options struct {
	base http.RoundTripper
}

// WithBaseTransport sets the RoundTripper under the request pipeline.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// Client is the Task API client bound to one Manager.
//
//	Docs: docs/client.md
type Client struct {
	mgr           *goDash.Manager
	http          *http.Client
	baseURL       *url.URL
	loginPath     string
	dashboardPath string
	logger        zerolog.Logger
}

// New returns a Client for the API described by cfg. Every request goes
// through a [transport.Transport] bound to mgr.
func New(mgr *goDash.Manager, cfg goDash.TransportConfig, opts ...Option) (*Client, error) {
	if mgr == nil {
		return nil, goDash.ErrManagerNotReady
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	pipeline := transport.ForManager(mgr,
		transport.WithBase(o.base),
		transport.WithUserAgent(cfg.UserAgent),
	)

	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/api/login"
	}
	dashboardPath := cfg.DashboardPath
	if dashboardPath == "" {
		dashboardPath = "/api/dashboard"
	}

	return &Client{
		mgr:           mgr,
		http:          &http.Client{Transport: pipeline},
		baseURL:       base,
		loginPath:     loginPath,
		dashboardPath: dashboardPath,
		logger:        mgr.Logger().With().Str("component", "client").Logger(),
	}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Error string `json:"error"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Login submits credentials and, on success, installs the session in the
// Manager. It never sends the current credential. A refusal returns an error
// wrapping [goDash.ErrLoginFailed] and leaves the session untouched.
func (c *Client) Login(ctx context.Context, email, password string) (session.Session, error) {
	fail := func(err error) (session.Session, error) {
		c.mgr.LoginFailed(ctx, err)
		return session.Session{}, err
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return fail(fmt.Errorf("%w: email and password are required", goDash.ErrLoginFailed))
	}

	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return fail(err)
	}
	req, err := http.NewRequestWithContext(goDash.WithoutCredentials(ctx), http.MethodPost, c.endpoint(c.loginPath), bytes.NewReader(body))
	if err != nil {
		return fail(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", goDash.ErrNetworkFailure, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return fail(&goDash.StatusError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
			Err:        goDash.ErrLoginFailed,
		})
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fail(goDash.NewStatusError(resp.StatusCode, readErrorMessage(resp.Body)))
	}

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fail(fmt.Errorf("%w: %v", goDash.ErrUnexpectedResponse, err))
	}
	if out.Error != "" || out.Token == "" {
		msg := out.Error
		if msg == "" {
			msg = "no token in response"
		}
		return fail(fmt.Errorf("%w: %s", goDash.ErrLoginFailed, msg))
	}

	if out.Email == "" {
		out.Email = email
	}
	identity := &session.Identity{ID: out.ID, Email: out.Email}
	if err := c.mgr.Login(ctx, out.Token, identity); err != nil {
		return session.Session{}, err
	}
	c.logger.Info().Int64("user_id", out.ID).Msg("signed in")

	return session.Session{Token: out.Token, Identity: identity}, nil
}

// Logout ends the session locally. The Task API has no logout endpoint.
func (c *Client) Logout(ctx context.Context) error {
	return c.mgr.Logout(ctx)
}

// Dashboard fetches the dashboard payload with the current credential.
//
// A 401 yields a [*goDash.StatusError] wrapping [goDash.ErrCredentialRejected];
// by then the session has already ended.
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(c.dashboardPath), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", goDash.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, goDash.NewStatusError(resp.StatusCode, readErrorMessage(resp.Body))
	}

	var out Dashboard
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", goDash.ErrUnexpectedResponse, err)
	}
	return &out, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body errorResponse
	if json.Unmarshal(raw, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
