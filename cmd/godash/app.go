package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	goDash "github.com/MrEthical07/goDash"
	"github.com/MrEthical07/goDash/client"
	"github.com/MrEthical07/goDash/guard"
	"github.com/MrEthical07/goDash/internal/taskapi"
	"github.com/MrEthical07/goDash/metrics/export/prometheus"
	"github.com/MrEthical07/goDash/session"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type app struct {
	mgr      *goDash.Manager
	client   *client.Client
	router   *guard.Router
	exporter *prometheus.PrometheusExporter
	entry    string
	logger   zerolog.Logger
	out      io.Writer
}

func newApp(cfg appConfig, logger zerolog.Logger, out io.Writer, opts ...client.Option) (*app, error) {
	b := goDash.New().
		WithConfig(cfg.Core).
		WithLogger(logger)
	if cfg.Core.Audit.Enabled {
		b = b.WithAuditSink(goDash.NewLoggerSink(logger))
	}
	mgr, err := b.Build()
	if err != nil {
		return nil, err
	}

	c, err := client.New(mgr, cfg.Core.Transport, opts...)
	if err != nil {
		_ = mgr.Close()
		return nil, err
	}

	policy := guard.PolicyFromConfig(cfg.Core.Guard)
	a := &app{
		mgr:      mgr,
		entry:    policy.Entry(),
		client:   c,
		exporter: prometheus.NewPrometheusExporter(mgr),
		logger:   logger,
		out:      out,
	}
	a.router = guard.Attach(mgr, policy, guard.WithOnDecision(func(d guard.Decision) {
		logger.Debug().Stringer("action", d.Action).Str("view", d.View).Msg("route decision")
	}))
	return a, nil
}

func (a *app) Close() error {
	a.router.Close()
	return a.mgr.Close()
}

func (a *app) login(ctx context.Context, args []string, getenv func(string) string) error {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	demo := flags.Bool("demo", false, "use the demo account")
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password (or GODASH_PASSWORD)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *demo {
		*email, *password = taskapi.DemoEmail, taskapi.DemoPassword
	}
	if *password == "" && getenv != nil {
		*password = getenv("GODASH_PASSWORD")
	}

	sess, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		var se *goDash.StatusError
		if errors.As(err, &se) && se.Message != "" {
			return errors.New(se.Message)
		}
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", sess.Identity.DisplayName())
	return a.view(ctx, viewDashboard)
}

func (a *app) logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *app) whoami() error {
	sess, ok := a.mgr.Current()
	if !ok {
		fmt.Fprintln(a.out, "anonymous")
		return nil
	}
	if sess.Identity == nil {
		fmt.Fprintln(a.out, "signed in (identity unavailable)")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> id=%d\n", sess.Identity.DisplayName(), sess.Identity.Email, sess.Identity.ID)
	return nil
}

// view renders path if the guard admits it and the entry view otherwise. A
// 401 while loading ends the session. The command is single-threaded, so the
// router has moved to the entry view by the time Dashboard returns.
func (a *app) view(ctx context.Context, path string) error {
	d := a.router.Navigate(path)
	if !d.Render() {
		fmt.Fprintf(a.out, "Sign in required for %s\n", guard.CleanView(path))
		renderEntry(a.out, session.Session{}, false)
		return nil
	}
	if d.View == a.entry {
		sess, ok := a.mgr.Current()
		renderEntry(a.out, sess, ok)
		return nil
	}
	if !isDashboardView(d.View) {
		return fmt.Errorf("no such view %q", d.View)
	}

	dash, err := a.client.Dashboard(ctx)
	switch {
	case errors.Is(err, goDash.ErrCredentialRejected):
		fmt.Fprintln(a.out, "Session expired, please sign in again")
		renderEntry(a.out, session.Session{}, false)
		return nil
	case err != nil:
		return err
	}

	sess, _ := a.mgr.Current()
	return renderDashboardView(a.out, d.View, sess, dash)
}

func (a *app) serveMetrics(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("metrics", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	listen := flags.String("listen", "127.0.0.1:9464", "listen address")
	if err := flags.Parse(args); err != nil {
		return err
	}

	reg := promclient.NewRegistry()
	reg.MustRegister(prometheus.NewCollector(a.mgr))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/metrics/text", a.exporter.Handler())

	srv := &http.Server{Addr: *listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	a.logger.Info().Str("listen", *listen).Msg("serving metrics")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
