// Command godash-loadtest drives the dashboard client against an in-process
// task API, then revokes every issued token and fires a burst of requests at
// the dead credential. It exits non-zero unless the burst ended the session
// exactly once.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	goDash "github.com/MrEthical07/goDash"
	"github.com/MrEthical07/goDash/client"
	"github.com/MrEthical07/goDash/internal/taskapi"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type loadOptions struct {
	concurrency int
	ops         int
	burst       int
	redisAddr   string
	prefix      string
}

func main() {
	var o loadOptions
	flag.IntVar(&o.concurrency, "concurrency", 64, "workers in the steady phase")
	flag.IntVar(&o.ops, "ops", 20000, "dashboard reads in the steady phase")
	flag.IntVar(&o.burst, "burst", 256, "concurrent requests racing a revoked credential")
	flag.StringVar(&o.redisAddr, "redis-addr", "", "redis address; REDIS_ADDR or an embedded miniredis when empty")
	flag.StringVar(&o.prefix, "prefix", "godash-load", "session key prefix")
	flag.Parse()

	if o.concurrency <= 0 || o.ops <= 0 || o.burst <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency, ops and burst must be > 0")
		os.Exit(2)
	}
	if o.redisAddr == "" {
		o.redisAddr = os.Getenv("REDIS_ADDR")
	}

	if err := run(context.Background(), o); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o loadOptions) error {
	addr := o.redisAddr
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start miniredis: %w", err)
		}
		defer mr.Close()
		addr = mr.Addr()
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		fmt.Printf("using redis at %s\n", addr)
	}
	rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	defer rdb.Close()

	api, err := taskapi.New(taskapi.Options{})
	if err != nil {
		return fmt.Errorf("task api: %w", err)
	}
	ts := api.Start()
	defer ts.Close()

	cfg := goDash.DefaultConfig()
	cfg.Session.Backend = goDash.BackendRedis
	cfg.Session.RedisAddr = addr
	cfg.Session.RedisPrefix = o.prefix
	cfg.Transport.BaseURL = ts.URL

	mgr, err := goDash.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithLogger(zerolog.New(os.Stderr).Level(zerolog.WarnLevel)).
		Build()
	if err != nil {
		return fmt.Errorf("manager build: %w", err)
	}
	defer mgr.Close()

	var navigations atomic.Int64
	mgr.SetNavigator(goDash.NavigatorFunc(func(context.Context, goDash.Transition) {
		navigations.Add(1)
	}))

	c, err := client.New(mgr, cfg.Transport)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	if _, err := c.Login(ctx, taskapi.DemoEmail, taskapi.DemoPassword); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	steady := runDashboardPhase(ctx, c, o.ops, o.concurrency)
	if err := api.RotateKey(); err != nil {
		return fmt.Errorf("rotate key: %w", err)
	}
	revoked := runDashboardPhase(ctx, c, o.burst, o.burst)

	snap := mgr.MetricsSnapshot()
	forced := snap.Counters[goDash.MetricForcedLogout]
	fmt.Println("---- results ----")
	printStats("dashboard", steady)
	printStats("revoked-burst", revoked)
	fmt.Printf("forced_logouts=%d navigations=%d rejections=%d stale=%d server_401=%d\n",
		forced,
		navigations.Load(),
		snap.Counters[goDash.MetricCredentialRejected],
		snap.Counters[goDash.MetricStaleRejection],
		api.Rejections(),
	)
	if forced != 1 || navigations.Load() != 1 {
		return errors.New("expected exactly one forced logout and one navigation")
	}
	return nil
}

// runDashboardPhase issues ops dashboard reads with at most concurrency in
// flight. Every error counts as a failure; only non-401 errors are printed.
func runDashboardPhase(ctx context.Context, c *client.Client, ops, concurrency int) phaseStats {
	var (
		g        errgroup.Group
		mu       sync.Mutex
		failures atomic.Int64
		samples  = make([]time.Duration, 0, ops)
	)
	g.SetLimit(concurrency)

	start := time.Now()
	for i := 0; i < ops; i++ {
		g.Go(func() error {
			t0 := time.Now()
			_, err := c.Dashboard(ctx)
			d := time.Since(t0)
			if err != nil {
				failures.Add(1)
				if !errors.Is(err, goDash.ErrCredentialRejected) {
					fmt.Fprintf(os.Stderr, "dashboard: %v\n", err)
				}
			}
			mu.Lock()
			samples = append(samples, d)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return computeStats(time.Since(start), samples, failures.Load())
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	s := phaseStats{total: total, ops: len(samples), failures: failures}
	if len(samples) == 0 {
		return s
	}
	slices.Sort(samples)
	s.p50 = percentile(samples, 50)
	s.p95 = percentile(samples, 95)
	s.p99 = percentile(samples, 99)
	s.opsPerS = float64(len(samples)) / total.Seconds()
	return s
}

// percentile reads the nearest-rank value from sorted samples.
func percentile(samples []time.Duration, p int) time.Duration {
	switch {
	case len(samples) == 0:
		return 0
	case p <= 0:
		return samples[0]
	case p >= 100:
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name, s.ops, s.failures,
		s.total.Round(time.Millisecond), s.opsPerS,
		s.p50.Round(time.Microsecond), s.p95.Round(time.Microsecond), s.p99.Round(time.Microsecond),
	)
}
