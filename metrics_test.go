package goDash

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsGating(t *testing.T) {
	cases := []struct {
		name        string
		cfg         MetricsConfig
		wantCounter uint64
		wantHist    bool
	}{
		{"disabled", MetricsConfig{}, 0, false},
		{"disabled ignores histogram flag", MetricsConfig{EnableLatencyHistograms: true}, 0, false},
		{"counters only", MetricsConfig{Enabled: true}, 2, false},
		{"counters and latency", MetricsConfig{Enabled: true, EnableLatencyHistograms: true}, 2, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMetrics(tc.cfg)
			m.Inc(MetricRequestDecorated)
			m.Inc(MetricRequestDecorated)
			m.Observe(MetricRequestLatency, time.Millisecond)

			if got := m.Value(MetricRequestDecorated); got != tc.wantCounter {
				t.Fatalf("expected %d, got %d", tc.wantCounter, got)
			}
			_, hasHist := m.Snapshot().Histograms[MetricRequestLatency]
			if hasHist != tc.wantHist {
				t.Fatalf("histogram present=%v, want %v", hasHist, tc.wantHist)
			}
		})
	}
}

func TestMetricsNilIsInert(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLogout)
	m.Observe(MetricRequestLatency, time.Second)
	if m.Value(MetricLogout) != 0 || m.Enabled() || m.LatencyEnabled() {
		t.Fatal("nil metrics must read as zero and disabled")
	}
	if snap := m.Snapshot(); snap.Counters == nil || snap.Histograms == nil {
		t.Fatal("nil metrics snapshot must carry empty maps")
	}
}

func TestLatencyBucketBoundsAreInclusive(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{5 * time.Millisecond, 0},
		{5*time.Millisecond + time.Microsecond, 1},
		{25 * time.Millisecond, 2},
		{26 * time.Millisecond, 3},
		{100 * time.Millisecond, 4},
		{500 * time.Millisecond, 6},
		{501 * time.Millisecond, 7},
		{time.Minute, 7},
	}
	for _, tc := range cases {
		if got := latencyBucket(tc.d); got != tc.want {
			t.Errorf("latencyBucket(%v) = %d, want %d", tc.d, got, tc.want)
		}
	}
}

func TestMetricsSnapshotBucketsAreNonCumulative(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	for _, d := range []time.Duration{time.Millisecond, 2 * time.Millisecond, 40 * time.Millisecond, 2 * time.Second} {
		m.Observe(MetricRequestLatency, d)
	}
	m.Observe(MetricLogout, time.Millisecond)

	got := m.Snapshot().Histograms[MetricRequestLatency]
	want := []uint64{2, 0, 0, 1, 0, 0, 0, 1}
	if len(got) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bucket %d: expected %d, got %d", i, want[i], got[i])
		}
	}
	if _, ok := m.Snapshot().Histograms[MetricLogout]; ok {
		t.Fatal("only request latency carries a histogram")
	}
}

func TestMetricsConcurrentRequestPath(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	const workers, rounds = 16, 2000
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if w%2 == 0 {
					m.Inc(MetricRequestDecorated)
				} else {
					m.Inc(MetricRequestAnonymous)
				}
				m.Observe(MetricRequestLatency, time.Duration(i)*time.Microsecond)
			}
		}(w)
	}
	wg.Wait()

	snap := m.Snapshot()
	half := uint64(workers / 2 * rounds)
	if snap.Counters[MetricRequestDecorated] != half || snap.Counters[MetricRequestAnonymous] != half {
		t.Fatalf("expected %d of each, got decorated=%d anonymous=%d",
			half, snap.Counters[MetricRequestDecorated], snap.Counters[MetricRequestAnonymous])
	}
	var total uint64
	for _, n := range snap.Histograms[MetricRequestLatency] {
		total += n
	}
	if total != workers*rounds {
		t.Fatalf("expected %d observations, got %d", workers*rounds, total)
	}
}

func TestManagerCountsLoginAndCollapsedLogout(t *testing.T) {
	mgr, _, done := newTestManager(t)
	defer done()
	ctx := context.Background()

	if err := mgr.Login(ctx, "tok-1", testIdentity()); err != nil {
		t.Fatalf("login: %v", err)
	}
	_ = mgr.Logout(ctx)
	_ = mgr.Logout(ctx)

	snap := mgr.MetricsSnapshot()
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("expected 1 login, got %d", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLogout] != 1 {
		t.Fatalf("expected 1 logout transition, got %d", snap.Counters[MetricLogout])
	}
	if snap.Counters[MetricLogoutNoop] != 1 {
		t.Fatalf("expected 1 no-op logout, got %d", snap.Counters[MetricLogoutNoop])
	}
}
