package prometheus

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goDash "github.com/MrEthical07/goDash"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type fakeSource struct {
	snapshot goDash.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goDash.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                    { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goDash.MetricsSnapshot{
			Counters:   map[goDash.MetricID]uint64{},
			Histograms: map[goDash.MetricID][]uint64{},
		},
		dropped: 0,
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goDash.MetricsSnapshot{
			Counters: map[goDash.MetricID]uint64{
				goDash.MetricLoginSuccess: 7,
			},
			Histograms: map[goDash.MetricID][]uint64{
				goDash.MetricRequestLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	if !strings.Contains(out, "godash_login_success_total 7") {
		t.Fatalf("expected login_success counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "godash_request_latency_seconds_bucket{le=\"0.005\"} 1") {
		t.Fatalf("expected first histogram bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "godash_request_latency_seconds_bucket{le=\"+Inf\"} 36") {
		t.Fatalf("expected +Inf cumulative bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "godash_audit_dropped_total 2") {
		t.Fatalf("expected audit dropped counter in output, got:\n%s", out)
	}
}

type failingWriter struct{ writes int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.writes++
	return 0, errors.New("broken pipe")
}

func TestWriteToStopsAtFirstError(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goDash.MetricsSnapshot{
			Counters: map[goDash.MetricID]uint64{goDash.MetricLogout: 1},
		},
	})

	w := &failingWriter{}
	n, err := exp.WriteTo(w)
	if err == nil || n != 0 {
		t.Fatalf("expected write error and no bytes, got n=%d err=%v", n, err)
	}
	if w.writes != 1 {
		t.Fatalf("expected writing to stop after the first failure, got %d writes", w.writes)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goDash.MetricsSnapshot{
			Counters:   map[goDash.MetricID]uint64{goDash.MetricLoginSuccess: 1},
			Histograms: map[goDash.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCollectorMatchesRender(t *testing.T) {
	src := fakeSource{
		snapshot: goDash.MetricsSnapshot{
			Counters: map[goDash.MetricID]uint64{
				goDash.MetricForcedLogout: 3,
			},
			Histograms: map[goDash.MetricID][]uint64{
				goDash.MetricRequestLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 4,
	}

	reg := promclient.NewRegistry()
	reg.MustRegister(NewCollectorFromSource(src))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	byName := make(map[string]float64)
	var histCount uint64
	for _, mf := range families {
		m := mf.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			byName[mf.GetName()] = m.GetCounter().GetValue()
		case m.GetHistogram() != nil:
			histCount = m.GetHistogram().GetSampleCount()
		}
	}
	if byName["godash_forced_logout_total"] != 3 {
		t.Fatalf("expected forced logout 3, got %v", byName["godash_forced_logout_total"])
	}
	if byName["godash_audit_dropped_total"] != 4 {
		t.Fatalf("expected audit dropped 4, got %v", byName["godash_audit_dropped_total"])
	}
	if histCount != 36 {
		t.Fatalf("expected histogram count 36, got %d", histCount)
	}

	rec := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "godash_request_latency_seconds_bucket{le=\"0.005\"} 1") {
		t.Fatalf("expected first bucket in registry output, got:\n%s", rec.Body.String())
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goDash.MetricsSnapshot{
			Counters: map[goDash.MetricID]uint64{
				goDash.MetricLoginSuccess:       1000,
				goDash.MetricLoginFailure:       40,
				goDash.MetricLogout:             800,
				goDash.MetricCredentialRejected: 10,
				goDash.MetricForcedLogout:       8,
				goDash.MetricRequestDecorated:   20000,
				goDash.MetricGuardRedirect:      3,
			},
			Histograms: map[goDash.MetricID][]uint64{
				goDash.MetricRequestLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
		dropped: 0,
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
