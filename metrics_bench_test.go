package goDash

import (
	"context"
	"testing"
	"time"
)

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricRequestDecorated)
	}
}

func BenchmarkMetricsIncDisabled(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricRequestDecorated)
	}
}

func BenchmarkMetricsObserveLatencyParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	d := 12 * time.Millisecond
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Observe(MetricRequestLatency, d)
		}
	})
}

// The request pipeline touches these on every call.
var requestPathMetricIDs = [...]MetricID{
	MetricRequestDecorated,
	MetricRequestAnonymous,
	MetricCredentialRejected,
	MetricGuardRender,
	MetricGuardRedirect,
}

func BenchmarkMetricsIncRequestPathParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			m.Inc(requestPathMetricIDs[idx])
			idx++
			if idx == len(requestPathMetricIDs) {
				idx = 0
			}
		}
	})
}

func BenchmarkManagerCurrentParallel(b *testing.B) {
	mgr, err := New().WithConfig(testConfig()).Build()
	if err != nil {
		b.Fatalf("build: %v", err)
	}
	defer mgr.Close()
	if err := mgr.Login(context.Background(), "tok", testIdentity()); err != nil {
		b.Fatalf("login: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, ok := mgr.Current(); !ok {
				b.Fatal("expected session")
			}
		}
	})
}
