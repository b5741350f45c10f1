package goDash

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one counter or histogram in [Metrics].
type MetricID uint16

const (
	// MetricLoginSuccess counts successful Manager.Login calls.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected logins (endpoint refusal or invalid input).
	MetricLoginFailure
	// MetricLogout counts explicit Authenticated -> Anonymous transitions.
	MetricLogout
	// MetricLogoutNoop counts Logout calls that found the session already anonymous.
	MetricLogoutNoop
	// MetricCredentialRejected counts 401 responses seen by the request pipeline.
	MetricCredentialRejected
	// MetricForcedLogout counts transitions caused by a credential rejection.
	MetricForcedLogout
	// MetricStaleRejection counts 401s for a token that was no longer current.
	MetricStaleRejection
	// MetricRequestDecorated counts requests sent with a bearer credential.
	MetricRequestDecorated
	// MetricRequestAnonymous counts requests sent without a credential.
	MetricRequestAnonymous
	// MetricNetworkFailure counts transport-level request failures.
	MetricNetworkFailure
	// MetricStoreCorrupt counts persisted identity records that failed to decode.
	MetricStoreCorrupt
	// MetricStoreFailure counts persistent store I/O failures.
	MetricStoreFailure
	// MetricGuardRender counts route guard render decisions.
	MetricGuardRender
	// MetricGuardRedirect counts route guard redirect decisions.
	MetricGuardRedirect
	// MetricNavigation counts navigator invocations after a logout transition.
	MetricNavigation
	// MetricRequestLatency is the request pipeline round-trip latency histogram.
	MetricRequestLatency
	metricIDCount
)

// latencyBounds are the inclusive upper bounds of the latency buckets. A
// final overflow bucket follows them.
var latencyBounds = [...]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
}

const latencyBuckets = len(latencyBounds) + 1

// counterSlot sits on its own cache line so hot counters do not share one.
type counterSlot struct {
	n atomic.Uint64
	_ [56]byte
}

// Metrics is a fixed set of lock-free counters plus one latency histogram.
// A nil or disabled *Metrics ignores every call.
type Metrics struct {
	on      bool
	latency bool
	slots   [metricIDCount]counterSlot
	hist    [latencyBuckets]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
// Histogram buckets are non-cumulative.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics allocates counters according to cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		on:      cfg.Enabled,
		latency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters record.
func (m *Metrics) Enabled() bool { return m != nil && m.on }

// LatencyEnabled reports whether the latency histogram records.
func (m *Metrics) LatencyEnabled() bool { return m != nil && m.latency }

// Inc adds one to counter id.
func (m *Metrics) Inc(id MetricID) {
	if !m.Enabled() || id >= MetricRequestLatency {
		return
	}
	m.slots[id].n.Add(1)
}

// Observe records d in the histogram for id. Only [MetricRequestLatency] has
// a histogram; other ids are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if !m.LatencyEnabled() || id != MetricRequestLatency {
		return
	}
	m.hist[latencyBucket(d)].Add(1)
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricRequestLatency {
		return 0
	}
	return m.slots[id].n.Load()
}

// Snapshot copies every counter and, when latency is enabled, the histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if !m.Enabled() {
		return s
	}
	for id := MetricID(0); id < MetricRequestLatency; id++ {
		s.Counters[id] = m.slots[id].n.Load()
	}
	if m.latency {
		buckets := make([]uint64, latencyBuckets)
		for i := range buckets {
			buckets[i] = m.hist[i].Load()
		}
		s.Histograms[MetricRequestLatency] = buckets
	}
	return s
}

func latencyBucket(d time.Duration) int {
	for i, upper := range latencyBounds {
		if d <= upper {
			return i
		}
	}
	return len(latencyBounds)
}
