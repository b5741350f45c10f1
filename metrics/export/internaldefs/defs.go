package internaldefs

import (
	goDash "github.com/MrEthical07/goDash"
)

// CounterDef binds a counter id to its exported name.
type CounterDef struct {
	ID   goDash.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram id to its exported name.
type HistogramDef struct {
	ID   goDash.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter for events the audit dispatcher dropped.
const AuditDroppedName = "godash_audit_dropped_total"

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: goDash.MetricLoginSuccess, Name: "godash_login_success_total", Help: "Sessions installed by login."},
	{ID: goDash.MetricLoginFailure, Name: "godash_login_failure_total", Help: "Refused or invalid login attempts."},
	{ID: goDash.MetricLogout, Name: "godash_logout_total", Help: "Sessions ended by explicit logout."},
	{ID: goDash.MetricLogoutNoop, Name: "godash_logout_noop_total", Help: "Logout calls made while already anonymous."},
	{ID: goDash.MetricCredentialRejected, Name: "godash_credential_rejected_total", Help: "401 responses to decorated requests."},
	{ID: goDash.MetricForcedLogout, Name: "godash_forced_logout_total", Help: "Sessions ended by a credential rejection."},
	{ID: goDash.MetricStaleRejection, Name: "godash_stale_rejection_total", Help: "Rejections of a token that was no longer current."},
	{ID: goDash.MetricRequestDecorated, Name: "godash_request_decorated_total", Help: "Requests sent with a bearer credential."},
	{ID: goDash.MetricRequestAnonymous, Name: "godash_request_anonymous_total", Help: "Requests sent without a credential."},
	{ID: goDash.MetricNetworkFailure, Name: "godash_network_failure_total", Help: "Requests that failed without a response."},
	{ID: goDash.MetricStoreCorrupt, Name: "godash_store_corrupt_total", Help: "Persisted identity records that failed to decode."},
	{ID: goDash.MetricStoreFailure, Name: "godash_store_failure_total", Help: "Session store I/O failures."},
	{ID: goDash.MetricGuardRender, Name: "godash_guard_render_total", Help: "Route guard render decisions."},
	{ID: goDash.MetricGuardRedirect, Name: "godash_guard_redirect_total", Help: "Route guard redirect decisions."},
	{ID: goDash.MetricNavigation, Name: "godash_navigation_total", Help: "Navigations to the entry view after a session ended."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goDash.MetricRequestLatency, Name: "godash_request_latency_seconds", Help: "Request pipeline round-trip latency."},
}

// HistogramBounds are the upper bounds of the core histogram buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSeconds are HistogramBounds without the +Inf bucket.
var HistogramBoundSeconds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// NormalizeBuckets copies raw into a fixed eight-bucket array, zero-filling
// a short or missing slice.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
