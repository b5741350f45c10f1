// Package prometheus exposes goDash session metrics to Prometheus.
//
// [PrometheusExporter] renders the text exposition format directly and serves
// it as an [http.Handler]. [Collector] registers the same series with a
// client_golang registry for processes that already run one. Counters are
// named godash_*_total; the single histogram is
// godash_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register in the global Prometheus registry; callers choose the registry.
//   - Mutate session state.
package prometheus
