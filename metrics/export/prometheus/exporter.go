package prometheus

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	goDash "github.com/MrEthical07/goDash"
	"github.com/MrEthical07/goDash/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() goDash.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter renders session metrics in Prometheus text exposition
// format without a client library registry.
//
//	Docs: docs/metrics.md
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter creates an exporter reading from mgr.
//
//	Docs: docs/metrics.md
func NewPrometheusExporter(mgr *goDash.Manager) *PrometheusExporter {
	return &PrometheusExporter{source: mgr}
}

// NewPrometheusExporterFromSource creates an exporter from any snapshot
// source.
//
//	Docs: docs/metrics.md
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler returns an http.Handler that serves the text exposition.
//
//	Docs: docs/metrics.md
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = p.WriteTo(w)
	})
}

// Render returns the current metrics in Prometheus text exposition format,
// or "" when nothing was ever recorded.
//
//	Docs: docs/metrics.md
func (p *PrometheusExporter) Render() string {
	var b strings.Builder
	_, _ = p.WriteTo(&b)
	return b.String()
}

// WriteTo writes the exposition to w.
func (p *PrometheusExporter) WriteTo(w io.Writer) (int64, error) {
	if p == nil || p.source == nil {
		return 0, nil
	}
	snap := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snap.Counters) == 0 && len(snap.Histograms) == 0 && dropped == 0 {
		return 0, nil
	}

	ew := &expositionWriter{w: w}
	for _, def := range internaldefs.CounterDefs {
		ew.counter(def.Name, def.Help, snap.Counters[def.ID])
	}
	for _, def := range internaldefs.HistogramDefs {
		ew.histogram(def.Name, def.Help, snap.Histograms[def.ID])
	}
	ew.counter(internaldefs.AuditDroppedName, "Audit events dropped on a full dispatcher buffer.", dropped)
	return ew.n, ew.err
}

// expositionWriter keeps the first write error and stops writing after it.
type expositionWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (e *expositionWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	n, err := fmt.Fprintf(e.w, format, args...)
	e.n += int64(n)
	e.err = err
}

func (e *expositionWriter) header(name, help, kind string) {
	e.printf("# HELP %s %s\n# TYPE %s %s\n", name, helpEscaper.Replace(help), name, kind)
}

func (e *expositionWriter) counter(name, help string, v uint64) {
	e.header(name, help, "counter")
	e.printf("%s %d\n", name, v)
}

func (e *expositionWriter) histogram(name, help string, raw []uint64) {
	cum := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
	e.header(name, help, "histogram")
	for i, le := range internaldefs.HistogramBounds {
		e.printf("%s_bucket{le=%q} %d\n", name, le, cum[i])
	}
	// snapshots carry no sum
	e.printf("%s_count %d\n%s_sum 0\n", name, cum[len(cum)-1], name)
}

var helpEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
