package otel

import (
	"context"
	"errors"
	"fmt"

	goDash "github.com/MrEthical07/goDash"
	"github.com/MrEthical07/goDash/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrNilMeter is returned when no meter is supplied.
	ErrNilMeter = errors.New("nil meter")
	// ErrNilSource is returned when no metrics source is supplied.
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() goDash.MetricsSnapshot
	AuditDropped() uint64
}

// latencyGauges carries one histogram as two gauges: bucket counts keyed by
// an "le" attribute, and the total sample count.
type latencyGauges struct {
	id      goDash.MetricID
	buckets metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// OTelExporter publishes session metrics as observable instruments. Values
// are read from the source on each collection; nothing is pushed.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration

	counters map[goDash.MetricID]metric.Int64ObservableCounter
	latency  []latencyGauges
	dropped  metric.Int64ObservableCounter
	bounds   []metric.ObserveOption
}

// NewOTelExporter registers instruments on meter reading from mgr.
func NewOTelExporter(meter metric.Meter, mgr *goDash.Manager) (*OTelExporter, error) {
	if mgr == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, mgr)
}

// NewOTelExporterFromSource registers instruments on meter reading from
// source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{
		source:   source,
		counters: make(map[goDash.MetricID]metric.Int64ObservableCounter, len(internaldefs.CounterDefs)),
		bounds:   make([]metric.ObserveOption, len(internaldefs.HistogramBounds)),
	}
	for i, le := range internaldefs.HistogramBounds {
		e.bounds[i] = metric.WithAttributes(attribute.String("le", le))
	}

	var all []metric.Observable
	for _, def := range internaldefs.CounterDefs {
		c, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", def.Name, err)
		}
		e.counters[def.ID] = c
		all = append(all, c)
	}

	for _, def := range internaldefs.HistogramDefs {
		buckets, err := meter.Int64ObservableGauge(def.Name+"_bucket",
			metric.WithDescription(def.Help+" Cumulative count per upper bound."),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			return nil, fmt.Errorf("gauge %s_bucket: %w", def.Name, err)
		}
		count, err := meter.Int64ObservableGauge(def.Name+"_count",
			metric.WithDescription(def.Help+" Total samples."),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			return nil, fmt.Errorf("gauge %s_count: %w", def.Name, err)
		}
		e.latency = append(e.latency, latencyGauges{id: def.ID, buckets: buckets, count: count})
		all = append(all, buckets, count)
	}

	dropped, err := meter.Int64ObservableCounter(internaldefs.AuditDroppedName,
		metric.WithDescription("Audit events dropped on a full dispatcher buffer."),
	)
	if err != nil {
		return nil, fmt.Errorf("counter %s: %w", internaldefs.AuditDroppedName, err)
	}
	e.dropped = dropped
	all = append(all, dropped)

	reg, err := meter.RegisterCallback(e.observe, all...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	for id, c := range e.counters {
		o.ObserveInt64(c, int64(snap.Counters[id]))
	}
	for _, g := range e.latency {
		cum := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[g.id]))
		for i, n := range cum {
			o.ObserveInt64(g.buckets, int64(n), e.bounds[i])
		}
		o.ObserveInt64(g.count, int64(cum[len(cum)-1]))
	}
	o.ObserveInt64(e.dropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
