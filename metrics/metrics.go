// Package metrics counts what happened during one pass over the input.
//
// The counters live on a private registry: nothing is served over the network,
// the totals are logged when the input is exhausted.
package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var spanBuckets = prometheus.ExponentialBuckets(0.001, 2, 16)

// Counters holds the run counters.
type Counters struct {
	registry *prometheus.Registry

	RecordsRead     prometheus.Counter
	RecordsSkipped  prometheus.Counter
	Events          *prometheus.CounterVec
	Spans           prometheus.Counter
	DuplicateBegins prometheus.Counter
	OrphanEnds      prometheus.Counter
	NegativeElapsed prometheus.Counter
	OpenBegins      prometheus.Gauge
	SpanDuration    prometheus.Histogram
}

// New creates the counters and registers them on a fresh registry.
func New() *Counters {
	c := &Counters{
		registry: prometheus.NewRegistry(),
		RecordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rendezvous",
			Name:      "records_read_total",
			Help:      "Input lines read",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rendezvous",
			Name:      "records_skipped_total",
			Help:      "Input lines that were not begin/end records",
		}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rendezvous",
			Name:      "events_total",
			Help:      "Begin and end events observed by the correlator",
		}, []string{"phase"}),
		Spans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rendezvous",
			Name:      "spans_total",
			Help:      "Begin/end pairs completed",
		}),
		DuplicateBegins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rendezvous",
			Name:      "duplicate_begins_total",
			Help:      "Begins seen while the same signature was already open",
		}),
		OrphanEnds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rendezvous",
			Name:      "orphan_ends_total",
			Help:      "Ends without a matching begin",
		}),
		NegativeElapsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rendezvous",
			Name:      "negative_elapsed_total",
			Help:      "Spans whose end precedes their begin",
		}),
		OpenBegins: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rendezvous",
			Name:      "open_begins",
			Help:      "Begins still waiting for their end",
		}),
		SpanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rendezvous",
			Name:      "span_duration_seconds",
			Help:      "Elapsed time of completed spans",
			Buckets:   spanBuckets,
		}),
	}

	c.registry.MustRegister(
		c.RecordsRead,
		c.RecordsSkipped,
		c.Events,
		c.Spans,
		c.DuplicateBegins,
		c.OrphanEnds,
		c.NegativeElapsed,
		c.OpenBegins,
		c.SpanDuration,
	)

	return c
}

// Summary flattens the registry into name -> value.
// Labelled counters are summed, histograms report their sample count.
func (c *Counters) Summary() (map[string]float64, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, err
	}

	summary := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				summary[family.GetName()] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				summary[family.GetName()] += metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				summary[family.GetName()+"_count"] += float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return summary, nil
}

// Log writes the summary as a single info line.
func (c *Counters) Log(logger *zap.Logger) {
	summary, err := c.Summary()
	if err != nil {
		logger.Warn("failed to gather run counters", zap.Error(err))
		return
	}

	names := make([]string, 0, len(summary))
	for name := range summary {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]zap.Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, zap.Float64(name, summary[name]))
	}
	logger.Info("run summary", fields...)
}
