package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSummary(t *testing.T) {
	c := New()
	c.RecordsRead.Add(3)
	c.Events.WithLabelValues("begin").Inc()
	c.Events.WithLabelValues("end").Add(2)
	c.OpenBegins.Set(4)
	c.SpanDuration.Observe(0.25)
	c.SpanDuration.Observe(1)

	summary, err := c.Summary()
	require.NoError(t, err)

	assert.Equal(t, float64(3), summary["rendezvous_records_read_total"])
	assert.Equal(t, float64(3), summary["rendezvous_events_total"], "phases are summed")
	assert.Equal(t, float64(4), summary["rendezvous_open_begins"])
	assert.Equal(t, float64(2), summary["rendezvous_span_duration_seconds_count"])
	assert.Equal(t, float64(0), summary["rendezvous_spans_total"])
}

func TestCountersArePrivate(t *testing.T) {
	first, second := New(), New()
	first.Spans.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(first.Spans))
	assert.Equal(t, float64(0), testutil.ToFloat64(second.Spans))
	assert.Equal(t, 1, testutil.CollectAndCount(first.Spans))
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := New()
	c.RecordsSkipped.Inc()

	c.Log(zap.New(core))

	entries := logs.FilterMessage("run summary").All()
	require.Len(t, entries, 1)
	assert.Equal(t, float64(1), entries[0].ContextMap()["rendezvous_records_skipped_total"])
}
