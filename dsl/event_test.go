package dsl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveIdentity(t *testing.T) {
	tests := []struct {
		name      string
		module    string
		operation string
		stack     string
		want      string
	}{
		{"operation equals module", "vmapi", "vmapi", "", "vmapi"},
		{"operation already qualified", "vmapi", "vmapi.getvm", "", "vmapi.getvm"},
		{"bare operation", "vmapi", "getvm", "", "vmapi.getvm"},
		{"call stack wins", "vmapi", "getvm", "vmapi.getvm.loadVm", "vmapi.getvm.loadVm"},
		{"operation prefixed by its module", "vmapi", "vmapiGetVm", "", "vmapiGetVm"},
		{"no module", "", "getvm", "", "getvm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveIdentity(tt.module, tt.operation, tt.stack))
		})
	}
}

func TestNewEvent(t *testing.T) {
	t.Run("bunyan-style record", func(t *testing.T) {
		record := Record{
			"name":     "vmapi",
			"hostname": "headnode",
			"time":     "2014-05-01T00:00:00.250Z",
			"req_id":   "req-1",
			"evt":      map[string]interface{}{"ph": "b", "name": "getvm"},
		}

		event, ok := NewEvent(record)
		require.True(t, ok)
		assert.Equal(t, "vmapi.getvm", event.Identity)
		assert.Equal(t, "req-1", event.RequestID)
		assert.Equal(t, "headnode", event.Hostname)
		assert.Equal(t, Begin, event.Phase)
		assert.Empty(t, event.Occurrence)
		assert.True(t, event.Timestamp.Equal(time.Date(2014, 5, 1, 0, 0, 0, 250*int(time.Millisecond), time.UTC)))
	})

	t.Run("request id inside evt.args wins", func(t *testing.T) {
		record := Record{
			"name":   "vmapi",
			"time":   "2014-05-01T00:00:00Z",
			"req_id": "outer",
			"evt":    map[string]interface{}{"ph": "end", "name": "getvm", "args": map[string]interface{}{"req_id": "inner"}},
		}

		event, ok := NewEvent(record)
		require.True(t, ok)
		assert.Equal(t, "inner", event.RequestID)
		assert.Equal(t, End, event.Phase)
	})

	t.Run("numeric occurrence ids are kept", func(t *testing.T) {
		record := Record{
			"name":   "vmapi",
			"time":   float64(1398902400.5),
			"req_id": "req-1",
			"evt":    map[string]interface{}{"ph": "b", "name": "getvm", "id": float64(12)},
		}

		event, ok := NewEvent(record)
		require.True(t, ok)
		assert.Equal(t, "12", event.Occurrence)
		assert.Equal(t, int64(1398902400500), event.Timestamp.UnixMilli())
		assert.Equal(t, "vmapi.getvm", event.Identity, "the occurrence is not part of the identity")
		assert.Equal(t, "12", event.Signature().Occurrence)
	})

	t.Run("time.Time values from lager are accepted", func(t *testing.T) {
		now := time.Now()
		record := Record{
			"name":   "rep",
			"time":   now,
			"req_id": "req-1",
			"evt":    map[string]interface{}{"ph": "e", "name": "rep.auction"},
		}

		event, ok := NewEvent(record)
		require.True(t, ok)
		assert.Equal(t, "rep.auction", event.Identity)
		assert.True(t, event.Timestamp.Equal(now))
	})

	skipped := map[string]Record{
		"no evt":         {"name": "vmapi", "time": "2014-05-01T00:00:00Z", "req_id": "req-1"},
		"unknown phase":  {"name": "vmapi", "time": "2014-05-01T00:00:00Z", "req_id": "req-1", "evt": map[string]interface{}{"ph": "i", "name": "getvm"}},
		"no request id":  {"name": "vmapi", "time": "2014-05-01T00:00:00Z", "evt": map[string]interface{}{"ph": "b", "name": "getvm"}},
		"bad time":       {"name": "vmapi", "time": "yesterday", "req_id": "req-1", "evt": map[string]interface{}{"ph": "b", "name": "getvm"}},
		"evt not object": {"name": "vmapi", "time": "2014-05-01T00:00:00Z", "req_id": "req-1", "evt": "begin"},
		"unnamed":        {"time": "2014-05-01T00:00:00Z", "req_id": "req-1", "evt": map[string]interface{}{"ph": "b"}},
	}
	for name, record := range skipped {
		t.Run("skips "+name, func(t *testing.T) {
			_, ok := NewEvent(record)
			assert.False(t, ok)
		})
	}
}

func TestRecordGet(t *testing.T) {
	record := Record{
		"evt": map[string]interface{}{
			"args": map[string]interface{}{"req_id": "abc"},
		},
		"nested": Record{"key": "value"},
	}

	v, ok := record.Get("evt.args.req_id")
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	v, ok = record.Get("nested.key")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	_, ok = record.Get("evt.args.missing")
	assert.False(t, ok)

	_, ok = record.Get("evt.args.req_id.deeper")
	assert.False(t, ok)
}
