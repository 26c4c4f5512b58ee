package dsl

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requests(spans ...Span) *GroupedSpans {
	groups := NewGroupedSpans()
	for _, s := range spans {
		groups.Append(s.RequestID, s)
	}
	return groups
}

func entryFor(t *testing.T, report *Report, identity string) *ReportEntry {
	t.Helper()
	for _, entry := range report.Entries {
		if entry.Identity == identity {
			return entry
		}
	}
	require.Failf(t, "missing report entry", "no entry for %s", identity)
	return nil
}

func vmapiRequests() *GroupedSpans {
	return requests(
		span("req-1", "vmapi.getvm", 0, 100),
		span("req-1", "moray.getobject", 10, 20),
		span("req-1", "moray.getobject", 40, 30),
		span("req-1", "vmapi.audit", 150, 5),
		span("req-2", "vmapi.getvm", 0, 50),
	)
}

func TestBuildReport(t *testing.T) {
	report := BuildReport(vmapiRequests(), ReportOptions{})

	require.Len(t, report.Entries, 1)
	entry := entryFor(t, report, "vmapi.getvm")
	assert.Equal(t, 2, entry.Count)
	assert.Equal(t, 50*time.Millisecond, entry.Min)
	assert.Equal(t, 100*time.Millisecond, entry.Max)

	assert.Equal(t, []string{"vmapi.getvm", "moray.getobject", "vmapi.audit"}, entry.ChildOrder)
	assert.Equal(t, ms(100, 50), entry.Children["vmapi.getvm"])
	assert.Equal(t, ms(50), entry.Children["moray.getobject"], "children are summed per request")

	names := []string{}
	for _, stats := range entry.ChildStats(0) {
		names = append(names, stats.Name)
	}
	assert.Equal(t, []string{"vmapi.getvm", "moray.getobject", "vmapi.audit"}, names)

	assert.Equal(t, map[string]map[string]int64{"req-1": {"vmapi.audit": 50}}, report.Late)
	assert.Empty(t, report.Insane)
}

func TestBuildReportTopLevelIsTheEarliestStart(t *testing.T) {
	report := BuildReport(requests(
		span("req-1", "vmapi.getvm.load", 0, 10),
		span("req-1", "vmapi", 0, 100),
		span("req-1", "vmapi.getvm", 0, 90),
	), ReportOptions{})

	require.Len(t, report.Entries, 1)
	assert.Equal(t, "vmapi", report.Entries[0].Identity)
}

func TestBuildReportMinDuration(t *testing.T) {
	report := BuildReport(vmapiRequests(), ReportOptions{MinDuration: 100 * time.Millisecond})

	entry := entryFor(t, report, "vmapi.getvm")
	assert.Equal(t, 1, entry.Count, "the 50ms request is dropped")
	assert.Equal(t, 100*time.Millisecond, entry.Min)

	stats := entry.ChildStats(report.Options.MinDuration)
	require.Len(t, stats, 1, "children slower than the cutoff are hidden")
	assert.Equal(t, "vmapi.getvm", stats[0].Name)
}

func TestBuildReportIdentityFilter(t *testing.T) {
	report := BuildReport(vmapiRequests(), ReportOptions{IdentityFilter: regexp.MustCompile(`^cnapi\.`)})
	assert.Empty(t, report.Entries)

	report = BuildReport(vmapiRequests(), ReportOptions{IdentityFilter: regexp.MustCompile(`getvm`)})
	assert.Len(t, report.Entries, 1)
}

func TestBuildReportFlagsInsaneRequests(t *testing.T) {
	spans := []Span{span("req-3", "muskie.putobject", 0, 1000)}
	for i := 0; i < 150; i++ {
		spans = append(spans, span("req-3", "moray.putobject", i+1, 1))
	}
	spans = append(spans, span("req-4", "muskie.putobject", 0, 10))
	for i := 0; i < InsaneThreshold; i++ {
		spans = append(spans, span("req-4", "moray.putobject", 1, 1))
	}

	report := BuildReport(requests(spans...), ReportOptions{})

	assert.Equal(t, map[string]map[string]int{"req-3": {"moray.putobject": 150}}, report.Insane)
	entry := entryFor(t, report, "muskie.putobject")
	assert.Equal(t, ms(150, 100), entry.Children["moray.putobject"])
}

func TestBuildReportKeepsTheLatestLateStart(t *testing.T) {
	report := BuildReport(requests(
		span("req-1", "vmapi.getvm", 0, 100),
		span("req-1", "vmapi.audit", 120, 1),
		span("req-1", "vmapi.audit", 170, 1),
		span("req-1", "vmapi.notify", 100, 1),
	), ReportOptions{})

	assert.Equal(t, map[string]map[string]int64{"req-1": {"vmapi.audit": 70}}, report.Late)
}

func TestReportWriteTo(t *testing.T) {
	report := BuildReport(vmapiRequests(), ReportOptions{})

	out := &bytes.Buffer{}
	n, err := report.WriteTo(out)
	require.NoError(t, err)
	assert.Equal(t, int64(out.Len()), n)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "vmapi.getvm  requests=2 min=50ms max=100ms\n"))
	assert.Contains(t, text, "  vmapi.getvm  n=2 mean=75.00ms median=100ms max=100ms\n")
	assert.Contains(t, text, "  moray.getobject  n=1 mean=50.00ms median=50ms max=50ms\n")
	assert.Contains(t, text, fmt.Sprintf("  %16d |%-40s %d\n", 64, strings.Repeat("@", 20), 1))
	assert.Contains(t, text, fmt.Sprintf("  %16d |%-40s %d\n", 256, "", 0))
	assert.NotContains(t, text, "Insane Requests:")
	assert.Contains(t, text, "Late Requests:\n  req-1:\n")
	assert.Contains(t, text, "vmapi.audit: 50\n")
}

func TestEmptyReport(t *testing.T) {
	report := BuildReport(NewGroupedSpans(), ReportOptions{})

	out := &bytes.Buffer{}
	_, err := report.WriteTo(out)
	require.NoError(t, err)
	assert.Empty(t, out.String())
}
