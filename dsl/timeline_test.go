package dsl

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type markedLine struct {
	Mark  TimelineMark
	Depth int
	Label string
}

func marks(timeline Timeline) []markedLine {
	lines := []markedLine{}
	for _, line := range timeline.Lines {
		lines = append(lines, markedLine{line.Mark, line.Depth, line.Label})
	}
	return lines
}

func TestNewTimelineNestsContainedSpans(t *testing.T) {
	timeline := NewTimeline("req-1", Spans{
		span("req-1", "moray.getobject", 10, 20),
		span("req-1", "vmapi.getvm", 0, 100),
	})

	assert.Equal(t, []markedLine{
		{MarkStart, 0, "vmapi.getvm"},
		{MarkStart, 1, "moray.getobject"},
		{MarkEnd, 1, "moray.getobject"},
		{MarkEnd, 0, "vmapi.getvm"},
	}, marks(timeline))

	assert.Equal(t, 30*time.Millisecond, timeline.Lines[2].Offset)
	assert.Equal(t, 20*time.Millisecond, timeline.Lines[2].Elapsed)
	assert.True(t, timeline.BeginsAt().Equal(at(0)))
	assert.True(t, timeline.EndsAt().Equal(at(100)))
}

func TestNewTimelineNumbersRepeatedIdentities(t *testing.T) {
	timeline := NewTimeline("req-1", Spans{
		span("req-1", "moray.getobject", 0, 10),
		span("req-1", "moray.getobject", 20, 10),
		span("req-1", "moray.getobject", 40, 10),
	})

	assert.Equal(t, []markedLine{
		{MarkStart, 0, "moray.getobject"},
		{MarkEnd, 0, "moray.getobject"},
		{MarkStart, 0, "moray.getobject[2]"},
		{MarkEnd, 0, "moray.getobject[2]"},
		{MarkStart, 0, "moray.getobject[3]"},
		{MarkEnd, 0, "moray.getobject[3]"},
	}, marks(timeline))
}

func TestNewTimelineClosesBeforeAnAbuttingStart(t *testing.T) {
	timeline := NewTimeline("req-1", Spans{
		span("req-1", "vmapi.getvm", 0, 10),
		span("req-1", "vmapi.audit", 10, 5),
	})

	assert.Equal(t, []markedLine{
		{MarkStart, 0, "vmapi.getvm"},
		{MarkEnd, 0, "vmapi.getvm"},
		{MarkStart, 0, "vmapi.audit"},
		{MarkEnd, 0, "vmapi.audit"},
	}, marks(timeline))
}

func TestNewTimelineClosesTheLongerIdentityFirstOnTies(t *testing.T) {
	timeline := NewTimeline("req-1", Spans{
		span("req-1", "vmapi.getvm", 0, 50),
		span("req-1", "vmapi.getvm.load", 10, 40),
	})

	assert.Equal(t, []markedLine{
		{MarkStart, 0, "vmapi.getvm"},
		{MarkStart, 1, "vmapi.getvm.load"},
		{MarkEnd, 1, "vmapi.getvm.load"},
		{MarkEnd, 0, "vmapi.getvm"},
	}, marks(timeline))
}

func TestTimelineFor(t *testing.T) {
	groups := requests(span("req-1", "vmapi.getvm", 0, 100))

	timeline, err := TimelineFor(groups, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", timeline.RequestID)
	assert.Len(t, timeline.Lines, 2)

	_, err = TimelineFor(groups, "req-404")
	assert.True(t, errors.Is(err, ErrNoSuchRequest))
	assert.Contains(t, err.Error(), "req-404")
}

func TestTimelineWriteTo(t *testing.T) {
	timeline := NewTimeline("req-1", Spans{
		span("req-1", "vmapi.getvm", 0, 100),
		span("req-1", "moray.getobject", 10, 20),
	})

	expected := fmt.Sprintf("%-24s %s\n", "2014-05-01T00:00:00.000Z", "START vmapi.getvm") +
		fmt.Sprintf("%-24s %s\n", "+10ms", "  START moray.getobject") +
		fmt.Sprintf("%-24s %s\n", "+30ms", "  END   moray.getobject 20ms") +
		fmt.Sprintf("%-24s %s\n", "+100ms", "END   vmapi.getvm 100ms")

	out := &bytes.Buffer{}
	n, err := timeline.WriteTo(out)
	require.NoError(t, err)
	assert.Equal(t, int64(out.Len()), n)
	assert.Equal(t, expected, out.String())
}

func TestTimelineWriteToSignsNegativeOffsets(t *testing.T) {
	timeline := NewTimeline("req-1", Spans{
		span("req-1", "vmapi.getvm", 0, 100),
		span("req-1", "cnapi.ping", 20, -30),
	})

	out := &bytes.Buffer{}
	_, err := timeline.WriteTo(out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), fmt.Sprintf("%-24s %s\n", "-10ms", "  END   cnapi.ping -30ms"))
	assert.NotContains(t, out.String(), "+-")
}

func TestNewTimelineDepthCountsOpenSpans(t *testing.T) {
	timeline := NewTimeline("req-1", Spans{
		span("req-1", "a", 0, 50),
		span("req-1", "b", 10, 90),
		span("req-1", "c", 60, 10),
	})

	assert.Equal(t, []markedLine{
		{MarkStart, 0, "a"},
		{MarkStart, 1, "b"},
		{MarkEnd, 1, "a"},
		{MarkStart, 1, "c"},
		{MarkEnd, 1, "c"},
		{MarkEnd, 0, "b"},
	}, marks(timeline), "overlapping spans that do not nest close at the depth left by the spans still open")
}
