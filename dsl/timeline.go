package dsl

import (
	"container/heap"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

//ErrNoSuchRequest is returned when a timeline is requested for a request with no completed spans
var ErrNoSuchRequest = errors.New("no spans recorded for request")

const timelineTimeFormat = "2006-01-02T15:04:05.000Z07:00"

//TimelineMark says whether a TimelineLine opens or closes a span
type TimelineMark int

const (
	MarkStart TimelineMark = iota
	MarkEnd
)

func (m TimelineMark) String() string {
	if m == MarkEnd {
		return "END"
	}
	return "START"
}

//TimelineLine is one printed line of a Timeline
type TimelineLine struct {
	Mark    TimelineMark
	At      time.Time
	Offset  time.Duration
	Depth   int
	Label   string
	Elapsed time.Duration
}

//Timeline is the chronological start/end trace of a single request.
//Nesting is reconstructed purely from interval containment: a span that starts before an open span ends is its child.
type Timeline struct {
	RequestID string
	Lines     []TimelineLine
}

//TimelineFor builds the Timeline of requestID out of requests (see Correlator.Requests)
func TimelineFor(requests *GroupedSpans, requestID string) (Timeline, error) {
	spans, ok := requests.Lookup(requestID)
	if !ok || len(spans) == 0 {
		return Timeline{}, fmt.Errorf("%w: %s", ErrNoSuchRequest, requestID)
	}
	return NewTimeline(requestID, spans), nil
}

//NewTimeline lays out spans.
//
//Spans are visited by start time (shorter identities first on ties).  Before a span is started every open span that
//ended at or before its start is closed, earliest end first.  Repeated identities are numbered [2], [3], ... from their
//second start on.
func NewTimeline(requestID string, spans Spans) Timeline {
	timeline := Timeline{RequestID: requestID}
	if len(spans) == 0 {
		return timeline
	}

	sorted := spans.SortedByStart()
	zero := sorted[0].Start
	occurrences := map[string]int{}
	open := &openSpans{}
	depth := 0

	closeSpan := func() {
		o := heap.Pop(open).(openSpan)
		depth--
		timeline.Lines = append(timeline.Lines, TimelineLine{
			Mark:    MarkEnd,
			At:      o.end,
			Offset:  o.end.Sub(zero),
			Depth:   depth,
			Label:   o.label,
			Elapsed: o.span.Elapsed,
		})
	}

	for i, span := range sorted {
		for open.Len() > 0 && !(*open)[0].end.After(span.Start) {
			closeSpan()
		}

		occurrences[span.Identity]++
		label := span.Identity
		if n := occurrences[span.Identity]; n > 1 {
			label = fmt.Sprintf("%s[%d]", span.Identity, n)
		}

		timeline.Lines = append(timeline.Lines, TimelineLine{
			Mark:   MarkStart,
			At:     span.Start,
			Offset: span.Start.Sub(zero),
			Depth:  depth,
			Label:  label,
		})
		heap.Push(open, openSpan{end: span.End(), span: span, label: label, seq: i})
		depth++
	}

	for open.Len() > 0 {
		closeSpan()
	}

	return timeline
}

//BeginsAt returns the time of the first line
func (t Timeline) BeginsAt() time.Time {
	if len(t.Lines) == 0 {
		return time.Time{}
	}
	return t.Lines[0].At
}

//EndsAt returns the latest time on the timeline
func (t Timeline) EndsAt() time.Time {
	var end time.Time
	for _, line := range t.Lines {
		if line.At.After(end) {
			end = line.At
		}
	}
	return end
}

//WriteTo prints the timeline, one line per start and end.
//The first line carries the absolute time, every other line its offset from the first.
func (t Timeline) WriteTo(w io.Writer) (int64, error) {
	b := &strings.Builder{}
	for i, line := range t.Lines {
		when := fmt.Sprintf("%+dms", line.Offset.Milliseconds())
		if i == 0 {
			when = line.At.UTC().Format(timelineTimeFormat)
		}
		fmt.Fprintf(b, "%-24s %s%-5s %s", when, strings.Repeat("  ", line.Depth), line.Mark, line.Label)
		if line.Mark == MarkEnd {
			fmt.Fprintf(b, " %dms", line.Elapsed.Milliseconds())
		}
		b.WriteString("\n")
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

type openSpan struct {
	end   time.Time
	span  Span
	label string
	seq   int
}

//openSpans is a min-heap ordered by end time; ties close the longer identity first, then the span started first
type openSpans []openSpan

func (o openSpans) Len() int { return len(o) }

func (o openSpans) Less(i, j int) bool {
	if !o[i].end.Equal(o[j].end) {
		return o[i].end.Before(o[j].end)
	}
	if len(o[i].span.Identity) != len(o[j].span.Identity) {
		return len(o[i].span.Identity) > len(o[j].span.Identity)
	}
	return o[i].seq < o[j].seq
}

func (o openSpans) Swap(i, j int) { o[i], o[j] = o[j], o[i] }

func (o *openSpans) Push(x interface{}) {
	*o = append(*o, x.(openSpan))
}

func (o *openSpans) Pop() interface{} {
	old := *o
	n := len(old)
	item := old[n-1]
	*o = old[:n-1]
	return item
}
