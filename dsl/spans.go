package dsl

import (
	"sort"
)

//Spans is a list of individual Span(s)
type Spans []Span

//GroupBy groups all Spans by the passed in Getter and returns a GroupedSpans object
//The values returned by the Getter correspond to the Keys in the returned GroupedSpans object
func (s Spans) GroupBy(getter Getter) *GroupedSpans {
	groups := NewGroupedSpans()

	for _, span := range s {
		key, ok := getter.Get(span)
		if !ok {
			continue
		}
		groups.Append(key, span)
	}

	return groups
}

//Durations returns the elapsed time of every Span
func (s Spans) Durations() Durations {
	durations := Durations{}
	for _, span := range s {
		durations = append(durations, span.Elapsed)
	}
	return durations
}

//SortedByStart returns a copy of the Spans ordered by start time.
//Spans that start together are ordered by identity length, shortest first, so that a parent precedes the children it starts in the same millisecond.
func (s Spans) SortedByStart() Spans {
	sorted := make(Spans, len(s))
	copy(sorted, s)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return len(sorted[i].Identity) < len(sorted[j].Identity)
	})
	return sorted
}
