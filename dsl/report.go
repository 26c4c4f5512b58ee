package dsl

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//InsaneThreshold is the number of times one identity may occur within a single request before the request is flagged
const InsaneThreshold = 100

const distributionWidth = 40

//ReportOptions restrict which requests make it into a Report
type ReportOptions struct {
	//MinDuration drops requests whose top-level span is faster; zero keeps everything
	MinDuration time.Duration
	//IdentityFilter drops requests whose top-level identity does not match; nil keeps everything
	IdentityFilter *regexp.Regexp
}

//ReportEntry accumulates every request whose top-level span shares one identity
type ReportEntry struct {
	Identity string
	Count    int
	Min      time.Duration
	Max      time.Duration

	//ChildOrder lists child identities in the order they were first seen
	ChildOrder []string
	//Children holds one total per request for each identity seen under this top-level identity (the top-level identity included)
	Children map[string]Durations
}

func newReportEntry(identity string) *ReportEntry {
	return &ReportEntry{
		Identity: identity,
		Children: map[string]Durations{},
	}
}

func (e *ReportEntry) add(top Span, byIdentity *GroupedSpans) {
	if e.Count == 0 || top.Elapsed < e.Min {
		e.Min = top.Elapsed
	}
	if e.Count == 0 || top.Elapsed > e.Max {
		e.Max = top.Elapsed
	}
	e.Count++

	byIdentity.EachGroup(func(key interface{}, spans Spans) error {
		identity := key.(string)
		if _, seen := e.Children[identity]; !seen {
			e.ChildOrder = append(e.ChildOrder, identity)
		}
		e.Children[identity] = append(e.Children[identity], spans.Durations().Total())
		return nil
	})
}

//ChildStats returns Stats for every child identity, slowest (by max) first.
//Children whose max is below minDuration are left out when minDuration is non-zero.
func (e *ReportEntry) ChildStats(minDuration time.Duration) StatsSlice {
	stats := StatsSlice{}
	for _, identity := range e.ChildOrder {
		s := NewStats(identity, e.Children[identity])
		if minDuration > 0 && s.Max < minDuration {
			continue
		}
		stats = append(stats, s)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Max > stats[j].Max
	})
	return stats
}

//Report is the aggregate view of every request, keyed by top-level identity
type Report struct {
	Options ReportOptions
	Entries []*ReportEntry

	//Insane maps request id -> identity -> occurrences, for identities that occurred more than InsaneThreshold times in that request
	Insane map[string]map[string]int
	//Late maps request id -> identity -> milliseconds the identity started after its request's top-level span should have finished
	Late map[string]map[string]int64

	accepts Matcher
	lookup  map[string]*ReportEntry
}

//BuildReport folds every request in requests (see Correlator.Requests) into a Report
func BuildReport(requests *GroupedSpans, options ReportOptions) *Report {
	report := &Report{
		Options: options,
		Insane:  map[string]map[string]int{},
		Late:    map[string]map[string]int64{},
		accepts: And(MatchMinDuration(options.MinDuration), MatchIdentity(options.IdentityFilter)),
		lookup:  map[string]*ReportEntry{},
	}

	requests.EachGroup(func(key interface{}, spans Spans) error {
		report.fold(fmt.Sprint(key), spans)
		return nil
	})

	return report
}

func (r *Report) fold(requestID string, spans Spans) {
	if len(spans) == 0 {
		return
	}

	sorted := spans.SortedByStart()
	top := sorted[0]
	if !r.accepts.Match(top) {
		return
	}

	expectedFinish := top.End()
	byIdentity := sorted.GroupBy(GetIdentity)

	byIdentity.EachGroup(func(key interface{}, spans Spans) error {
		identity := key.(string)
		if len(spans) > InsaneThreshold {
			if r.Insane[requestID] == nil {
				r.Insane[requestID] = map[string]int{}
			}
			r.Insane[requestID][identity] = len(spans)
		}
		for _, span := range spans {
			if span.Start.After(expectedFinish) {
				r.markLate(requestID, identity, span.Start.Sub(expectedFinish))
			}
		}
		return nil
	})

	entry, ok := r.lookup[top.Identity]
	if !ok {
		entry = newReportEntry(top.Identity)
		r.lookup[top.Identity] = entry
		r.Entries = append(r.Entries, entry)
	}
	entry.add(top, byIdentity)
}

func (r *Report) markLate(requestID string, identity string, by time.Duration) {
	if r.Late[requestID] == nil {
		r.Late[requestID] = map[string]int64{}
	}
	ms := by.Milliseconds()
	if previous, ok := r.Late[requestID][identity]; !ok || ms > previous {
		r.Late[requestID][identity] = ms
	}
}

//WriteTo prints the report: one section per top-level identity, then the insane and late requests (as YAML) if there were any
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	b := &strings.Builder{}

	for _, entry := range r.Entries {
		fmt.Fprintf(b, "%s  requests=%d min=%dms max=%dms\n", entry.Identity, entry.Count, entry.Min.Milliseconds(), entry.Max.Milliseconds())
		for _, stats := range entry.ChildStats(r.Options.MinDuration) {
			fmt.Fprintf(b, "\n  %s  n=%d mean=%.2fms median=%dms max=%dms\n", stats.Name, stats.N, stats.MeanMs, stats.Median.Milliseconds(), stats.Max.Milliseconds())
			writeDistribution(b, stats.Histogram)
		}
		b.WriteString("\n")
	}

	if err := writeAnomalies(b, "Insane Requests", r.Insane); err != nil {
		return 0, err
	}
	if err := writeAnomalies(b, "Late Requests", r.Late); err != nil {
		return 0, err
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func writeDistribution(b *strings.Builder, histogram Histogram) {
	total := histogram.Total()
	fmt.Fprintf(b, "  %16s  %s %s %s count\n", "value", strings.Repeat("-", 13), "Distribution", strings.Repeat("-", 13))
	for _, bucket := range histogram.Buckets {
		bar := 0
		if total > 0 {
			bar = (bucket.Count*distributionWidth + total/2) / total
		}
		fmt.Fprintf(b, "  %16d |%-*s %d\n", bucket.Value, distributionWidth, strings.Repeat("@", bar), bucket.Count)
	}
}

func writeAnomalies(b *strings.Builder, title string, anomalies interface{}) error {
	empty := false
	switch a := anomalies.(type) {
	case map[string]map[string]int:
		empty = len(a) == 0
	case map[string]map[string]int64:
		empty = len(a) == 0
	}
	if empty {
		return nil
	}

	out, err := yaml.Marshal(anomalies)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", strings.ToLower(title), err)
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		fmt.Fprintf(b, "  %s\n", line)
	}
	b.WriteString("\n")
	return nil
}
