package dsl

import (
	"time"
)

//Stats bundles up statistics extracted from a collection of Durations
type Stats struct {
	Name      string
	N         int
	Min       time.Duration
	Max       time.Duration
	MeanMs    float64
	Median    time.Duration
	Histogram Histogram
}

//NewStats summarises durations under the passed in name
func NewStats(name string, durations Durations) Stats {
	return Stats{
		Name:      name,
		N:         len(durations),
		Min:       durations.Min(),
		Max:       durations.Max(),
		MeanMs:    durations.MeanMs(),
		Median:    durations.Median(),
		Histogram: durations.Histogram(),
	}
}

//StatsSlice is a collection of Stats
type StatsSlice []Stats
