package dsl

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

//Durations wraps []time.Duration and adds a number of convenience methods
type Durations []time.Duration

//Min returns the smallest duration in the list
func (d Durations) Min() time.Duration {
	min := time.Duration(math.MaxInt64)
	for _, duration := range d {
		if duration < min {
			min = duration
		}
	}

	return min
}

//Max returns the largest duration in the list
func (d Durations) Max() time.Duration {
	max := time.Duration(math.MinInt64)
	for _, duration := range d {
		if duration > max {
			max = duration
		}
	}

	return max
}

//Total returns the sum of the durations
func (d Durations) Total() time.Duration {
	var total time.Duration
	for _, duration := range d {
		total += duration
	}
	return total
}

//Milliseconds returns every duration as (fractional) milliseconds
func (d Durations) Milliseconds() []float64 {
	ms := make([]float64, len(d))
	for i, duration := range d {
		ms[i] = float64(duration) / float64(time.Millisecond)
	}
	return ms
}

//MeanMs returns sum/count in milliseconds.  An empty list has a mean of 0.
func (d Durations) MeanMs() float64 {
	if len(d) == 0 {
		return 0
	}
	return stat.Mean(d.Milliseconds(), nil)
}

//Median returns the value at index floor((n+1)/2) of the sorted durations.
//
//This is one past the conventional median for odd n ([10 20 30] yields 30) and is kept that way so reports stay comparable with older runs.
//The index is clamped to the last element, so a single value is its own median.
func (d Durations) Median() time.Duration {
	if len(d) == 0 {
		return 0
	}
	sorted := d.Sorted()
	index := (len(sorted) + 1) / 2
	if index > len(sorted)-1 {
		index = len(sorted) - 1
	}
	return sorted[index]
}

//Sorted returns an ascending copy
func (d Durations) Sorted() Durations {
	sorted := make(Durations, len(d))
	copy(sorted, d)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

//Histogram buckets the durations (in whole milliseconds) by powers of two
func (d Durations) Histogram() Histogram {
	return NewHistogram(d)
}
