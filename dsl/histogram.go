package dsl

import (
	"sort"
)

//HistogramBucket counts the values v with Value/2 < v <= Value
type HistogramBucket struct {
	Value int64
	Count int
}

//Histogram is a power-of-two histogram of millisecond values.
//
//Its Buckets run from half the smallest occupied bucket to double the largest so that the
//empty buckets in between (and on either edge) show up when printed.
type Histogram struct {
	Buckets []HistogramBucket
}

//BucketFor returns the smallest power of two that is >= ms.
//Zero and negative values (clock skew) land in bucket 0.
func BucketFor(ms int64) int64 {
	if ms <= 0 {
		return 0
	}
	bucket := int64(1)
	for bucket < ms {
		bucket *= 2
	}
	return bucket
}

func nextBucket(bucket int64) int64 {
	if bucket == 0 {
		return 1
	}
	return bucket * 2
}

//NewHistogram buckets every duration by its whole-millisecond value
func NewHistogram(durations Durations) Histogram {
	if len(durations) == 0 {
		return Histogram{}
	}

	counts := map[int64]int{}
	for _, duration := range durations {
		counts[BucketFor(duration.Milliseconds())]++
	}

	occupied := make([]int64, 0, len(counts))
	for bucket := range counts {
		occupied = append(occupied, bucket)
	}
	sort.Slice(occupied, func(i, j int) bool { return occupied[i] < occupied[j] })

	low := occupied[0] / 2
	high := nextBucket(occupied[len(occupied)-1])

	histogram := Histogram{}
	for bucket := low; bucket <= high; bucket = nextBucket(bucket) {
		histogram.Buckets = append(histogram.Buckets, HistogramBucket{
			Value: bucket,
			Count: counts[bucket],
		})
	}
	return histogram
}

//Total returns the number of values in the histogram
func (h Histogram) Total() int {
	total := 0
	for _, bucket := range h.Buckets {
		total += bucket.Count
	}
	return total
}

//MaxCount returns the count of the fullest bucket
func (h Histogram) MaxCount() int {
	max := 0
	for _, bucket := range h.Buckets {
		if bucket.Count > max {
			max = bucket.Count
		}
	}
	return max
}
