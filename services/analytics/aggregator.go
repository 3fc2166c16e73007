package analytics

import (
	"fmt"
	"math"
	"time"

	"timeslice/models"

	"github.com/montanaflynn/stats"
)

// DefaultOutlierThreshold is the z-score above which a point is flagged.
const DefaultOutlierThreshold = 2.0

// trendThreshold is the slope magnitude separating stable from moving series.
const trendThreshold = 0.1

// Record is a timestamped set of named values fed to the aggregator.
type Record struct {
	At     time.Time
	Values map[string]float64
}

// Stats is the reduction of one metric inside one bucket.
type Stats struct {
	Sum     float64 `json:"sum"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Bucket is a fixed-width slice of time with per-metric reductions.
type Bucket struct {
	Start time.Time
	End   time.Time
	Stats map[string]Stats
}

// Label formats the bucket start as a day, or as a timestamp for sub-day buckets.
func (b Bucket) Label() string {
	if b.End.Sub(b.Start) < day {
		return b.Start.UTC().Format("2006-01-02T15:04")
	}
	return b.Start.UTC().Format("2006-01-02")
}

// Value returns the named reduction of a metric ("sum", "count", "average", "min", "max").
func (b Bucket) Value(metric, reduction string) float64 {
	s := b.Stats[metric]
	switch reduction {
	case "count":
		return float64(s.Count)
	case "average":
		return s.Average
	case "min":
		return s.Min
	case "max":
		return s.Max
	}
	return s.Sum
}

// BucketSpec lays out Count buckets of Width ending at End.
type BucketSpec struct {
	Width time.Duration
	Count int
	End   time.Time
}

// Start is the beginning of the earliest bucket. It may precede the requested period start.
func (s BucketSpec) Start() time.Time {
	return s.End.Add(-time.Duration(s.Count) * s.Width)
}

// BucketSpecFor applies the bucket width policy of a time range token.
func BucketSpecFor(token string, end time.Time) (BucketSpec, error) {
	d, ok := rangeDurations[token]
	if !ok {
		return BucketSpec{}, &InvalidRangeError{Reason: fmt.Sprintf("unsupported time range %q", token)}
	}
	width := bucketWidths[token]
	count := int(d / width)
	if d%width != 0 {
		count++
	}
	return BucketSpec{Width: width, Count: count, End: end}, nil
}

// Aggregate distributes records into the buckets of spec and reduces the named metrics.
// Every bucket is returned, zero-filled when empty. Records outside the span are ignored.
func Aggregate(records []Record, spec BucketSpec, metrics ...string) []Bucket {
	start := spec.Start()
	values := make([]map[string][]float64, spec.Count)
	for i := range values {
		values[i] = make(map[string][]float64, len(metrics))
	}

	for _, r := range records {
		if !inRange(r.At, start, spec.End) {
			continue
		}
		idx := int(r.At.Sub(start) / spec.Width)
		if idx >= spec.Count {
			idx = spec.Count - 1
		}
		for _, m := range metrics {
			if v, ok := r.Values[m]; ok {
				values[idx][m] = append(values[idx][m], v)
			}
		}
	}

	buckets := make([]Bucket, spec.Count)
	for i := range buckets {
		bStart := start.Add(time.Duration(i) * spec.Width)
		buckets[i] = Bucket{
			Start: bStart,
			End:   bStart.Add(spec.Width),
			Stats: make(map[string]Stats, len(metrics)),
		}
		for _, m := range metrics {
			buckets[i].Stats[m] = reduce(values[i][m])
		}
	}
	return buckets
}

func reduce(data stats.Float64Data) Stats {
	if len(data) == 0 {
		return Stats{}
	}
	sum, _ := data.Sum()
	mean, _ := data.Mean()
	lo, _ := data.Min()
	hi, _ := data.Max()
	return Stats{Sum: sum, Count: len(data), Average: mean, Min: lo, Max: hi}
}

// Series extracts one reduction of a metric across buckets, in bucket order.
func Series(buckets []Bucket, metric, reduction string) []float64 {
	out := make([]float64, len(buckets))
	for i, b := range buckets {
		out[i] = b.Value(metric, reduction)
	}
	return out
}

// ClassifyTrend fits an ordinary least-squares line through (index, value) and classifies its slope.
func ClassifyTrend(values []float64) models.Trend {
	trend := models.Trend{Direction: models.TrendStable}
	n := len(values)
	if n == 0 {
		return trend
	}
	if values[0] != 0 {
		trend.Change = round2((values[n-1] - values[0]) / values[0] * 100)
	}
	if n < 2 {
		return trend
	}

	xMean := float64(n-1) / 2
	yMean, _ := stats.Mean(values)
	var num, den float64
	for i, y := range values {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	slope := num / den
	trend.Slope = round2(slope)

	switch {
	case slope > trendThreshold:
		trend.Direction = models.TrendIncreasing
	case slope < -trendThreshold:
		trend.Direction = models.TrendDecreasing
	}
	return trend
}

// Outlier is a flagged point of a series.
type Outlier struct {
	Index  int     `json:"index"`
	Value  float64 `json:"value"`
	ZScore float64 `json:"zScore"`
}

// DetectOutliers flags points whose absolute z-score exceeds threshold. A threshold <= 0
// uses DefaultOutlierThreshold. Points are only flagged, never removed.
func DetectOutliers(values []float64, threshold float64) []Outlier {
	if threshold <= 0 {
		threshold = DefaultOutlierThreshold
	}
	if len(values) < 2 {
		return nil
	}
	mean, _ := stats.Mean(values)
	sd, _ := stats.StandardDeviationPopulation(values)
	if sd == 0 {
		return nil
	}

	var out []Outlier
	for i, v := range values {
		z := (v - mean) / sd
		if math.Abs(z) > threshold {
			out = append(out, Outlier{Index: i, Value: v, ZScore: round2(z)})
		}
	}
	return out
}

// Percentile ranks v against population as the share of strictly smaller values.
// An empty population yields 50.
func Percentile(v float64, population []float64) int {
	if len(population) == 0 {
		return 50
	}
	below := 0
	for _, p := range population {
		if p < v {
			below++
		}
	}
	return int(math.Round(100 * float64(below) / float64(len(population))))
}

// CalculateChange returns the rounded percentage change from previous to current.
// A zero previous value yields 100 when current is positive and 0 otherwise.
func CalculateChange(current, previous float64) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round((current - previous) / math.Abs(previous) * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}
