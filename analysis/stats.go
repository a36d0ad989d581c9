package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary describes a set of values.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// Summarize rounds every statistic to 2 decimals. StdDev is the sample
// standard deviation and stays 0 below two values.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sorted := sortedCopy(values)
	s := Summary{
		Count:  len(sorted),
		Min:    round(sorted[0], 2),
		Max:    round(sorted[len(sorted)-1], 2),
		Mean:   round(stat.Mean(sorted, nil), 2),
		Median: round(median(sorted), 2),
	}
	if len(sorted) > 1 {
		s.StdDev = round(stat.StdDev(sorted, nil), 2)
	}
	return s
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

// median of an already sorted slice; even lengths average the middle pair.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentile of an already sorted slice with linear interpolation between
// closest ranks, p in [0, 100].
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p / 100 * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// percentileRank places v inside population on a 0..100 scale: the smallest
// member ranks 0 and the largest 100. Ties share their mid rank.
func percentileRank(population []float64, v float64) float64 {
	n := len(population)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return 50
	}
	var less, equal int
	for _, x := range population {
		switch {
		case x < v:
			less++
		case x == v:
			equal++
		}
	}
	rank := float64(less)
	if equal > 1 {
		rank += float64(equal-1) / 2
	}
	pct := rank / float64(n-1) * 100
	return round(math.Max(0, math.Min(100, pct)), 1)
}
