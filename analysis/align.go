package analysis

import (
	"fmt"
	"sort"
)

// DateSeries maps a YYYY-MM-DD key to a value. Gaps are simply absent keys.
type DateSeries map[string]float64

// Keys returns the series dates in ascending order.
func (s DateSeries) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnionDates is the sorted union of all dates present in any series.
func UnionDates(series ...DateSeries) []string {
	seen := make(map[string]struct{})
	for _, s := range series {
		for k := range s {
			seen[k] = struct{}{}
		}
	}
	axis := make([]string, 0, len(seen))
	for k := range seen {
		axis = append(axis, k)
	}
	sort.Strings(axis)
	return axis
}

// Materialize lays s onto axis, leaving nil where s has no value.
func Materialize(s DateSeries, axis []string) []*float64 {
	out := make([]*float64, len(axis))
	for i, k := range axis {
		if v, ok := s[k]; ok {
			v := v
			out[i] = &v
		}
	}
	return out
}

// Interpolate fills nil positions linearly by index between the nearest known
// neighbours and flat-fills the edges. An all-nil input stays all nil.
func Interpolate(values []*float64) []*float64 {
	out := make([]*float64, len(values))
	copy(out, values)

	for i := range values {
		if values[i] != nil {
			continue
		}
		p := -1
		for j := i - 1; j >= 0; j-- {
			if values[j] != nil {
				p = j
				break
			}
		}
		n := -1
		for j := i + 1; j < len(values); j++ {
			if values[j] != nil {
				n = j
				break
			}
		}

		var v float64
		switch {
		case p >= 0 && n >= 0:
			v = *values[p] + (*values[n]-*values[p])*float64(i-p)/float64(n-p)
		case p >= 0:
			v = *values[p]
		case n >= 0:
			v = *values[n]
		default:
			continue
		}
		out[i] = &v
	}
	return out
}

// Blend interpolates every part onto their shared axis and averages the
// non-nil values per date. Dates with no value at all are omitted.
func Blend(parts []DateSeries) DateSeries {
	axis := UnionDates(parts...)
	filled := make([][]*float64, len(parts))
	for i, p := range parts {
		filled[i] = Interpolate(Materialize(p, axis))
	}

	blended := make(DateSeries, len(axis))
	for i, k := range axis {
		var sum float64
		var n int
		for _, f := range filled {
			if f[i] != nil {
				sum += *f[i]
				n++
			}
		}
		if n > 0 {
			blended[k] = round(sum/float64(n), 2)
		}
	}
	return blended
}

// Entity is one compared line: a single series or several parts to blend.
type Entity struct {
	Label string
	Parts []DateSeries
}

// AlignedSeries is one entity on the shared axis; nil marks an uncovered date.
type AlignedSeries struct {
	Label  string     `json:"label"`
	Values []*float64 `json:"data"`
}

// Comparison is the chart-facing result of Compare.
type Comparison struct {
	Dates  []string        `json:"labels"`
	Series []AlignedSeries `json:"datasets"`
}

// Compare blends multi-part entities and places every entity on one date
// axis. Uncovered dates stay nil; they are not interpolated.
func Compare(entities []Entity) (Comparison, error) {
	if len(entities) == 0 {
		return Comparison{}, fmt.Errorf("at least one entity is required")
	}
	if len(entities) > MaxCompareEntities {
		return Comparison{}, fmt.Errorf("at most %d entities can be compared, got %d", MaxCompareEntities, len(entities))
	}

	lines := make([]DateSeries, len(entities))
	for i, e := range entities {
		switch len(e.Parts) {
		case 0:
			lines[i] = DateSeries{}
		case 1:
			lines[i] = e.Parts[0]
		default:
			lines[i] = Blend(e.Parts)
		}
	}

	axis := UnionDates(lines...)
	cmp := Comparison{Dates: axis, Series: make([]AlignedSeries, len(entities))}
	for i, e := range entities {
		cmp.Series[i] = AlignedSeries{Label: e.Label, Values: Materialize(lines[i], axis)}
	}
	return cmp, nil
}
