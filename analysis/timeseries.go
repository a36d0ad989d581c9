package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/viktsys/woolauction/models"
)

type Granularity string

const (
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Weekly, Monthly:
		return g, nil
	case "":
		return Weekly, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// PeriodStart returns the Monday of t's week or the first of its month.
func (g Granularity) PeriodStart(t time.Time) time.Time {
	if g == Monthly {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return weekStart(t)
}

// LabeledSeries is one variable over periods.
type LabeledSeries struct {
	Variable Variable  `json:"variable"`
	Labels   []string  `json:"labels"`
	Values   []float64 `json:"data"`
}

// TimeSeries buckets lots into periods and produces one series per variable.
// Price uses the robust weighted aggregation, bales and kg are summed and the
// remaining attributes are bales-weighted means.
func TimeSeries(lots []models.Lot, vars []Variable, g Granularity) []LabeledSeries {
	period := func(l models.Lot) string { return dateKey(g.PeriodStart(l.SaleDate)) }

	out := make([]LabeledSeries, 0, len(vars))
	for _, v := range vars {
		var groups []GroupValue
		switch v {
		case VarPrice:
			groups = AggregateWeighted(observe(lots, period)).Groups
		case VarBales, VarKg:
			groups = reduce(lots, v, period, false)
		default:
			groups = reduce(lots, v, period, true)
		}

		s := LabeledSeries{Variable: v, Labels: make([]string, len(groups)), Values: make([]float64, len(groups))}
		for i, gv := range groups {
			s.Labels[i] = gv.Key
			s.Values[i] = gv.Value
		}
		out = append(out, s)
	}
	return out
}

// reduce sums v per period, or averages it weighted by bales.
func reduce(lots []models.Lot, v Variable, period func(models.Lot) string, weighted bool) []GroupValue {
	type acc struct {
		sum, weight float64
		n           int
	}
	groups := make(map[string]*acc)
	for _, l := range lots {
		if l.SaleDate.IsZero() {
			continue
		}
		x, ok := v.Value(l)
		if !ok {
			continue
		}
		w := 1.0
		if weighted {
			if l.Bales == nil || *l.Bales <= 0 {
				continue
			}
			w = *l.Bales
		}
		k := period(l)
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		a.sum += x * w
		a.weight += w
		a.n++
	}

	out := make([]GroupValue, 0, len(groups))
	for k, a := range groups {
		value := a.sum
		if weighted {
			value = a.sum / a.weight
		}
		out = append(out, GroupValue{Key: k, Value: round(value, 2), Count: a.n, Total: a.n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
