package analysis

import (
	"sort"

	"github.com/viktsys/woolauction/models"
)

// Observation is a lot reduced to what robust aggregation needs. Price is in cents.
type Observation struct {
	Key   string
	Price float64
	Bales float64
}

// GroupValue is one aggregated group. Value is in currency units, Count is the
// number of observations that survived outlier rejection and Total the number
// that entered the group.
type GroupValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
	Total int     `json:"total"`
}

// Aggregation holds per-group results ordered by key plus a summary over all
// surviving prices.
type Aggregation struct {
	Groups []GroupValue
	Stats  Summary
}

// Series returns the groups as a date-keyed series.
func (a Aggregation) Series() DateSeries {
	s := make(DateSeries, len(a.Groups))
	for _, g := range a.Groups {
		s[g.Key] = g.Value
	}
	return s
}

// ByDate keys lots on their sale date.
func ByDate(lots []models.Lot) []Observation {
	return observe(lots, func(l models.Lot) string { return dateKey(l.SaleDate) })
}

func observe(lots []models.Lot, key func(models.Lot) string) []Observation {
	obs := make([]Observation, 0, len(lots))
	for _, l := range lots {
		if l.SaleDate.IsZero() || l.Price <= 0 || l.Bales == nil {
			continue
		}
		obs = append(obs, Observation{Key: key(l), Price: float64(l.Price), Bales: *l.Bales})
	}
	return obs
}

// AggregateWeighted computes a median-banded, bales-weighted average price per
// group. Empty input gives an empty Aggregation.
func AggregateWeighted(obs []Observation) Aggregation {
	groups := make(map[string][]Observation)
	for _, o := range obs {
		if o.Price <= 0 || o.Bales <= 0 {
			continue
		}
		groups[o.Key] = append(groups[o.Key], o)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		agg       Aggregation
		surviving []float64
	)
	for _, k := range keys {
		items := groups[k]
		kept := rejectOutliers(items)
		avg, ok := weightedMean(kept)
		if !ok {
			continue
		}
		agg.Groups = append(agg.Groups, GroupValue{
			Key:   k,
			Value: toCurrency(avg),
			Count: len(kept),
			Total: len(items),
		})
		for _, o := range kept {
			surviving = append(surviving, o.Price/100)
		}
	}
	agg.Stats = Summarize(surviving)
	return agg
}

// rejectOutliers keeps prices within 20% of the group median. A group that
// would end up empty is returned unfiltered.
func rejectOutliers(items []Observation) []Observation {
	if len(items) < 2 {
		return items
	}
	prices := make([]float64, len(items))
	for i, o := range items {
		prices[i] = o.Price
	}
	med := median(sortedCopy(prices))
	lower, upper := med*0.8, med*1.2

	kept := make([]Observation, 0, len(items))
	for _, o := range items {
		if o.Price >= lower && o.Price <= upper {
			kept = append(kept, o)
		}
	}
	if len(kept) == 0 {
		return items
	}
	return kept
}

func weightedMean(items []Observation) (float64, bool) {
	var sum, weight float64
	for _, o := range items {
		sum += o.Price * o.Bales
		weight += o.Bales
	}
	if weight == 0 {
		return 0, false
	}
	return sum / weight, true
}
