package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/viktsys/woolauction/models"
)

type Window string

const (
	WindowRecent Window = "recent"
	WindowYear   Window = "year"
	WindowCustom Window = "custom"
)

// ResolveWindow turns a window name into an inclusive date range ending now.
// Custom windows need both bounds.
func ResolveWindow(w Window, now time.Time, from, to *time.Time) (time.Time, time.Time, error) {
	switch w {
	case WindowRecent, "":
		return now.AddDate(0, -6, 0), now, nil
	case WindowYear:
		return now.AddDate(0, -12, 0), now, nil
	case WindowCustom:
		if from == nil || to == nil {
			return time.Time{}, time.Time{}, fmt.Errorf("custom window requires date_from and date_to")
		}
		if to.Before(*from) {
			return time.Time{}, time.Time{}, fmt.Errorf("date_to is before date_from")
		}
		return *from, *to, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown window %q", w)
}

// LotProfile describes the lot being benchmarked. Length may come as an
// index or as a single length code letter.
type LotProfile struct {
	Price           *float64 `json:"price"`
	Micron          *float64 `json:"micron"`
	Colour          *float64 `json:"colour"`
	VegetableMatter *float64 `json:"vegetable_matter"`
	LengthIndex     *float64 `json:"length_index"`
	LengthCode      string   `json:"length_code"`
}

func (p LotProfile) length() (float64, bool, error) {
	if p.LengthIndex != nil {
		return *p.LengthIndex, true, nil
	}
	code := strings.TrimSpace(p.LengthCode)
	if code == "" {
		return 0, false, nil
	}
	if len(code) != 1 {
		return 0, false, fmt.Errorf("length_code must be a single letter")
	}
	idx, ok := LengthCodeIndex(code[0])
	if !ok {
		return 0, false, fmt.Errorf("length_code must be a letter A-Z")
	}
	return float64(idx), true, nil
}

type PriceStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	StdDev float64 `json:"std_dev"`
}

type CentralStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

type BenchmarkResult struct {
	Population      int                `json:"population"`
	Price           PriceStats         `json:"price"`
	Micron          CentralStats       `json:"micron"`
	Colour          CentralStats       `json:"colour"`
	VegetableMatter CentralStats       `json:"vegetable_matter"`
	Percentiles     map[string]float64 `json:"percentiles,omitempty"`
}

// population columns of the admitted lots; price in currency units.
type population struct {
	price, micron, colour, vm, length []float64
}

func collect(lots []models.Lot) population {
	var p population
	for _, l := range lots {
		p.price = append(p.price, float64(l.Price)/100)
		p.micron = append(p.micron, *l.Micron)
		p.vm = append(p.vm, *l.VegetableMatter)
		if l.Colour != nil {
			p.colour = append(p.colour, *l.Colour)
		}
		if l.TypeCombined != nil {
			if li, ok := LengthIndex(*l.TypeCombined); ok {
				p.length = append(p.length, float64(li))
			}
		}
	}
	return p
}

func central(values []float64) CentralStats {
	s := Summarize(values)
	return CentralStats{Mean: s.Mean, Median: s.Median}
}

// Benchmark describes the admitted reference population and, when a profile
// is given, ranks each supplied characteristic within it. Colour and
// vegetable matter ranks are inverted because lower is better.
func Benchmark(lots []models.Lot, bounds QualityBounds, profile *LotProfile) (BenchmarkResult, error) {
	admitted := bounds.filter(lots)
	if len(admitted) < MinPopulation {
		return BenchmarkResult{}, insufficient("%d qualifying rows, need %d", len(admitted), MinPopulation)
	}
	pop := collect(admitted)

	sorted := sortedCopy(pop.price)
	summary := Summarize(pop.price)
	res := BenchmarkResult{
		Population: len(admitted),
		Price: PriceStats{
			Mean:   summary.Mean,
			Median: summary.Median,
			P25:    round(percentile(sorted, 25), 2),
			P75:    round(percentile(sorted, 75), 2),
			StdDev: summary.StdDev,
		},
		Micron:          central(pop.micron),
		Colour:          central(pop.colour),
		VegetableMatter: central(pop.vm),
	}

	if profile == nil {
		return res, nil
	}
	ranks, err := rankProfile(pop, *profile)
	if err != nil {
		return BenchmarkResult{}, err
	}
	res.Percentiles = ranks
	return res, nil
}

func rankProfile(pop population, p LotProfile) (map[string]float64, error) {
	ranks := make(map[string]float64)
	if p.Price != nil {
		ranks["price"] = percentileRank(pop.price, *p.Price)
	}
	if p.Micron != nil {
		ranks["micron"] = percentileRank(pop.micron, *p.Micron)
	}
	if p.Colour != nil && len(pop.colour) > 0 {
		ranks["colour"] = round(100-percentileRank(pop.colour, *p.Colour), 1)
	}
	if p.VegetableMatter != nil {
		ranks["vegetable_matter"] = round(100-percentileRank(pop.vm, *p.VegetableMatter), 1)
	}
	length, ok, err := p.length()
	if err != nil {
		return nil, err
	}
	if ok && len(pop.length) > 0 {
		ranks["length"] = percentileRank(pop.length, length)
	}
	return ranks, nil
}
