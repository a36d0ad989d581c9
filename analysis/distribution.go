package analysis

import (
	"fmt"
	"math"

	"github.com/viktsys/woolauction/models"
)

// Variable is a numeric lot attribute that can be analysed.
type Variable string

const (
	VarPrice           Variable = "price"
	VarMicron          Variable = "micron"
	VarColour          Variable = "colour"
	VarYield           Variable = "yield"
	VarVegetableMatter Variable = "vegetable_matter"
	VarKg              Variable = "kg"
	VarBales           Variable = "bales"
)

func ParseVariable(s string) (Variable, error) {
	switch v := Variable(s); v {
	case VarPrice, VarMicron, VarColour, VarYield, VarVegetableMatter, VarKg, VarBales:
		return v, nil
	}
	return "", fmt.Errorf("unknown variable %q", s)
}

// Value extracts v from l. Price comes back in currency units.
func (v Variable) Value(l models.Lot) (float64, bool) {
	var p *float64
	switch v {
	case VarPrice:
		if l.Price <= 0 {
			return 0, false
		}
		return float64(l.Price) / 100, true
	case VarMicron:
		p = l.Micron
	case VarColour:
		p = l.Colour
	case VarYield:
		p = l.Yield
	case VarVegetableMatter:
		p = l.VegetableMatter
	case VarKg:
		p = l.Kg
	case VarBales:
		p = l.Bales
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Bin is one histogram bucket [Start, End). Weight is the estimated kg behind it.
type Bin struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Count  int     `json:"count"`
	Weight float64 `json:"weight_kg"`
}

type DistributionResult struct {
	Variable Variable `json:"variable"`
	BinWidth float64  `json:"bin_width"`
	Stats    Summary  `json:"stats"`
	Bins     []Bin    `json:"bins"`
}

// MaxBins bounds the histogram size a single request may produce.
const MaxBins = 1000

// Distribution summarises v and buckets it into fixed-width bins weighted by
// bales * KgPerBale.
func Distribution(lots []models.Lot, v Variable, width float64) (DistributionResult, error) {
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return DistributionResult{}, fmt.Errorf("bin width must be positive")
	}

	var values, weights []float64
	for _, l := range lots {
		x, ok := v.Value(l)
		if !ok {
			continue
		}
		w := 0.0
		if l.Bales != nil && *l.Bales > 0 {
			w = *l.Bales * KgPerBale
		}
		values = append(values, x)
		weights = append(weights, w)
	}

	res := DistributionResult{Variable: v, BinWidth: width, Stats: Summarize(values)}
	if len(values) == 0 {
		return res, nil
	}

	sorted := sortedCopy(values)
	start := math.Floor(sorted[0]/width) * width
	nf := math.Floor((sorted[len(sorted)-1]-start)/width) + 1
	if math.IsNaN(nf) || nf > MaxBins {
		return DistributionResult{}, fmt.Errorf("bin width %g yields %g bins, limit is %d", width, nf, MaxBins)
	}
	n := int(nf)

	res.Bins = make([]Bin, n)
	for i := range res.Bins {
		res.Bins[i].Start = round(start+float64(i)*width, 4)
		res.Bins[i].End = round(start+float64(i+1)*width, 4)
	}
	for i, x := range values {
		idx := int(math.Floor((x - start) / width))
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		res.Bins[idx].Count++
		res.Bins[idx].Weight += weights[i]
	}
	return res, nil
}
