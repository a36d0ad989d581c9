package analysis

import (
	"github.com/viktsys/woolauction/models"
)

// QualityBounds selects the reference population for scenario and benchmark
// analyses. Bounds are inclusive.
type QualityBounds struct {
	MicronMin float64
	MicronMax float64
	VMMax     float64
	YieldMin  float64
	YieldMax  float64
	KgMin     float64
	KgMax     float64
}

// DefaultQualityBounds keeps typical greasy-wool lots.
var DefaultQualityBounds = QualityBounds{
	MicronMin: 15,
	MicronMax: 45,
	VMMax:     5,
	YieldMin:  40,
	YieldMax:  100,
	KgMin:     50,
	KgMax:     50000,
}

// Admits reports whether l carries every bounded attribute within range.
func (b QualityBounds) Admits(l models.Lot) bool {
	if l.Price <= 0 || l.Micron == nil || l.VegetableMatter == nil || l.Yield == nil || l.Kg == nil {
		return false
	}
	return *l.Micron >= b.MicronMin && *l.Micron <= b.MicronMax &&
		*l.VegetableMatter >= 0 && *l.VegetableMatter <= b.VMMax &&
		*l.Yield >= b.YieldMin && *l.Yield <= b.YieldMax &&
		*l.Kg >= b.KgMin && *l.Kg <= b.KgMax
}

func (b QualityBounds) filter(lots []models.Lot) []models.Lot {
	out := make([]models.Lot, 0, len(lots))
	for _, l := range lots {
		if b.Admits(l) {
			out = append(out, l)
		}
	}
	return out
}

// DefaultFeatures fill any field a scenario request leaves out.
var DefaultFeatures = Features{
	Micron:          35,
	Colour:          3,
	LengthIndex:     2,
	VegetableMatter: 0.3,
}

// FeatureInput is a partially specified feature vector.
type FeatureInput struct {
	Micron          *float64 `json:"micron"`
	Colour          *float64 `json:"colour"`
	LengthIndex     *float64 `json:"length_index"`
	VegetableMatter *float64 `json:"vegetable_matter"`
}

// Resolve fills missing fields from DefaultFeatures.
func (in FeatureInput) Resolve() Features {
	f := DefaultFeatures
	if in.Micron != nil {
		f.Micron = *in.Micron
	}
	if in.Colour != nil {
		f.Colour = *in.Colour
	}
	if in.LengthIndex != nil {
		f.LengthIndex = *in.LengthIndex
	}
	if in.VegetableMatter != nil {
		f.VegetableMatter = *in.VegetableMatter
	}
	return f
}

// FitPopulationModel fits one price model over the admitted lots. It needs
// at least MinPopulation complete rows.
func FitPopulationModel(lots []models.Lot, bounds QualityBounds) (Model, error) {
	samples := samplesOf(bounds.filter(lots))
	if len(samples) < MinPopulation {
		return Model{}, insufficient("%d qualifying rows, need %d", len(samples), MinPopulation)
	}
	m, err := fit(samples)
	if err != nil {
		return Model{}, insufficient("model could not be fitted: %v", err)
	}
	return m, nil
}

// Breakdown attributes a price difference to each feature.
type Breakdown struct {
	Micron          float64 `json:"micron"`
	Colour          float64 `json:"colour"`
	LengthIndex     float64 `json:"length_index"`
	VegetableMatter float64 `json:"vegetable_matter"`
}

type ScenarioResult struct {
	Baseline      Features  `json:"baseline"`
	Scenario      Features  `json:"scenario"`
	BaselinePrice float64   `json:"baseline_price"`
	ScenarioPrice float64   `json:"scenario_price"`
	Difference    float64   `json:"difference"`
	Breakdown     Breakdown `json:"breakdown"`
	Model         Model     `json:"model"`
}

// EvaluateScenario predicts both vectors and splits the difference per feature.
func EvaluateScenario(m Model, baseline, scenario Features) ScenarioResult {
	c := m.Coefficients
	base := m.Predict(baseline)
	scen := m.Predict(scenario)
	return ScenarioResult{
		Baseline:      baseline,
		Scenario:      scenario,
		BaselinePrice: round(base, 2),
		ScenarioPrice: round(scen, 2),
		Difference:    round(scen-base, 2),
		Breakdown: Breakdown{
			Micron:          round(c.Micron*(scenario.Micron-baseline.Micron), 2),
			Colour:          round(c.Colour*(scenario.Colour-baseline.Colour), 2),
			LengthIndex:     round(c.LengthIndex*(scenario.LengthIndex-baseline.LengthIndex), 2),
			VegetableMatter: round(c.VegetableMatter*(scenario.VegetableMatter-baseline.VegetableMatter)*VMScale, 2),
		},
		Model: m,
	}
}
