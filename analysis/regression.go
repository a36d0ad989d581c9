package analysis

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/viktsys/woolauction/models"
)

// Features is the explanatory vector of the price model. VegetableMatter is
// the raw percentage; the model scales it by VMScale internally.
type Features struct {
	Micron          float64 `json:"micron"`
	Colour          float64 `json:"colour"`
	LengthIndex     float64 `json:"length_index"`
	VegetableMatter float64 `json:"vegetable_matter"`
}

func (f Features) row() []float64 {
	return []float64{1, f.Micron, f.Colour, f.LengthIndex, f.VegetableMatter * VMScale}
}

// Coefficients of price ~ intercept + micron + colour + length_index + 10*vm.
type Coefficients struct {
	Intercept       float64 `json:"intercept"`
	Micron          float64 `json:"micron"`
	Colour          float64 `json:"colour"`
	LengthIndex     float64 `json:"length_index"`
	VegetableMatter float64 `json:"vegetable_matter"`
}

func (c Coefficients) slice() []float64 {
	return []float64{c.Intercept, c.Micron, c.Colour, c.LengthIndex, c.VegetableMatter}
}

func coefficientsFrom(v []float64) Coefficients {
	return Coefficients{Intercept: v[0], Micron: v[1], Colour: v[2], LengthIndex: v[3], VegetableMatter: v[4]}
}

// Model is a fitted linear price model. Predictions are in currency units.
type Model struct {
	Coefficients     Coefficients `json:"coefficients"`
	RSquared         float64      `json:"r_squared"`
	AdjustedRSquared float64      `json:"adjusted_r_squared"`
	Observations     int          `json:"observation_count"`
}

// Predict evaluates the model at f.
func (m Model) Predict(f Features) float64 {
	var y float64
	x := f.row()
	for i, b := range m.Coefficients.slice() {
		y += b * x[i]
	}
	return y
}

// sample is one complete regression row.
type sample struct {
	x Features
	y float64
}

// samplesOf drops lots with a missing feature or price.
func samplesOf(lots []models.Lot) []sample {
	out := make([]sample, 0, len(lots))
	for _, l := range lots {
		if l.Price <= 0 || l.Micron == nil || l.Colour == nil || l.VegetableMatter == nil || l.TypeCombined == nil {
			continue
		}
		li, ok := LengthIndex(*l.TypeCombined)
		if !ok {
			continue
		}
		out = append(out, sample{
			x: Features{Micron: *l.Micron, Colour: *l.Colour, LengthIndex: float64(li), VegetableMatter: *l.VegetableMatter},
			y: float64(l.Price) / 100,
		})
	}
	return out
}

// rankTolerance is the singular value cutoff, relative to the largest, below
// which a design direction is treated as absent.
const rankTolerance = 1e-10

// fit solves ordinary least squares over samples.
func fit(samples []sample) (Model, error) {
	n := len(samples)
	p := len(Features{}.row())
	if n <= p {
		return Model{}, fmt.Errorf("need more than %d rows, got %d", p, n)
	}

	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i, s := range samples {
		x.SetRow(i, s.x.row())
		y.SetVec(i, s.y)
	}

	// A feature that is constant within the sample makes the design rank
	// deficient; the SVD solve then returns the minimum-norm solution.
	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThin) {
		return Model{}, fmt.Errorf("least squares: SVD factorization failed")
	}
	rank := svd.Rank(rankTolerance)
	if rank == 0 {
		return Model{}, fmt.Errorf("least squares: design matrix has rank 0")
	}
	var beta mat.VecDense
	svd.SolveVecTo(&beta, y, rank)
	m := Model{Coefficients: coefficientsFrom(beta.RawVector().Data), Observations: n}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	var mean float64
	for i := 0; i < n; i++ {
		mean += y.AtVec(i)
	}
	mean /= float64(n)
	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		r := y.AtVec(i) - fitted.AtVec(i)
		d := y.AtVec(i) - mean
		ssRes += r * r
		ssTot += d * d
	}
	if ssTot > 0 {
		m.RSquared = 1 - ssRes/ssTot
	}
	m.AdjustedRSquared = 1 - (1-m.RSquared)*float64(n-1)/float64(n-rank)
	return m, nil
}

// WeeklyFit is the retained model of one ISO-week cohort. Smoothed is set
// when a smoothing window above 1 was requested.
type WeeklyFit struct {
	Week      string        `json:"week"`
	WeekStart string        `json:"week_start"`
	Smoothed  *Coefficients `json:"smoothed_coefficients,omitempty"`
	Model
}

// RegressionSummary describes the retained weeks as a whole.
type RegressionSummary struct {
	Weeks            int          `json:"weeks"`
	Observations     int          `json:"observation_count"`
	MeanRSquared     float64      `json:"mean_r_squared"`
	MeanCoefficients Coefficients `json:"mean_coefficients"`
}

type RegressionResult struct {
	Weeks   []WeeklyFit       `json:"weeks"`
	Summary RegressionSummary `json:"summary"`
}

func retained(m Model) bool {
	return m.Observations >= MinCohortRows && m.RSquared >= MinRSquared
}

func weekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func isoWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeeklyRegression fits one model per ISO week and keeps fits with at least
// MinCohortRows complete rows and R² >= MinRSquared. It returns
// ErrInsufficientData when no week qualifies.
func WeeklyRegression(lots []models.Lot, window int) (RegressionResult, error) {
	cohorts := make(map[time.Time][]models.Lot)
	for _, l := range lots {
		if l.SaleDate.IsZero() {
			continue
		}
		ws := weekStart(l.SaleDate)
		cohorts[ws] = append(cohorts[ws], l)
	}

	starts := make([]time.Time, 0, len(cohorts))
	for ws := range cohorts {
		starts = append(starts, ws)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	var result RegressionResult
	for _, ws := range starts {
		cohort := cohorts[ws]
		if len(cohort) < MinCohortRows {
			continue
		}
		samples := samplesOf(cohort)
		if len(samples) < MinCohortRows {
			continue
		}
		m, err := fit(samples)
		if err != nil || !retained(m) {
			continue
		}
		result.Weeks = append(result.Weeks, WeeklyFit{Week: isoWeek(ws), WeekStart: dateKey(ws), Model: m})
	}

	if len(result.Weeks) == 0 {
		return RegressionResult{}, insufficient("no weekly cohort with at least %d complete rows and R² >= %.2f", MinCohortRows, MinRSquared)
	}

	if window > 1 {
		smooth(result.Weeks, window)
	}
	result.Summary = summarizeWeeks(result.Weeks)
	return result, nil
}

// smooth applies a trailing rolling mean (minimum one period) to each
// coefficient across the ordered weeks.
func smooth(weeks []WeeklyFit, window int) {
	for i := range weeks {
		from := i - window + 1
		if from < 0 {
			from = 0
		}
		acc := make([]float64, 5)
		for _, w := range weeks[from : i+1] {
			for k, v := range w.Coefficients.slice() {
				acc[k] += v
			}
		}
		for k := range acc {
			acc[k] /= float64(i + 1 - from)
		}
		c := coefficientsFrom(acc)
		weeks[i].Smoothed = &c
	}
}

func summarizeWeeks(weeks []WeeklyFit) RegressionSummary {
	s := RegressionSummary{Weeks: len(weeks)}
	acc := make([]float64, 5)
	for _, w := range weeks {
		s.Observations += w.Observations
		s.MeanRSquared += w.RSquared
		for k, v := range w.Coefficients.slice() {
			acc[k] += v
		}
	}
	n := float64(len(weeks))
	s.MeanRSquared /= n
	for k := range acc {
		acc[k] /= n
	}
	s.MeanCoefficients = coefficientsFrom(acc)
	return s
}
