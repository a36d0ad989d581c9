package analysis

import (
	"errors"
	"testing"
	"time"

	"github.com/viktsys/woolauction/models"
)

func TestLengthIndex(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"MF5A", 1, true},
		{"MF5z", 26, true},
		{"CR3D", 4, true},
		{"1234", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := LengthIndex(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LengthIndex(%q): expected %d/%v, got %d/%v", tt.in, tt.want, tt.wantOK, got, ok)
		}
	}
}

func TestWeekStartAndISOWeek(t *testing.T) {
	ws := weekStart(date("2024-03-07"))
	if ws.Format(DateLayout) != "2024-03-04" {
		t.Errorf("Expected Monday 2024-03-04, got %s", ws.Format(DateLayout))
	}
	if got := isoWeek(date("2024-12-30")); got != "2025-W01" {
		t.Errorf("Expected 2025-W01, got %s", got)
	}
}

func TestWeeklyRegressionRecoversCoefficients(t *testing.T) {
	res, err := WeeklyRegression(modelLots(date("2024-03-04"), MinCohortRows), 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(res.Weeks) != 1 {
		t.Fatalf("Expected 1 week, got %d", len(res.Weeks))
	}

	w := res.Weeks[0]
	if w.Week != "2024-W10" || w.Observations != MinCohortRows {
		t.Errorf("Unexpected week %s with %d rows", w.Week, w.Observations)
	}
	if w.RSquared < 0.999 {
		t.Errorf("Expected near perfect fit, got R² %v", w.RSquared)
	}
	c := w.Coefficients
	if !near(c.Intercept, 20) || !near(c.Micron, -0.4) || !near(c.Colour, -0.5) ||
		!near(c.LengthIndex, -0.3) || !near(c.VegetableMatter, -0.05) {
		t.Errorf("Unexpected coefficients %+v", c)
	}
	if w.Smoothed != nil {
		t.Error("Expected no smoothing for window 0")
	}
}

// sameLength rewrites lots to a single length code, keeping prices linear in
// the remaining features.
func sameLength(lots []models.Lot) []models.Lot {
	for i := range lots {
		li := 1 + i%3
		lots[i].Price += int64(30 * (li - 2))
		lots[i].TypeCombined = str("MF5B")
	}
	return lots
}

func TestWeeklyRegressionConstantLengthStillFits(t *testing.T) {
	res, err := WeeklyRegression(sameLength(modelLots(date("2024-03-04"), 30)), 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(res.Weeks) != 1 {
		t.Fatalf("Expected 1 week, got %d", len(res.Weeks))
	}

	w := res.Weeks[0]
	if w.RSquared < 0.999 {
		t.Errorf("Expected near perfect fit, got R² %v", w.RSquared)
	}
	c := w.Coefficients
	if !near(c.Micron, -0.4) || !near(c.Colour, -0.5) || !near(c.VegetableMatter, -0.05) {
		t.Errorf("Unexpected coefficients %+v", c)
	}
	if got := c.Intercept + 2*c.LengthIndex; !near(got, 19.4) {
		t.Errorf("Expected intercept plus length term 19.4, got %v", got)
	}
}

func TestWeeklyRegressionSkipsSmallCohorts(t *testing.T) {
	lots := modelLots(date("2024-03-04"), MinCohortRows-1)
	lots = append(lots, modelLots(date("2024-03-11"), MinCohortRows)...)

	res, err := WeeklyRegression(lots, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(res.Weeks) != 1 || res.Weeks[0].Week != "2024-W11" {
		t.Errorf("Expected only 2024-W11 to be retained, got %+v", res.Weeks)
	}
}

func TestWeeklyRegressionDropsIncompleteRows(t *testing.T) {
	lots := modelLots(date("2024-03-04"), MinCohortRows)
	lots[0].Micron = nil

	_, err := WeeklyRegression(lots, 0)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected insufficient data once a row is incomplete, got %v", err)
	}
}

func TestRetainedThresholds(t *testing.T) {
	if !retained(Model{Observations: 20, RSquared: 0.4}) {
		t.Error("Expected 20 rows with R² 0.4 to be retained")
	}
	if retained(Model{Observations: 20, RSquared: 0.39}) {
		t.Error("Expected R² 0.39 to be excluded")
	}
	if retained(Model{Observations: 19, RSquared: 0.99}) {
		t.Error("Expected 19 rows to be excluded")
	}
}

func TestWeeklyRegressionSmoothing(t *testing.T) {
	var lots []models.Lot
	for i, start := range []string{"2024-03-04", "2024-03-11", "2024-03-18"} {
		week := modelLots(date(start), MinCohortRows)
		for j := range week {
			week[j].Price += int64(100 * i)
		}
		lots = append(lots, week...)
	}

	res, err := WeeklyRegression(lots, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(res.Weeks) != 3 {
		t.Fatalf("Expected 3 weeks, got %d", len(res.Weeks))
	}

	intercepts := []float64{20, 20.5, 21.5}
	for i, want := range intercepts {
		got := res.Weeks[i].Smoothed.Intercept
		if !near(got, want) {
			t.Errorf("Week %d: expected smoothed intercept %v, got %v", i, want, got)
		}
	}
	if res.Summary.Weeks != 3 || res.Summary.Observations != 3*MinCohortRows {
		t.Errorf("Unexpected summary %+v", res.Summary)
	}
	if !near(res.Summary.MeanCoefficients.Intercept, 21) {
		t.Errorf("Expected mean intercept 21, got %v", res.Summary.MeanCoefficients.Intercept)
	}
}

func TestWeeklyRegressionInsufficientData(t *testing.T) {
	_, err := WeeklyRegression(nil, 3)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}

	flat := modelLots(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), MinCohortRows)
	for i := range flat {
		flat[i].Price = 1500
	}
	if _, err := WeeklyRegression(flat, 0); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected constant prices to give no usable fit, got %v", err)
	}
}
