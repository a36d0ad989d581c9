// Package analysis computes robust, volume-weighted statistics over lot rows
// that have already been fetched. Everything here is pure: no I/O, no logging.
package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInsufficientData marks a valid outcome where too few rows met a minimum.
var ErrInsufficientData = errors.New("insufficient data")

func insufficient(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInsufficientData, fmt.Sprintf(format, args...))
}

const (
	// KgPerBale approximates the weight behind one bale for histogram weighting.
	KgPerBale = 120
	// MinCohortRows is the smallest weekly cohort that gets a regression fit.
	MinCohortRows = 20
	// MinRSquared is the lowest fit quality reported for a weekly cohort.
	MinRSquared = 0.4
	// MinPopulation applies to scenario and benchmark reference populations.
	MinPopulation = 50
	// VMScale rescales vegetable matter inside every regression model.
	VMScale = 10
	// MaxCompareEntities caps one comparison request.
	MaxCompareEntities = 5
)

// DateLayout is the key format for date-keyed series.
const DateLayout = "2006-01-02"

// LengthIndex decodes the trailing letter of a type code: A=1 (longest)
// through Z=26 (shortest). ok is false when the last character is not a letter.
func LengthIndex(typeCombined string) (int, bool) {
	if typeCombined == "" {
		return 0, false
	}
	return LengthCodeIndex(typeCombined[len(typeCombined)-1])
}

// LengthCodeIndex maps a single length code letter to its index.
func LengthCodeIndex(b byte) (int, bool) {
	switch {
	case b >= 'A' && b <= 'Z':
		return int(b-'A') + 1, true
	case b >= 'a' && b <= 'z':
		return int(b-'a') + 1, true
	}
	return 0, false
}

// toCurrency converts cents to currency units rounded to 2 decimals.
func toCurrency(cents float64) float64 {
	return decimal.NewFromFloat(cents).Div(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func dateKey(t time.Time) string { return t.Format(DateLayout) }
