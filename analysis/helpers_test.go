package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/viktsys/woolauction/models"
)

func ptr(v float64) *float64 { return &v }

func str(s string) *string { return &s }

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func lot(day string, cents int64, bales float64) models.Lot {
	return models.Lot{SaleDate: date(day), Price: cents, Bales: ptr(bales)}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// modelLots builds n complete lots whose price is an exact linear function of
// the features: dollars = 20 - 0.4*micron - 0.5*colour - 0.3*length - 0.05*(10*vm).
func modelLots(start time.Time, n int) []models.Lot {
	lots := make([]models.Lot, 0, n)
	for i := 0; i < n; i++ {
		mi := 18 + i%5
		ci := 2 + i/5
		li := 1 + i%3
		vi := (3 * i) % 4
		cents := int64(2000 - 40*mi - 50*ci - 30*li - 5*vi)
		lots = append(lots, models.Lot{
			SaleDate:        start.AddDate(0, 0, i%5),
			Price:           cents,
			Bales:           ptr(float64(2 + i%4)),
			Kg:              ptr(500),
			Yield:           ptr(70),
			Micron:          ptr(float64(mi)),
			Colour:          ptr(float64(ci)),
			VegetableMatter: ptr(float64(vi) / 10),
			TypeCombined:    str(fmt.Sprintf("MF5%c", 'A'+li-1)),
		})
	}
	return lots
}
