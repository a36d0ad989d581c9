package analysis

import (
	"reflect"
	"testing"

	"github.com/viktsys/woolauction/models"
)

func TestTimeSeriesWeekly(t *testing.T) {
	lots := []models.Lot{
		{SaleDate: date("2024-03-04"), Price: 1000, Bales: ptr(1), Micron: ptr(20)},
		{SaleDate: date("2024-03-07"), Price: 1100, Bales: ptr(3), Micron: ptr(24)},
		{SaleDate: date("2024-03-12"), Price: 1200, Bales: ptr(2), Micron: ptr(30)},
	}

	series := TimeSeries(lots, []Variable{VarPrice, VarBales, VarMicron}, Weekly)
	if len(series) != 3 {
		t.Fatalf("Expected 3 series, got %d", len(series))
	}

	wantLabels := []string{"2024-03-04", "2024-03-11"}
	for _, s := range series {
		if !reflect.DeepEqual(s.Labels, wantLabels) {
			t.Errorf("%s: expected labels %v, got %v", s.Variable, wantLabels, s.Labels)
		}
	}
	if !reflect.DeepEqual(series[0].Values, []float64{10.75, 12}) {
		t.Errorf("Unexpected price series %v", series[0].Values)
	}
	if !reflect.DeepEqual(series[1].Values, []float64{4, 2}) {
		t.Errorf("Unexpected bales series %v", series[1].Values)
	}
	if !reflect.DeepEqual(series[2].Values, []float64{23, 30}) {
		t.Errorf("Unexpected micron series %v", series[2].Values)
	}
}

func TestTimeSeriesMonthly(t *testing.T) {
	lots := []models.Lot{
		{SaleDate: date("2024-03-04"), Price: 1000, Bales: ptr(1), Kg: ptr(150)},
		{SaleDate: date("2024-03-28"), Price: 1000, Bales: ptr(1), Kg: ptr(100)},
		{SaleDate: date("2024-04-02"), Price: 1000, Bales: ptr(1), Kg: ptr(90)},
	}

	series := TimeSeries(lots, []Variable{VarKg}, Monthly)
	if !reflect.DeepEqual(series[0].Labels, []string{"2024-03-01", "2024-04-01"}) {
		t.Errorf("Unexpected labels %v", series[0].Labels)
	}
	if !reflect.DeepEqual(series[0].Values, []float64{250, 90}) {
		t.Errorf("Unexpected kg sums %v", series[0].Values)
	}
}

func TestParseGranularity(t *testing.T) {
	if g, err := ParseGranularity(""); err != nil || g != Weekly {
		t.Errorf("Expected weekly default, got %q (%v)", g, err)
	}
	if _, err := ParseGranularity("daily"); err == nil {
		t.Error("Expected error for daily, got nil")
	}
}
