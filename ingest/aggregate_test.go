package ingest

import (
	"reflect"
	"strings"
	"testing"

	"github.com/viktsys/woolauction/models"
)

func sampleRows(t *testing.T) []models.TradeExport {
	t.Helper()
	rows, err := ParseExportCSV(strings.NewReader(sampleCSV), "f.csv", Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return rows
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRows(t))

	if s.TotalRecords != 4 {
		t.Errorf("Expected 4 records, got %d", s.TotalRecords)
	}
	if s.DateRange == nil || *s.DateRange != (MonthRange{Start: 202401, End: 202402}) {
		t.Errorf("Unexpected date range %+v", s.DateRange)
	}
	if !reflect.DeepEqual(s.Countries, []string{"China", "India", "Italy"}) {
		t.Errorf("Unexpected countries %v", s.Countries)
	}
	if s.TotalValue != 4050 || s.TotalQuantity != 346 {
		t.Errorf("Expected totals 4050/346, got %v/%v", s.TotalValue, s.TotalQuantity)
	}
	if !s.HasProvisional || !reflect.DeepEqual(s.ProvisionalMonths, []int{202402}) {
		t.Errorf("Unexpected provisional info %v %v", s.HasProvisional, s.ProvisionalMonths)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalRecords != 0 || s.DateRange != nil || len(s.Countries) != 0 || s.HasProvisional {
		t.Errorf("Unexpected empty summary %+v", s)
	}
}

func TestByCountry(t *testing.T) {
	got := ByCountry(sampleRows(t))
	want := []Total{
		{Key: "China", TotalExportFOB: 3200, TotalExportQty: 250},
		{Key: "India", TotalExportFOB: 850, TotalExportQty: 95},
		{Key: "Italy", TotalExportFOB: 0, TotalExportQty: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestByMonth(t *testing.T) {
	got := ByMonth(sampleRows(t))
	want := []MonthTotal{
		{Month: 202401, TotalExportFOB: 2050, TotalExportQty: 195, Status: "Final"},
		{Month: 202402, TotalExportFOB: 2000, TotalExportQty: 151, Status: "Provisional"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestByCategory(t *testing.T) {
	got, err := ByCategory(sampleRows(t), "processing_stage")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	keys := make([]string, len(got))
	for i, g := range got {
		keys[i] = g.Key
	}
	if !reflect.DeepEqual(keys, []string{"Combed/Tops", "Greasy", "Yarn"}) {
		t.Errorf("Unexpected stage keys %v", keys)
	}
	if got[1].TotalExportFOB != 2050 {
		t.Errorf("Expected greasy value 2050, got %v", got[1].TotalExportFOB)
	}

	byCat, err := ByCategory(sampleRows(t), "")
	if err != nil || len(byCat) != 4 {
		t.Errorf("Expected 4 wool categories by default, got %d (%v)", len(byCat), err)
	}

	if _, err := ByCategory(nil, "country; DROP"); err == nil {
		t.Error("Expected error for unknown grouping, got nil")
	}
}
