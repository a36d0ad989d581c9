package ingest

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/viktsys/woolauction/models"
)

type MonthRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type Summary struct {
	TotalRecords      int         `json:"total_records"`
	DateRange         *MonthRange `json:"date_range"`
	Countries         []string    `json:"countries"`
	TotalValue        float64     `json:"total_value"`
	TotalQuantity     float64     `json:"total_quantity"`
	HasProvisional    bool        `json:"has_provisional"`
	ProvisionalMonths []int       `json:"provisional_months"`
}

const provisional = "Provisional"

func Summarize(rows []models.TradeExport) Summary {
	s := Summary{Countries: []string{}, ProvisionalMonths: []int{}}
	if len(rows) == 0 {
		return s
	}

	s.TotalRecords = len(rows)
	s.DateRange = &MonthRange{Start: rows[0].Month, End: rows[0].Month}
	countries := make(map[string]bool)
	months := make(map[int]bool)
	value, qty := decimal.Zero, decimal.Zero

	for _, r := range rows {
		s.DateRange.Start = min(s.DateRange.Start, r.Month)
		s.DateRange.End = max(s.DateRange.End, r.Month)
		countries[r.Country] = true
		value = value.Add(decimal.NewFromFloat(r.TotalExportFOB))
		qty = qty.Add(decimal.NewFromFloat(r.TotalExportQty))
		if r.Status == provisional {
			months[r.Month] = true
		}
	}

	for c := range countries {
		s.Countries = append(s.Countries, c)
	}
	sort.Strings(s.Countries)
	for m := range months {
		s.ProvisionalMonths = append(s.ProvisionalMonths, m)
	}
	sort.Ints(s.ProvisionalMonths)

	s.TotalValue = value.InexactFloat64()
	s.TotalQuantity = qty.InexactFloat64()
	s.HasProvisional = len(s.ProvisionalMonths) > 0
	return s
}

// Total is the summed export value and quantity of one group.
type Total struct {
	Key            string  `json:"key"`
	TotalExportFOB float64 `json:"total_export_fob"`
	TotalExportQty float64 `json:"total_export_qty"`
}

type sums struct {
	fob, qty decimal.Decimal
}

func (s *sums) add(r models.TradeExport) {
	s.fob = s.fob.Add(decimal.NewFromFloat(r.TotalExportFOB))
	s.qty = s.qty.Add(decimal.NewFromFloat(r.TotalExportQty))
}

func group(rows []models.TradeExport, key func(models.TradeExport) string) []Total {
	groups := make(map[string]*sums)
	for _, r := range rows {
		k := key(r)
		g := groups[k]
		if g == nil {
			g = &sums{fob: decimal.Zero, qty: decimal.Zero}
			groups[k] = g
		}
		g.add(r)
	}

	out := make([]Total, 0, len(groups))
	for k, g := range groups {
		out = append(out, Total{Key: k, TotalExportFOB: g.fob.InexactFloat64(), TotalExportQty: g.qty.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

var groupings = map[string]func(models.TradeExport) string{
	"wool_category":    func(r models.TradeExport) string { return r.WoolCategory },
	"processing_stage": func(r models.TradeExport) string { return r.ProcessingStage },
	"micron_range":     func(r models.TradeExport) string { return r.MicronRange },
}

// ByCategory sums rows per wool_category, processing_stage or micron_range,
// ordered by key. An empty groupBy means wool_category.
func ByCategory(rows []models.TradeExport, groupBy string) ([]Total, error) {
	if groupBy == "" {
		groupBy = "wool_category"
	}
	key, ok := groupings[groupBy]
	if !ok {
		return nil, fmt.Errorf("unknown grouping %q", groupBy)
	}
	return group(rows, key), nil
}

// ByCountry sums rows per country, highest value first.
func ByCountry(rows []models.TradeExport) []Total {
	out := group(rows, func(r models.TradeExport) string { return r.Country })
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalExportFOB > out[j].TotalExportFOB })
	return out
}

type MonthTotal struct {
	Month          int     `json:"month"`
	TotalExportFOB float64 `json:"total_export_fob"`
	TotalExportQty float64 `json:"total_export_qty"`
	Status         string  `json:"status"`
}

// ByMonth sums rows per month in ascending order. Status is the first one
// seen for the month.
func ByMonth(rows []models.TradeExport) []MonthTotal {
	groups := make(map[int]*sums)
	status := make(map[int]string)
	for _, r := range rows {
		g := groups[r.Month]
		if g == nil {
			g = &sums{fob: decimal.Zero, qty: decimal.Zero}
			groups[r.Month] = g
			status[r.Month] = r.Status
		}
		g.add(r)
	}

	out := make([]MonthTotal, 0, len(groups))
	for m, g := range groups {
		out = append(out, MonthTotal{
			Month:          m,
			TotalExportFOB: g.fob.InexactFloat64(),
			TotalExportQty: g.qty.InexactFloat64(),
			Status:         status[m],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
