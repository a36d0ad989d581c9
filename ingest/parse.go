package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/viktsys/woolauction/models"
)

var headerCleaner = strings.NewReplacer(" ", "_", "(", "", ")", "", "-", "_")

// canonicalColumns maps normalised source headers to stored field names.
var canonicalColumns = map[string]string{
	"harmonised_system_code":        "hs",
	"harmonised_system_description": "hs_desc",
	"unit_qty":                      "uom",
	"exports_nzd_fob":               "export_fob",
	"exports_qty":                   "export_qty",
	"re_exports_nzd_fob":            "re_export_fob",
	"re_exports_qty":                "re_export_qty",
	"total_exports_nzd_fob":         "total_export_fob",
	"total_exports_qty":             "total_export_qty",
}

var requiredColumns = []string{"month", "country", "hs"}

// normalizeHeader turns "Total Exports ($NZD fob)" into "total_exports_nzd_fob".
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
	h = headerCleaner.Replace(strings.ToLower(h))
	h = strings.ReplaceAll(h, "_$", "_")
	h = strings.ReplaceAll(h, "$", "")
	if c, ok := canonicalColumns[h]; ok {
		return c
	}
	return h
}

// parseAmount strips thousands separators. Anything unparseable counts as zero.
func parseAmount(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseExportCSV reads one export file, keeping the wool rows admitted by opts.
// Each kept row is categorised. Rows whose month is not a number are skipped.
func ParseExportCSV(r io.Reader, source string, opts Options) ([]models.TradeExport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	admit := opts.compile()
	var out []models.TradeExport
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		month, err := strconv.Atoi(field(rec, "month"))
		if err != nil {
			continue
		}
		row := models.TradeExport{
			Month:          month,
			Country:        field(rec, "country"),
			HS:             field(rec, "hs"),
			HSDesc:         field(rec, "hs_desc"),
			UOM:            field(rec, "uom"),
			ExportFOB:      parseAmount(field(rec, "export_fob")),
			ExportQty:      parseAmount(field(rec, "export_qty")),
			ReExportFOB:    parseAmount(field(rec, "re_export_fob")),
			ReExportQty:    parseAmount(field(rec, "re_export_qty")),
			TotalExportFOB: parseAmount(field(rec, "total_export_fob")),
			TotalExportQty: parseAmount(field(rec, "total_export_qty")),
			Status:         field(rec, "status"),
			SourceFile:     source,
		}
		if !admit.admits(&row) {
			continue
		}
		categorize(&row)
		out = append(out, row)
	}
	return out, nil
}

func categorize(row *models.TradeExport) {
	row.WoolCategory = Category(row.HS)
	row.ProcessingStage = ProcessingStage(row.WoolCategory)
	row.MicronRange = MicronRange(row.WoolCategory)
}
