package models

import (
	"reflect"
	"strings"
	"testing"
)

func TestLotTableName(t *testing.T) {
	if got := (Lot{}).TableName(); got != "auction_data_joined" {
		t.Errorf("Expected table auction_data_joined, got %s", got)
	}
}

func TestLotColumnsMatchGormTags(t *testing.T) {
	tags := make(map[string]bool)
	typ := reflect.TypeOf(Lot{})
	for i := 0; i < typ.NumField(); i++ {
		for _, part := range strings.Split(typ.Field(i).Tag.Get("gorm"), ";") {
			if strings.HasPrefix(part, "column:") {
				tags[strings.TrimPrefix(part, "column:")] = true
			}
		}
	}

	if len(tags) != len(LotColumns) {
		t.Errorf("Expected %d tagged columns, got %d", len(LotColumns), len(tags))
	}
	for _, col := range LotColumns {
		if !tags[col] {
			t.Errorf("Expected column %s to be mapped on Lot", col)
		}
	}
}

func TestTradeExportModel(t *testing.T) {
	export := TradeExport{
		Month:          202401,
		Country:        "China",
		HS:             "5101110004",
		TotalExportFOB: 1250000,
	}

	if export.HS != "5101110004" {
		t.Errorf("Expected HS 5101110004, got %s", export.HS)
	}

	if export.TotalExportFOB != 1250000 {
		t.Errorf("Expected FOB 1250000, got %f", export.TotalExportFOB)
	}
}
