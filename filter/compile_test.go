package filter

import (
	"reflect"
	"strings"
	"testing"
)

func TestCompileAlwaysAppliesPriceFloor(t *testing.T) {
	q := Compile(Input{})

	if len(q.Clauses) != 1 {
		t.Fatalf("Expected 1 clause, got %d", len(q.Clauses))
	}
	if q.Where() != "price > ?" {
		t.Errorf("Expected price floor clause, got %q", q.Where())
	}
	if !reflect.DeepEqual(q.Args(), []any{DefaultPriceFloor}) {
		t.Errorf("Expected floor arg %d, got %v", DefaultPriceFloor, q.Args())
	}
}

func TestCompileDropsColumnsOutsideWhitelist(t *testing.T) {
	evil := "price; DROP TABLE auction_data_joined; --"
	q := Compile(Input{Predicates: []Raw{
		{Column: evil, Operator: "eq", Value: "x-marker"},
		{Column: "password", Operator: "gt", Value: 5},
		{Column: "micron", Operator: "lte", Value: 21.5},
	}})

	where := q.Where()
	if strings.Contains(where, "DROP") || strings.Contains(where, "password") {
		t.Errorf("Expected no reference to rejected columns, got %q", where)
	}
	for _, arg := range q.Args() {
		if arg == "x-marker" || arg == 5 {
			t.Errorf("Expected rejected value to be absent from args, got %v", q.Args())
		}
	}
	if !strings.Contains(where, "micron <= ?") {
		t.Errorf("Expected micron clause to survive, got %q", where)
	}
	if len(q.Rejected) != 2 {
		t.Errorf("Expected 2 rejections, got %d", len(q.Rejected))
	}
}

func TestCompileOperators(t *testing.T) {
	tests := []struct {
		raw      Raw
		wantSQL  string
		wantArgs []any
	}{
		{Raw{Column: "price", Operator: "eq", Value: 1000}, "price = ?", []any{1000}},
		{Raw{Column: "price", Operator: "ne", Value: 1000}, "price != ?", []any{1000}},
		{Raw{Column: "colour", Operator: "gt", Value: 2.5}, "colour > ?", []any{2.5}},
		{Raw{Column: "colour", Operator: "lt", Value: 2.5}, "colour < ?", []any{2.5}},
		{Raw{Column: "yield", Operator: "gte", Value: 70}, "yield >= ?", []any{70}},
		{Raw{Column: "yield", Operator: "lte", Value: 70}, "yield <= ?", []any{70}},
		{Raw{Column: "sale_date", Operator: "between", Value: "2024-01-01", Value2: "2024-03-31"}, "sale_date BETWEEN ? AND ?", []any{"2024-01-01", "2024-03-31"}},
		{Raw{Column: "location", Operator: "contains", Value: "Napier"}, "location LIKE ?", []any{"%Napier%"}},
		{Raw{Column: "seller_name", Operator: "not_contains", Value: "Ltd"}, "seller_name NOT LIKE ?", []any{"%Ltd%"}},
		{Raw{Column: "micron", Operator: "contains", Value: 3}, "CAST(micron AS TEXT) LIKE ?", []any{"%3%"}},
	}

	for _, tt := range tests {
		q := Compile(Input{Predicates: []Raw{tt.raw}})
		if len(q.Clauses) != 2 {
			t.Fatalf("%s %s: expected 2 clauses, got %d", tt.raw.Column, tt.raw.Operator, len(q.Clauses))
		}
		got := q.Clauses[1]
		if got.SQL != tt.wantSQL {
			t.Errorf("Expected SQL %q, got %q", tt.wantSQL, got.SQL)
		}
		if !reflect.DeepEqual(got.Args, tt.wantArgs) {
			t.Errorf("Expected args %v, got %v", tt.wantArgs, got.Args)
		}
		if got.Expr == nil {
			t.Errorf("Expected a gorm expression for %q", tt.wantSQL)
		}
	}
}

func TestCompileDropsMalformedPredicates(t *testing.T) {
	q := Compile(Input{Predicates: []Raw{
		{Column: "price", Operator: "between", Value: 100},
		{Column: "price", Operator: "", Value: 100},
		{Column: "price", Operator: "gt"},
		{Column: "price", Operator: "gt", Value: "   "},
		{Column: "price", Operator: "like", Value: 100},
	}})

	if len(q.Clauses) != 1 {
		t.Errorf("Expected only the price floor clause, got %q", q.Where())
	}
	if len(q.Rejected) != 5 {
		t.Errorf("Expected 5 rejections, got %d", len(q.Rejected))
	}
}

func TestCompileTypeSearchModes(t *testing.T) {
	sub := Compile(Input{TypeSearch: " 1234 ", TypeMatch: MatchSubstring})
	if got := sub.Clauses[1]; got.SQL != "(CAST(wool_type_id AS TEXT) LIKE ? OR type_combined LIKE ?)" ||
		!reflect.DeepEqual(got.Args, []any{"%1234%", "%1234%"}) {
		t.Errorf("Unexpected substring clause %q %v", got.SQL, got.Args)
	}

	exact := Compile(Input{TypeSearch: "1234", TypeMatch: MatchExact})
	if got := exact.Clauses[1]; got.SQL != "(CAST(wool_type_id AS TEXT) = ? OR type_combined LIKE ?)" ||
		!reflect.DeepEqual(got.Args, []any{"1234", "%1234%"}) {
		t.Errorf("Unexpected exact clause %q %v", got.SQL, got.Args)
	}

	blank := Compile(Input{TypeSearch: "   "})
	if len(blank.Clauses) != 1 {
		t.Errorf("Expected blank search to add nothing, got %q", blank.Where())
	}
}

func TestCompileExtraPredicates(t *testing.T) {
	q := Compile(Input{
		PriceFloor: 50,
		Extra: []Predicate{
			AtLeast(SaleDate, "2024-01-01"),
			AtMost(SaleDate, "2024-06-30"),
			{Operator: Eq, Value: 1},
		},
	})

	want := "price > ? AND sale_date >= ? AND sale_date <= ?"
	if q.Where() != want {
		t.Errorf("Expected %q, got %q", want, q.Where())
	}
	if q.Args()[0] != int64(50) {
		t.Errorf("Expected custom floor 50, got %v", q.Args()[0])
	}
	if len(q.Rejected) != 1 {
		t.Errorf("Expected zero column to be rejected, got %d rejections", len(q.Rejected))
	}
}

func TestParseMatchMode(t *testing.T) {
	if m, err := ParseMatchMode("EXACT"); err != nil || m != MatchExact {
		t.Errorf("Expected exact, got %q (%v)", m, err)
	}
	if m, err := ParseMatchMode(""); err != nil || m != MatchSubstring {
		t.Errorf("Expected substring default, got %q (%v)", m, err)
	}
	if _, err := ParseMatchMode("fuzzy"); err == nil {
		t.Error("Expected error for unknown mode, got nil")
	}
}
