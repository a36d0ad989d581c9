// Package filter turns user-supplied column predicates into bounded,
// parameterized WHERE fragments over the lot table.
package filter

import (
	"fmt"
	"sort"
	"strings"
)

// Column is one of the whitelisted lot columns. Values only exist as the
// package-level variables below, so a Column can never carry arbitrary text.
type Column struct {
	name    string
	textual bool
}

func (c Column) String() string { return c.name }

// IsZero reports whether c is the zero Column, which never compiles.
func (c Column) IsZero() bool { return c.name == "" }

var (
	Price           = Column{name: "price"}
	Bales           = Column{name: "bales"}
	Kg              = Column{name: "kg"}
	Colour          = Column{name: "colour"}
	Micron          = Column{name: "micron"}
	Yield           = Column{name: "yield"}
	VegetableMatter = Column{name: "vegetable_matter"}
	SaleDate        = Column{name: "sale_date"}
	Location        = Column{name: "location", textual: true}
	SellerName      = Column{name: "seller_name", textual: true}
	FarmBrandName   = Column{name: "farm_brand_name", textual: true}
	WoolTypeID      = Column{name: "wool_type_id"}
	TypeCombined    = Column{name: "type_combined", textual: true}
	LotNumber       = Column{name: "lot_number", textual: true}
	IsSold          = Column{name: "is_sold"}
)

var whitelist = func() map[string]Column {
	m := make(map[string]Column)
	for _, c := range []Column{
		Price, Bales, Kg, Colour, Micron, Yield, VegetableMatter, SaleDate,
		Location, SellerName, FarmBrandName, WoolTypeID, TypeCombined, LotNumber, IsSold,
	} {
		m[c.name] = c
	}
	return m
}()

// LookupColumn resolves a column name against the whitelist.
func LookupColumn(name string) (Column, bool) {
	c, ok := whitelist[name]
	return c, ok
}

// Columns returns the whitelisted column names in sorted order.
func Columns() []string {
	names := make([]string, 0, len(whitelist))
	for name := range whitelist {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Operator string

const (
	Eq          Operator = "eq"
	Ne          Operator = "ne"
	Gt          Operator = "gt"
	Lt          Operator = "lt"
	Gte         Operator = "gte"
	Lte         Operator = "lte"
	Between     Operator = "between"
	Contains    Operator = "contains"
	NotContains Operator = "not_contains"
)

func (o Operator) valid() bool {
	switch o {
	case Eq, Ne, Gt, Lt, Gte, Lte, Between, Contains, NotContains:
		return true
	}
	return false
}

// Predicate is a validated column predicate. Value2 is only used by Between.
type Predicate struct {
	Column   Column
	Operator Operator
	Value    any
	Value2   any
}

// Raw is the wire shape of a predicate as sent by clients.
type Raw struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
	Value2   any    `json:"value2,omitempty"`
}

// Rejection records why a raw predicate was dropped.
type Rejection struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Reason   string `json:"reason"`
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s %s: %s", r.Column, r.Operator, r.Reason)
}

// Parse validates raw predicates. Invalid entries are dropped and reported,
// never returned as an error.
func Parse(raws []Raw) ([]Predicate, []Rejection) {
	var (
		preds    []Predicate
		rejected []Rejection
	)
	for _, raw := range raws {
		p, reason := parseOne(raw)
		if reason != "" {
			rejected = append(rejected, Rejection{Column: raw.Column, Operator: raw.Operator, Reason: reason})
			continue
		}
		preds = append(preds, p)
	}
	return preds, rejected
}

func parseOne(raw Raw) (Predicate, string) {
	if raw.Column == "" || raw.Operator == "" || missing(raw.Value) {
		return Predicate{}, "column, operator and value are required"
	}
	col, ok := LookupColumn(raw.Column)
	if !ok {
		return Predicate{}, "column not allowed"
	}
	op := Operator(raw.Operator)
	if !op.valid() {
		return Predicate{}, "unknown operator"
	}
	if op == Between && missing(raw.Value2) {
		return Predicate{}, "between requires value2"
	}
	return Predicate{Column: col, Operator: op, Value: raw.Value, Value2: raw.Value2}, ""
}

func missing(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
