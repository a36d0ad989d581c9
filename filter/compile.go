package filter

import (
	"fmt"
	"strings"

	"gorm.io/gorm/clause"
)

// DefaultPriceFloor is applied to every compiled query; rows at or below it
// never reach any analysis.
const DefaultPriceFloor int64 = 10

// MatchMode selects how the free-text wool type search matches the numeric
// type identifier.
type MatchMode string

const (
	MatchSubstring MatchMode = "substring"
	MatchExact     MatchMode = "exact"
)

func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case MatchSubstring, "":
		return MatchSubstring, nil
	case MatchExact:
		return MatchExact, nil
	}
	return "", fmt.Errorf("unknown type match mode %q", s)
}

// Clause is one parameterized WHERE fragment. SQL only ever contains
// whitelisted column names and `?` placeholders and is the readable form
// used in logs. Expr is the same condition as a gorm expression, which lets
// the dialect quote column names.
type Clause struct {
	SQL  string
	Args []any
	Expr clause.Expression
}

// Query is the compiled result: clauses to AND together plus the raw
// predicates that were dropped on the way.
type Query struct {
	Clauses  []Clause
	Rejected []Rejection
}

// Where joins all clauses with AND.
func (q Query) Where() string {
	parts := make([]string, len(q.Clauses))
	for i, c := range q.Clauses {
		parts[i] = c.SQL
	}
	return strings.Join(parts, " AND ")
}

// Expression ANDs every clause as one gorm condition.
func (q Query) Expression() clause.Expression {
	exprs := make([]clause.Expression, len(q.Clauses))
	for i, c := range q.Clauses {
		exprs[i] = c.Expr
	}
	return clause.And(exprs...)
}

// Args flattens the bound parameters in clause order.
func (q Query) Args() []any {
	var args []any
	for _, c := range q.Clauses {
		args = append(args, c.Args...)
	}
	return args
}

// Input is everything a caller can ask the compiler for.
type Input struct {
	TypeSearch string
	TypeMatch  MatchMode
	Predicates []Raw
	// Extra predicates are built by the server (date windows, entity types)
	// and bypass wire parsing, not the whitelist.
	Extra      []Predicate
	PriceFloor int64
}

// Compile turns an Input into a Query. The price floor clause always comes first.
func Compile(in Input) Query {
	floor := in.PriceFloor
	if floor <= 0 {
		floor = DefaultPriceFloor
	}
	q := Query{Clauses: []Clause{compare(Price.name, Gt, floor)}}

	if c, ok := typeSearch(in.TypeSearch, in.TypeMatch); ok {
		q.Clauses = append(q.Clauses, c)
	}

	preds, rejected := Parse(in.Predicates)
	q.Rejected = rejected
	for _, p := range append(preds, in.Extra...) {
		c, err := compileOne(p)
		if err != nil {
			q.Rejected = append(q.Rejected, Rejection{Column: p.Column.String(), Operator: string(p.Operator), Reason: err.Error()})
			continue
		}
		q.Clauses = append(q.Clauses, c)
	}
	return q
}

func typeSearch(term string, mode MatchMode) (Clause, bool) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Clause{}, false
	}
	like := "%" + term + "%"
	id, combined := clause.Column{Name: "wool_type_id"}, clause.Column{Name: "type_combined"}
	if mode == MatchExact {
		return Clause{
			SQL:  "(CAST(wool_type_id AS TEXT) = ? OR type_combined LIKE ?)",
			Args: []any{term, like},
			Expr: clause.Expr{SQL: "(CAST(? AS TEXT) = ? OR ? LIKE ?)", Vars: []any{id, term, combined, like}},
		}, true
	}
	return Clause{
		SQL:  "(CAST(wool_type_id AS TEXT) LIKE ? OR type_combined LIKE ?)",
		Args: []any{like, like},
		Expr: clause.Expr{SQL: "(CAST(? AS TEXT) LIKE ? OR ? LIKE ?)", Vars: []any{id, like, combined, like}},
	}, true
}

var comparisons = map[Operator]string{
	Eq:  "=",
	Ne:  "!=",
	Gt:  ">",
	Lt:  "<",
	Gte: ">=",
	Lte: "<=",
}

func compare(col string, op Operator, v any) Clause {
	c := clause.Column{Name: col}
	var expr clause.Expression
	switch op {
	case Eq:
		expr = clause.Eq{Column: c, Value: v}
	case Ne:
		expr = clause.Neq{Column: c, Value: v}
	case Gt:
		expr = clause.Gt{Column: c, Value: v}
	case Lt:
		expr = clause.Lt{Column: c, Value: v}
	case Gte:
		expr = clause.Gte{Column: c, Value: v}
	case Lte:
		expr = clause.Lte{Column: c, Value: v}
	}
	return Clause{SQL: fmt.Sprintf("%s %s ?", col, comparisons[op]), Args: []any{v}, Expr: expr}
}

func compileOne(p Predicate) (Clause, error) {
	if _, ok := whitelist[p.Column.name]; !ok || p.Column.IsZero() {
		return Clause{}, fmt.Errorf("column not allowed")
	}
	col := p.Column.name
	ref := clause.Column{Name: col}

	if _, ok := comparisons[p.Operator]; ok {
		return compare(col, p.Operator, p.Value), nil
	}

	switch p.Operator {
	case Between:
		if missing(p.Value2) {
			return Clause{}, fmt.Errorf("between requires value2")
		}
		return Clause{
			SQL:  col + " BETWEEN ? AND ?",
			Args: []any{p.Value, p.Value2},
			Expr: clause.Expr{SQL: "? BETWEEN ? AND ?", Vars: []any{ref, p.Value, p.Value2}},
		}, nil
	case Contains, NotContains:
		// Numeric columns are accepted too; they are compared on their text form.
		target, exprTarget := col, "?"
		if !p.Column.textual {
			target, exprTarget = "CAST("+col+" AS TEXT)", "CAST(? AS TEXT)"
		}
		verb := "LIKE"
		if p.Operator == NotContains {
			verb = "NOT LIKE"
		}
		like := fmt.Sprintf("%%%v%%", p.Value)
		return Clause{
			SQL:  fmt.Sprintf("%s %s ?", target, verb),
			Args: []any{like},
			Expr: clause.Expr{SQL: exprTarget + " " + verb + " ?", Vars: []any{ref, like}},
		}, nil
	}
	return Clause{}, fmt.Errorf("unknown operator")
}

// Convenience constructors for server-built predicates.

func Equal(c Column, v any) Predicate { return Predicate{Column: c, Operator: Eq, Value: v} }
func AtLeast(c Column, v any) Predicate { return Predicate{Column: c, Operator: Gte, Value: v} }
func AtMost(c Column, v any) Predicate { return Predicate{Column: c, Operator: Lte, Value: v} }
func Range(c Column, lo, hi any) Predicate { return Predicate{Column: c, Operator: Between, Value: lo, Value2: hi} }
