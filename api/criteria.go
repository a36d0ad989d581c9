package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/viktsys/woolauction/analysis"
	"github.com/viktsys/woolauction/filter"
	"github.com/viktsys/woolauction/metrics"
	"go.uber.org/zap"
)

// Criteria is the row selection shared by every lot endpoint.
type Criteria struct {
	WoolTypeSearch string       `json:"wool_type_search"`
	ColumnFilters  []filter.Raw `json:"column_filters"`
	DateFrom       string       `json:"date_from"`
	DateTo         string       `json:"date_to"`
}

// dates parses the optional date bounds.
func (cr Criteria) dates() (from, to *time.Time, err error) {
	parse := func(name, s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse(analysis.DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s, use YYYY-MM-DD", name)
		}
		return &t, nil
	}
	if from, err = parse("date_from", cr.DateFrom); err != nil {
		return nil, nil, err
	}
	if to, err = parse("date_to", cr.DateTo); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func dateRange(from, to *time.Time) []filter.Predicate {
	var out []filter.Predicate
	if from != nil {
		out = append(out, filter.AtLeast(filter.SaleDate, *from))
	}
	if to != nil {
		out = append(out, filter.AtMost(filter.SaleDate, *to))
	}
	return out
}

// compile builds the query for cr using the given type match setting. Dropped
// predicates are logged and counted, never returned to the client as errors.
func (h *Handler) compile(c *gin.Context, cr Criteria, match string, extra ...filter.Predicate) (filter.Query, error) {
	mode, err := filter.ParseMatchMode(match)
	if err != nil {
		return filter.Query{}, err
	}

	from, to, err := cr.dates()
	if err != nil {
		return filter.Query{}, err
	}

	q := filter.Compile(filter.Input{
		TypeSearch: cr.WoolTypeSearch,
		TypeMatch:  mode,
		Predicates: cr.ColumnFilters,
		Extra:      append(dateRange(from, to), extra...),
		PriceFloor: h.cfg.Query.PriceFloor,
	})

	for _, r := range q.Rejected {
		metrics.RejectedPredicates.WithLabelValues(r.Reason).Inc()
		h.log.Warn("Dropped column filter",
			zap.String("endpoint", c.FullPath()),
			zap.String("column", r.Column),
			zap.String("operator", r.Operator),
			zap.String("reason", r.Reason),
		)
	}
	return q, nil
}

// setRows records how many lots a request touched for the analytics log.
func setRows(c *gin.Context, n int) {
	c.Set(rowsKey, n)
	metrics.RowsFetched.WithLabelValues(c.FullPath()).Observe(float64(n))
}
