package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/viktsys/woolauction/analysis"
	"github.com/viktsys/woolauction/database"
	"github.com/viktsys/woolauction/filter"
	"github.com/viktsys/woolauction/models"
)

// lotRow renders a lot with its sale date as YYYY-MM-DD.
type lotRow struct {
	models.Lot
	SaleDate string `json:"sale_date"`
}

func (h *Handler) Search(c *gin.Context) {
	var req Criteria
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	q, err := h.compile(c, req, h.cfg.Query.TypeMatch.Search)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	lots, err := h.lots.FetchLots(c.Request.Context(), q, database.FetchOptions{
		Limit:       h.cfg.Query.RowLimit,
		NewestFirst: true,
	})
	if err != nil {
		h.serverError(c, err)
		return
	}
	setRows(c, len(lots))

	rows := make([]lotRow, len(lots))
	for i, l := range lots {
		rows[i] = lotRow{Lot: l}
		if !l.SaleDate.IsZero() {
			rows[i].SaleDate = l.SaleDate.Format(analysis.DateLayout)
		}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "results": rows})
}

type PriceChartRequest struct {
	Criteria
	IncludeStats   bool `json:"include_stats"`
	IncludeQuality bool `json:"include_quality"`
}

type qualityPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Total int    `json:"total"`
}

func (h *Handler) PriceChart(c *gin.Context) {
	var req PriceChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	q, err := h.compile(c, req.Criteria, h.cfg.Query.TypeMatch.Charts)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	lots, err := h.lots.FetchLots(c.Request.Context(), q, database.FetchOptions{})
	if err != nil {
		h.serverError(c, err)
		return
	}
	setRows(c, len(lots))

	agg := analysis.AggregateWeighted(analysis.ByDate(lots))
	labels := make([]string, len(agg.Groups))
	data := make([]float64, len(agg.Groups))
	for i, g := range agg.Groups {
		labels[i] = g.Key
		data[i] = g.Value
	}

	resp := gin.H{"labels": labels, "data": data}
	if req.IncludeStats {
		resp["stats"] = agg.Stats
	}
	if req.IncludeQuality {
		quality := make([]qualityPoint, len(agg.Groups))
		for i, g := range agg.Groups {
			quality[i] = qualityPoint{Date: g.Key, Count: g.Count, Total: g.Total}
		}
		resp["quality"] = quality
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) BalesChart(c *gin.Context) {
	var req Criteria
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	q, err := h.compile(c, req, h.cfg.Query.TypeMatch.Charts)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	days, err := h.lots.BalesByDate(c.Request.Context(), q)
	if err != nil {
		h.serverError(c, err)
		return
	}
	setRows(c, len(days))

	labels := make([]string, 0, len(days))
	data := make([]float64, 0, len(days))
	for _, d := range days {
		if d.SaleDate.IsZero() || d.TotalBales == 0 {
			continue
		}
		labels = append(labels, d.SaleDate.Format(analysis.DateLayout))
		data = append(data, d.TotalBales)
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels, "data": data})
}

// CompareEntity is one line of a comparison: a single wool type, or several
// types blended into one line.
type CompareEntity struct {
	Label         string       `json:"label"`
	WoolType      string       `json:"wool_type"`
	WoolTypes     []string     `json:"wool_types"`
	ColumnFilters []filter.Raw `json:"column_filters"`
}

func (e CompareEntity) types() []string {
	var out []string
	for _, t := range append([]string{e.WoolType}, e.WoolTypes...) {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (e CompareEntity) label() string {
	if e.Label != "" {
		return e.Label
	}
	return strings.Join(e.types(), " + ")
}

type CompareRequest struct {
	Entities []CompareEntity `json:"entities"`
	DateFrom string          `json:"date_from"`
	DateTo   string          `json:"date_to"`
}

func (h *Handler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if n := len(req.Entities); n == 0 || n > analysis.MaxCompareEntities {
		h.badRequest(c, fmt.Errorf("between 1 and %d entities can be compared, got %d", analysis.MaxCompareEntities, n))
		return
	}

	ctx := c.Request.Context()
	entities := make([]analysis.Entity, len(req.Entities))
	fetched := 0
	for i, e := range req.Entities {
		types := e.types()
		if len(types) == 0 {
			types = []string{""}
		}

		entity := analysis.Entity{Label: e.label()}
		for _, t := range types {
			q, err := h.compile(c, Criteria{
				WoolTypeSearch: t,
				ColumnFilters:  e.ColumnFilters,
				DateFrom:       req.DateFrom,
				DateTo:         req.DateTo,
			}, h.cfg.Query.TypeMatch.Compare)
			if err != nil {
				h.badRequest(c, err)
				return
			}

			lots, err := h.lots.FetchLots(ctx, q, database.FetchOptions{})
			if err != nil {
				h.serverError(c, err)
				return
			}
			fetched += len(lots)
			entity.Parts = append(entity.Parts, analysis.AggregateWeighted(analysis.ByDate(lots)).Series())
		}
		entities[i] = entity
	}
	setRows(c, fetched)

	cmp, err := analysis.Compare(entities)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}
