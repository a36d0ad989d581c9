package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viktsys/woolauction/analysis"
	"github.com/viktsys/woolauction/database"
	"github.com/viktsys/woolauction/filter"
	"github.com/viktsys/woolauction/metrics"
	"github.com/viktsys/woolauction/models"
)

// fetchForAnalysis compiles cr and loads every matching lot in date order.
// It writes the error response itself and returns ok=false on failure.
func (h *Handler) fetchForAnalysis(c *gin.Context, cr Criteria, extra ...filter.Predicate) ([]models.Lot, bool) {
	q, err := h.compile(c, cr, h.cfg.Query.TypeMatch.Analysis, extra...)
	if err != nil {
		h.badRequest(c, err)
		return nil, false
	}
	lots, err := h.lots.FetchLots(c.Request.Context(), q, database.FetchOptions{})
	if err != nil {
		h.serverError(c, err)
		return nil, false
	}
	setRows(c, len(lots))
	return lots, true
}

type DistributionRequest struct {
	Criteria
	Variable string  `json:"variable"`
	BinWidth float64 `json:"bin_width"`
}

func (h *Handler) Distribution(c *gin.Context) {
	var req DistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	v, err := analysis.ParseVariable(req.Variable)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	if req.BinWidth <= 0 {
		h.badRequest(c, fmt.Errorf("bin_width must be positive"))
		return
	}

	lots, ok := h.fetchForAnalysis(c, req.Criteria)
	if !ok {
		return
	}
	res, err := analysis.Distribution(lots, v, req.BinWidth)
	if err != nil {
		h.analysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type TimeSeriesRequest struct {
	Criteria
	Variables   []string `json:"variables"`
	Granularity string   `json:"granularity"`
}

func (h *Handler) TimeSeries(c *gin.Context) {
	var req TimeSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	g, err := analysis.ParseGranularity(req.Granularity)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	if len(req.Variables) == 0 {
		req.Variables = []string{string(analysis.VarPrice)}
	}
	vars := make([]analysis.Variable, len(req.Variables))
	for i, name := range req.Variables {
		if vars[i], err = analysis.ParseVariable(name); err != nil {
			h.badRequest(c, err)
			return
		}
	}

	lots, ok := h.fetchForAnalysis(c, req.Criteria)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"granularity": g,
		"series":      analysis.TimeSeries(lots, vars, g),
	})
}

type RegressionRequest struct {
	Criteria
	SmoothingWindow int `json:"smoothing_window"`
}

func (h *Handler) Regression(c *gin.Context) {
	var req RegressionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if req.SmoothingWindow < 0 {
		h.badRequest(c, fmt.Errorf("smoothing_window must not be negative"))
		return
	}

	lots, ok := h.fetchForAnalysis(c, req.Criteria)
	if !ok {
		return
	}
	res, err := analysis.WeeklyRegression(lots, req.SmoothingWindow)
	if err != nil {
		h.analysisError(c, err)
		return
	}
	metrics.RegressionWeeks.Observe(float64(len(res.Weeks)))
	c.JSON(http.StatusOK, res)
}

type ScenarioRequest struct {
	Criteria
	Baseline analysis.FeatureInput `json:"baseline"`
	Scenario analysis.FeatureInput `json:"scenario"`
}

// Scenario fits one model over the trailing window and prices both feature
// vectors with it.
func (h *Handler) Scenario(c *gin.Context) {
	var req ScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	since := h.now().AddDate(0, 0, -h.cfg.Analysis.ScenarioWindowDays)
	lots, ok := h.fetchForAnalysis(c, req.Criteria, filter.AtLeast(filter.SaleDate, since))
	if !ok {
		return
	}

	m, err := analysis.FitPopulationModel(lots, h.cfg.Analysis.Quality.Bounds())
	if err != nil {
		h.analysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis.EvaluateScenario(m, req.Baseline.Resolve(), req.Scenario.Resolve()))
}

type BenchmarkRequest struct {
	Criteria
	Lot    *analysis.LotProfile `json:"lot"`
	Window string               `json:"window"`
}

func (h *Handler) Benchmark(c *gin.Context) {
	var req BenchmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if req.Window == "" {
		req.Window = string(analysis.WindowRecent)
	}

	from, to, err := req.dates()
	if err != nil {
		h.badRequest(c, err)
		return
	}
	start, end, err := analysis.ResolveWindow(analysis.Window(req.Window), h.now(), from, to)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	// The window replaces the raw date bounds.
	cr := req.Criteria
	cr.DateFrom, cr.DateTo = "", ""
	lots, ok := h.fetchForAnalysis(c, cr, filter.Range(filter.SaleDate, start, end))
	if !ok {
		return
	}

	res, err := analysis.Benchmark(lots, h.cfg.Analysis.Quality.Bounds(), req.Lot)
	if err != nil {
		h.analysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"window":    gin.H{"type": req.Window, "from": start.Format(analysis.DateLayout), "to": end.Format(analysis.DateLayout)},
		"benchmark": res,
	})
}
