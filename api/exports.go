package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viktsys/woolauction/cache"
	"github.com/viktsys/woolauction/ingest"
)

func (h *Handler) ExportFiles(c *gin.Context) {
	files, err := h.exports.Files()
	if err != nil {
		h.serverError(c, err)
		return
	}
	if files == nil {
		files = []ingest.ExportFile{}
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

type ExportSummaryRequest struct {
	Files []string `json:"files"`
	ingest.Options
	GroupBy string `json:"group_by"`
}

type ExportSummaryResponse struct {
	Summary    ingest.Summary      `json:"summary"`
	ByCategory []ingest.Total      `json:"by_category"`
	ByCountry  []ingest.Total      `json:"by_country"`
	ByMonth    []ingest.MonthTotal `json:"by_month"`
}

func (h *Handler) ExportSummary(c *gin.Context) {
	var req ExportSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if _, err := ingest.ByCategory(nil, req.GroupBy); err != nil {
		h.badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(raw)
	key := cache.Key("exports", "summary", hex.EncodeToString(sum[:]))

	var resp ExportSummaryResponse
	if h.cached(ctx, "exports", key, &resp) {
		c.JSON(http.StatusOK, resp)
		return
	}

	rows, err := h.exports.Load(ctx, req.Files, req.Options)
	if err != nil {
		h.serverError(c, err)
		return
	}
	setRows(c, len(rows))

	byCategory, _ := ingest.ByCategory(rows, req.GroupBy)
	resp = ExportSummaryResponse{
		Summary:    ingest.Summarize(rows),
		ByCategory: byCategory,
		ByCountry:  ingest.ByCountry(rows),
		ByMonth:    ingest.ByMonth(rows),
	}
	h.store(ctx, key, resp)
	c.JSON(http.StatusOK, resp)
}
