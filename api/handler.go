package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/viktsys/woolauction/analysis"
	"github.com/viktsys/woolauction/cache"
	"github.com/viktsys/woolauction/config"
	"github.com/viktsys/woolauction/database"
	"github.com/viktsys/woolauction/filter"
	"github.com/viktsys/woolauction/ingest"
	"github.com/viktsys/woolauction/metrics"
	"github.com/viktsys/woolauction/models"
	"go.uber.org/zap"
)

// LotSource fetches lots for a compiled query. *database.Store implements it.
type LotSource interface {
	FetchLots(ctx context.Context, q filter.Query, opts database.FetchOptions) ([]models.Lot, error)
	BalesByDate(ctx context.Context, q filter.Query) ([]models.DailyBales, error)
	FilterRanges(ctx context.Context, floor int64) (models.FilterRanges, error)
	Ping(ctx context.Context) error
}

// ExportSource reads trade export files. *ingest.Loader implements it.
type ExportSource interface {
	Files() ([]ingest.ExportFile, error)
	Load(ctx context.Context, names []string, opts ingest.Options) ([]models.TradeExport, error)
}

type Handler struct {
	lots    LotSource
	exports ExportSource
	cache   cache.Cache
	cfg     *config.Config
	log     *zap.Logger
	events  *zap.Logger
	now     func() time.Time
}

func NewHandler(lots LotSource, exports ExportSource, c cache.Cache, cfg *config.Config, log, events *zap.Logger) *Handler {
	if c == nil {
		c = cache.Nop{}
	}
	if events == nil {
		events = zap.NewNop()
	}
	return &Handler{
		lots:    lots,
		exports: exports,
		cache:   c,
		cfg:     cfg,
		log:     log,
		events:  events,
		now:     time.Now,
	}
}

func (h *Handler) SetupRoutes() *gin.Engine {
	r := gin.New()
	r.Use(h.observe(), gin.Recovery())

	r.GET("/health", h.Health)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/filters", h.GetFilters)
	api.POST("/search", h.Search)
	api.POST("/price_chart", h.PriceChart)
	api.POST("/bales_chart", h.BalesChart)
	api.POST("/compare", h.Compare)

	an := api.Group("/analysis")
	an.POST("/distribution", h.Distribution)
	an.POST("/timeseries", h.TimeSeries)
	an.POST("/regression", h.Regression)
	an.POST("/scenario", h.Scenario)
	an.POST("/benchmark", h.Benchmark)

	ex := api.Group("/exports")
	ex.GET("/files", h.ExportFiles)
	ex.POST("/summary", h.ExportSummary)

	return r
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.lots.Ping(ctx); err != nil {
		h.log.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetFilters(c *gin.Context) {
	ctx := c.Request.Context()
	floor := h.cfg.Query.PriceFloor
	key := cache.Key("filters", fmt.Sprint(floor))

	var ranges models.FilterRanges
	if h.cached(ctx, "filters", key, &ranges) {
		c.JSON(http.StatusOK, gin.H{"ranges": ranges})
		return
	}

	ranges, err := h.lots.FilterRanges(ctx, floor)
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.store(ctx, key, ranges)
	c.JSON(http.StatusOK, gin.H{"ranges": ranges})
}

// cached reports whether key was found and decoded into dst. Cache errors
// count as misses.
func (h *Handler) cached(ctx context.Context, kind, key string, dst any) bool {
	found, err := h.cache.GetJSON(ctx, key, dst)
	if err != nil {
		h.log.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		metrics.CacheHits.WithLabelValues(kind).Inc()
		return true
	}
	metrics.CacheMisses.WithLabelValues(kind).Inc()
	return false
}

func (h *Handler) store(ctx context.Context, key string, value any) {
	if err := h.cache.SetJSON(ctx, key, value, h.cfg.Redis.TTL); err != nil {
		h.log.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.log.Error("Request failed", zap.String("endpoint", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// analysisError renders insufficient data as a normal outcome and anything
// else as a bad request.
func (h *Handler) analysisError(c *gin.Context, err error) {
	if errors.Is(err, analysis.ErrInsufficientData) {
		metrics.InsufficientData.WithLabelValues(c.FullPath()).Inc()
		c.JSON(http.StatusOK, gin.H{"status": "insufficient_data", "message": err.Error()})
		return
	}
	h.badRequest(c, err)
}
