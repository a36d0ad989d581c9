package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "woolauction_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"endpoint", "status"},
	)

	RowsFetched = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "woolauction_rows_fetched",
			Help:    "Lot rows returned by the store per request",
			Buckets: []float64{0, 10, 100, 1000, 10000, 100000},
		},
		[]string{"endpoint"},
	)

	RejectedPredicates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "woolauction_rejected_predicates_total",
			Help: "Column filters dropped by the predicate compiler",
		},
		[]string{"reason"},
	)

	InsufficientData = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "woolauction_insufficient_data_total",
			Help: "Analyses that returned an insufficient data outcome",
		},
		[]string{"endpoint"},
	)

	RegressionWeeks = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "woolauction_regression_weeks_retained",
			Help:    "Weekly cohorts retained per regression request",
			Buckets: []float64{0, 1, 4, 13, 26, 52, 104},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "woolauction_cache_hits_total",
			Help: "Response cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "woolauction_cache_misses_total",
			Help: "Response cache misses",
		},
		[]string{"cache_type"},
	)

	ExportRecordsLoaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "woolauction_export_records_loaded_total",
			Help: "Trade export records loaded from CSV files",
		},
	)
)

var once sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestDuration,
			RowsFetched,
			RejectedPredicates,
			InsufficientData,
			RegressionWeeks,
			CacheHits,
			CacheMisses,
			ExportRecordsLoaded,
		)
	})
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
