package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/viktsys/woolauction/metrics"
	"go.uber.org/zap"
)

const (
	requestIDKey = "request_id"
	rowsKey      = "rows"
)

// observe tags each request with an id, records its duration, and appends an
// analytics event for /api requests.
func (h *Handler) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := uuid.NewString()
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		metrics.RequestDuration.WithLabelValues(endpoint, strconv.Itoa(status)).Observe(elapsed.Seconds())

		h.log.Debug("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("took", elapsed),
		)

		if !strings.HasPrefix(endpoint, "/api/") {
			return
		}
		h.events.Info("request",
			zap.String("request_id", id),
			zap.String("endpoint", endpoint),
			zap.Int("status", status),
			zap.Float64("duration_ms", float64(elapsed.Microseconds())/1000),
			zap.Int("rows", c.GetInt(rowsKey)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
