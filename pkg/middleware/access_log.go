package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devtree/devtree/backend/api/pkg/logger"
	"github.com/devtree/devtree/backend/api/pkg/metrics"
)

// AccessLog logs one line per request and counts it by route and status.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": GetRequestID(c),
		}
		if u, ok := CurrentUser(c); ok {
			fields["user"] = u.ID.Hex()
		}
		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}
