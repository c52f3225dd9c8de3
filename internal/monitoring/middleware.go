package monitoring

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware records request metrics and logs every request with method,
// path, client IP, status and duration.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		metrics.RecordRequest(duration, status >= 400)

		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
			"status", status,
			"duration_ms", duration.Milliseconds(),
		)

		if duration > 5*time.Second {
			slog.Warn("slow request",
				"path", c.Request.URL.Path,
				"duration_ms", duration.Milliseconds(),
			)
		}
	}
}
