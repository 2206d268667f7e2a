package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/streamkit/logger"
)

// RequestLogger logs every finished request at a level chosen by its status.
// Probe endpoints are skipped. Event streams are logged when they close, so
// their latency is the connection lifetime.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isProbe(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logger.Fields(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start).String(),
			"client", c.ClientIP(),
		)
		if id, ok := c.Get("request_id"); ok {
			fields["request_id"] = id
		}

		switch {
		case status >= 500:
			log.Error("request completed", fields)
		case status >= 400:
			log.Warn("request completed", fields)
		default:
			log.Debug("request completed", fields)
		}
	}
}

func isProbe(path string) bool {
	return path == "/healthz" || path == "/version"
}
