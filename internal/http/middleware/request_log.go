package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/heartcheck/internal/platform/ctxutil"
	"github.com/yungbote/heartcheck/internal/platform/logger"
)

// RequestLogger logs one line per request. Bodies are never logged since
// they carry patient data.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("component", "http")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if reqID := ctxutil.RequestID(c.Request.Context()); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		if err := c.Errors.Last(); err != nil {
			fields = append(fields, "error", err.Error())
		}

		logAt(log, status)("Request served", fields...)
	}
}

func logAt(log *logger.Logger, status int) func(string, ...interface{}) {
	switch {
	case status >= 500:
		return log.Error
	case status >= 400:
		return log.Warn
	default:
		return log.Info
	}
}
