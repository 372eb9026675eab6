package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/filekit/logger"
	"github.com/kbukum/filekit/observability"
)

var healthPaths = map[string]bool{
	"/health": true,
	"/alive":  true,
	"/ready":  true,
}

// RequestLogger logs every request with method, route, status and
// duration, and records request metrics when metrics is non-nil. Probe
// paths are served without logging.
func RequestLogger(log *logger.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if healthPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		if metrics != nil {
			metrics.RecordRequestStart(ctx)
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if metrics != nil {
			metrics.RecordRequestEnd(ctx, c.Request.Method, route, status, duration)
		}

		fields := map[string]interface{}{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"route":              route,
			logger.FieldStatus:   status,
			logger.FieldDuration: duration.Milliseconds(),
			"client":             c.ClientIP(),
		}
		if errs := c.Errors.String(); errs != "" {
			fields[logger.FieldError] = errs
		}
		logByStatus(log.WithContext(ctx), fields, status)
	}
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("request completed", fields)
	case status >= 400:
		log.Warn("request completed", fields)
	default:
		log.Debug("request completed", fields)
	}
}
