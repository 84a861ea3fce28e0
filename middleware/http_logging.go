package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OutcomeKey holds a short label a handler sets for what the request ended
// in, such as "session_created" or a rejection reason.
const OutcomeKey = "outcome"

// RequestLogger writes one line per request once the chain has finished. The
// line carries the handler's outcome and, when a handler reported one through
// c.Error, the underlying cause. Level follows the status class.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("route", routeOf(c)),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if outcome := c.GetString(OutcomeKey); outcome != "" {
			fields = append(fields, zap.String("outcome", outcome))
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, zap.NamedError("cause", last.Err))
		}

		switch {
		case status >= 500:
			logger.Error("http_request", fields...)
		case status >= 400:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
	}
}

// routeOf is the registered route template, so ids in paths do not explode
// log and metric cardinality.
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
