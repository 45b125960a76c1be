package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"budgettracker/internal/logger"
	"budgettracker/internal/uuid"
)

const requestIDKey = "requestID"

// RequestIDHeader carries the request id in both directions. A client may
// supply its own UUID, for example to correlate a retried sync call; any
// other value is replaced.
const RequestIDHeader = "X-Request-ID"

// RequestLogging tags every request with an id and logs it on completion.
// Server errors are logged at error level, client errors at warn level.
func RequestLogging() gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()

		requestID, ok := uuid.Canonical(c.GetHeader(RequestIDHeader))
		if !ok {
			requestID = uuid.New()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID := c.GetString("userID"); userID != "" {
			fields = append(fields, "user_id", userID)
		}

		switch {
		case status >= 500:
			log.Errorw("request", fields...)
		case status >= 400:
			log.Warnw("request", fields...)
		default:
			log.Infow("request", fields...)
		}
	}
}

// RequestID returns the id assigned to the request by RequestLogging.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
