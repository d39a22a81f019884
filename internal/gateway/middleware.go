package gateway

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDMiddleware generates a unique request ID for correlating gateway
// and user-service log lines
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()

		// Store in context for downstream use
		c.Set("request_id", requestID)

		// Add to response headers for client correlation
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()
	}
}

// LoggingMiddleware logs all requests passing through the gateway with structured JSON
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Wrap the response writer to capture response size
		rw := newResponseWriter(c.Writer)
		c.Writer = rw

		// Process request
		c.Next()

		latency := time.Since(start)

		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		method := c.Request.Method
		// Use Gin's writer Status() which handles aborted requests correctly
		status := c.Writer.Status()
		responseSize := rw.Size()
		clientIP := c.ClientIP()
		requestID := c.GetString("request_id")

		attrs := []any{
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", status,
			"latency_ms", float64(latency.Milliseconds()),
			"client_ip", clientIP,
			"response_size", responseSize,
		}

		if query != "" {
			attrs = append(attrs, "query", query)
		}

		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		// Log level tracks the status class
		switch {
		case status >= 500:
			slog.Error("Request failed - server error", attrs...)
		case status >= 400:
			slog.Warn("Request failed - client error", attrs...)
		default:
			slog.Info("Request completed", attrs...)
		}
	}
}
