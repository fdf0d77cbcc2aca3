package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shush-app/guarded-blocking-go/pkg/logger"
)

// RequestLogger logs every completed HTTP request with method, path, status
// and duration. Pass nil to use the package logger.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Named("http")
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Info("Request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("durationMs", time.Since(start).Milliseconds()),
			zap.String("clientIp", c.ClientIP()),
		)
	}
}
