package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studyhub/internal/util"
	log "studyhub/pkg/logger"
	"studyhub/pkg/metrics"
	"studyhub/pkg/trace"
)

// TraceMiddleware attaches a fresh trace id to the request context.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := trace.WithTraceID(c.Request.Context(), trace.NewTraceID())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogMiddleware logs every request and records its latency.
func RequestLogMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		metrics.RecordHTTPRequestDuration(c.Request.Method, c.FullPath(), strconv.Itoa(status), latency)

		log.WithTrace(c.Request.Context(), logger).Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// AuthMiddleware validates the bearer token and stores user_id in the
// gin context for handlers.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		userID, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
