package middleware

import (
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nutralink/directory/pkg/logger"
)

const (
	slowRequestThreshold = time.Second
	loggedQueryRunes     = 120
)

// Logger writes one structured access log line per request. Search requests
// carry the (truncated) query text; slow requests and server errors are
// logged at warn level.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()),
		}
		if q := c.Query("q"); q != "" {
			fields = append(fields, zap.String("query", truncateRunes(q, loggedQueryRunes)))
		}
		if userID := c.GetString(CtxUserIDKey); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		log := logger.WithModule("http")
		if status >= 500 || duration >= slowRequestThreshold {
			log.Warn("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}
