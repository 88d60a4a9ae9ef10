package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/monitoring"
)

// Metrics observes API latency per route template. Probe and scrape
// endpoints are skipped so orchestrator polling does not drown the
// search and outreach series.
func Metrics(skip ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		for _, prefix := range skip {
			if prefix != "" && strings.HasPrefix(route, prefix) {
				return
			}
		}
		monitoring.ObserveAPILatency(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
