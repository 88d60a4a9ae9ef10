package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultContentSecurityPolicy forbids loading or framing anything from API responses.
const DefaultContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeaders hardens directory API responses. HSTS is only sent on
// requests that arrived over HTTPS, directly or through a proxy, and responses
// to authenticated requests (saved lists, outreach history) are never cached.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Content-Security-Policy", DefaultContentSecurityPolicy)
		h.Set("Referrer-Policy", "no-referrer")

		if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		if c.GetHeader("Authorization") != "" {
			h.Set("Cache-Control", "no-store")
		}
		c.Next()
	}
}
