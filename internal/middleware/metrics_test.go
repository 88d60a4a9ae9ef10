package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nutralink/directory/internal/monitoring"
)

func TestMetricsSkipsProbeRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mod, err := monitoring.NewModule(monitoring.Options{SkipDefaultGatherer: true})
	require.NoError(t, err)
	monitoring.SetModule(mod)

	r := gin.New()
	r.Use(Metrics("/health", ""))
	r.GET("/health/ready", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/companies/:slug", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/health/ready", "/api/companies/acme-herbals"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	mod.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	require.Contains(t, body, `directory_api_latency_seconds_count{method="GET",path="api/companies/:slug",status="404"} 1`)
	require.NotContains(t, body, `path="health/ready"`)
}
