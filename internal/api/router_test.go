package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nutralink/directory/internal/app"
	iauth "github.com/nutralink/directory/internal/auth"
	"github.com/nutralink/directory/internal/database/testutil"
	"github.com/nutralink/directory/internal/monitoring"
)

func newTestRouter(t *testing.T, cfg *app.Config, deps Dependencies) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "router-secret", Issuer: "test", AccessTokenTTL: 15 * time.Minute})
	require.NoError(t, err)

	router, err := NewRouter(db, jwtSvc, cfg, deps)
	require.NoError(t, err)
	return router
}

func serve(router http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(rec, req)
	return rec
}

func TestNewRouterValidatesArguments(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "router-secret"})
	require.NoError(t, err)

	_, err = NewRouter(nil, jwtSvc, &app.Config{}, Dependencies{})
	require.Error(t, err)
	_, err = NewRouter(db, nil, &app.Config{}, Dependencies{})
	require.Error(t, err)
	_, err = NewRouter(db, jwtSvc, nil, Dependencies{})
	require.Error(t, err)
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	router := newTestRouter(t, &app.Config{}, Dependencies{})

	rec := serve(router, http.MethodGet, "/api/search?q=turmeric")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "Malabar Spice Extracts")

	require.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/companies").Code)

	for _, path := range []string{"/api/saved", "/api/saved/count", "/api/workspace/templates", "/api/workspace/emails", "/api/insights/searches", "/api/audit"} {
		rec := serve(router, http.MethodGet, path)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	// Without a hub the realtime route is not mounted.
	require.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/realtime").Code)
	require.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/monitoring/summary").Code)
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, &app.Config{}, Dependencies{})

	rec := serve(router, http.MethodGet, "/api/nowhere")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "route /api/nowhere not found")

	rec = serve(router, http.MethodPut, "/api/search")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	mon, err := monitoring.NewModule(monitoring.Options{SkipDefaultGatherer: true})
	require.NoError(t, err)
	monitoring.SetModule(mon)

	cfg := &app.Config{
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "metrics"},
		},
	}
	router := newTestRouter(t, cfg, Dependencies{Monitoring: mon})

	rec := serve(router, http.MethodGet, "/api/search?q=whey+protein")
	require.Equal(t, http.StatusOK, rec.Code)

	metricsRec := serve(router, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, metricsRec.Code)
	body := metricsRec.Body.String()
	require.True(t, strings.Contains(body, "directory_api_latency_seconds"), body)
	require.True(t, strings.Contains(body, "directory_search_requests_total"), body)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := &app.Config{
		Server: app.ServerConfig{
			RateLimit: app.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Minute},
		},
	}
	router := newTestRouter(t, cfg, Dependencies{})

	require.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/companies").Code)
	require.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/companies").Code)
	rec := serve(router, http.MethodGet, "/api/companies")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}
