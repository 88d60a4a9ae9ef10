package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/api"
	"github.com/nutralink/directory/internal/app"
	iauth "github.com/nutralink/directory/internal/auth"
	"github.com/nutralink/directory/internal/cache"
	sharedtestutil "github.com/nutralink/directory/internal/database/testutil"
	"github.com/nutralink/directory/internal/middleware"
	"github.com/nutralink/directory/internal/monitoring"
	"github.com/nutralink/directory/internal/monitoring/checks"
	"github.com/nutralink/directory/internal/realtime"
	"github.com/nutralink/directory/pkg/mail"
	"github.com/nutralink/directory/pkg/response"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T          *testing.T
	DB         *gorm.DB
	Router     *gin.Engine
	JWT        *iauth.JWTService
	Config     *app.Config
	Hub        *realtime.Hub
	Monitoring *monitoring.Module
}

// EnvOption customises the dependencies of NewEnv.
type EnvOption func(*app.Config, *api.Dependencies)

// WithMailer routes outreach email through mailer.
func WithMailer(mailer mail.Mailer) EnvOption {
	return func(_ *app.Config, deps *api.Dependencies) {
		deps.Mailer = mailer
	}
}

// WithRateLimit enables the rate limiter with the given budget.
func WithRateLimit(requests int, window time.Duration) EnvOption {
	return func(cfg *app.Config, _ *api.Dependencies) {
		cfg.Server.RateLimit = app.RateLimitConfig{Enabled: true, Requests: requests, Window: window}
	}
}

// NewEnv provisions a fresh handler test environment with migrations and seed data applied.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	jwtSecret := "test-suite-super-secret-key-32-bytes!!"
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         jwtSecret,
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	cfg := &app.Config{
		Search: app.SearchConfig{
			CacheTTL:        time.Minute,
			DefaultPageSize: 20,
			MaxPageSize:     100,
			LogSearches:     true,
		},
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{
				Secret: jwtSecret,
				Issuer: "test-suite",
				TTL:    time.Hour,
			},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}

	mon, err := monitoring.NewModule(monitoring.Options{SkipDefaultGatherer: true})
	require.NoError(t, err)
	mon.Health().RegisterLiveness(checks.Database(db, time.Second))
	mon.Health().RegisterReadiness(checks.Database(db, time.Second))

	hub := realtime.NewHub()
	store := cache.NewDatabaseStore(db)

	deps := api.Dependencies{
		Cache:      store,
		Hub:        hub,
		Monitoring: mon,
		RateStore:  middleware.NewCacheRateStore(store),
	}
	for _, opt := range opts {
		opt(cfg, &deps)
	}

	router, err := api.NewRouter(db, jwtSvc, cfg, deps)
	require.NoError(t, err)

	return &Env{
		T:          t,
		DB:         db,
		Router:     router,
		JWT:        jwtSvc,
		Config:     cfg,
		Hub:        hub,
		Monitoring: mon,
	}
}

// Token issues a member access token for userID.
func (e *Env) Token(userID string) string {
	e.T.Helper()
	return e.issue(userID, iauth.RoleMember)
}

// AdminToken issues an admin access token for userID.
func (e *Env) AdminToken(userID string) string {
	e.T.Helper()
	return e.issue(userID, iauth.RoleAdmin)
}

func (e *Env) issue(userID, role string) string {
	token, err := e.JWT.GenerateAccessToken(iauth.AccessTokenInput{
		UserID: userID,
		Email:  userID + "@example.com",
		Name:   "User " + userID,
		Role:   role,
	})
	require.NoError(e.T, err)
	return token
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// Data asserts a successful envelope with the expected status and decodes its data into dest.
func Data[T any](t *testing.T, w *httptest.ResponseRecorder, status int, dest *T) APIResponse {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	resp := DecodeResponse(t, w)
	require.True(t, resp.Success, w.Body.String())
	if dest != nil {
		DecodeInto(t, resp.Data, dest)
	}
	return resp
}
