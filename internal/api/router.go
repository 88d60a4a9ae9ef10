package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/app"
	iauth "github.com/nutralink/directory/internal/auth"
	"github.com/nutralink/directory/internal/cache"
	"github.com/nutralink/directory/internal/events"
	"github.com/nutralink/directory/internal/handlers"
	"github.com/nutralink/directory/internal/middleware"
	"github.com/nutralink/directory/internal/monitoring"
	"github.com/nutralink/directory/internal/realtime"
	"github.com/nutralink/directory/internal/search"
	"github.com/nutralink/directory/internal/services"
	"github.com/nutralink/directory/pkg/mail"
)

const (
	defaultRateLimitRequests = 100
	defaultRateLimitWindow   = time.Minute
)

// Dependencies carries the optional infrastructure wired into services.
// Nil members disable the corresponding feature.
type Dependencies struct {
	Parser     *search.Parser
	Cache      cache.Store
	Publisher  events.Publisher
	Mailer     mail.Mailer
	Hub        *realtime.Hub
	Monitoring *monitoring.Module
	RateStore  middleware.RateStore
	Audit      *services.AuditService
}

// NewRouter builds the Gin engine, wires middleware and registers the directory routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, deps Dependencies) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	svcs, err := newServices(db, cfg, deps)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics("/health", "/api/health", cfg.Monitoring.Prometheus.Endpoint))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins...))
	if cfg.Server.RateLimit.Enabled {
		requests, window := cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window
		if requests <= 0 {
			requests = defaultRateLimitRequests
		}
		if window <= 0 {
			window = defaultRateLimitWindow
		}
		r.Use(middleware.RateLimit(deps.RateStore, requests, window))
	}

	registerHealthRoutes(r, cfg, deps.Monitoring)
	registerMetricsRoute(r, cfg, deps.Monitoring)

	requireAuth := middleware.Auth(jwt)
	optionalAuth := middleware.OptionalAuth(jwt)

	api := r.Group("/api")

	registerSearchRoutes(api, handlers.NewSearchHandler(svcs.companies), optionalAuth)
	registerCompanyRoutes(api, handlers.NewCompanyHandler(svcs.companies, svcs.saved), optionalAuth, requireAuth)

	protected := api.Group("")
	protected.Use(requireAuth)

	registerSavedRoutes(protected, handlers.NewSavedCompanyHandler(svcs.saved))
	registerWorkspaceRoutes(protected,
		handlers.NewEmailTemplateHandler(svcs.templates),
		handlers.NewOutreachHandler(svcs.outreach),
	)
	registerInsightsRoutes(protected, handlers.NewInsightsHandler(svcs.insights))
	registerAuditRoutes(protected, handlers.NewAuditHandler(svcs.audit))
	registerMonitoringRoutes(protected, handlers.NewMonitoringHandler(deps.Monitoring, cfg, deps.Hub))
	registerRealtimeRoutes(protected, handlers.NewRealtimeHandler(deps.Hub), deps.Hub)

	r.NoRoute(middleware.NotFoundHandler)
	r.NoMethod(middleware.MethodNotAllowedHandler)

	return r, nil
}

func registerMetricsRoute(r *gin.Engine, cfg *app.Config, mon *monitoring.Module) {
	if mon == nil || !cfg.Monitoring.Prometheus.Enabled {
		return
	}
	endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
	if endpoint == "" {
		endpoint = "/metrics"
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	r.GET(endpoint, gin.WrapH(mon.Handler()))
}
