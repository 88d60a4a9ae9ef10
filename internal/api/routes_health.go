package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/app"
	"github.com/nutralink/directory/internal/monitoring"
)

// registerHealthRoutes mounts the probes at the root for orchestrators and
// under /api for the web client. Disabled health reporting answers 404.
func registerHealthRoutes(r *gin.Engine, cfg *app.Config, mon *monitoring.Module) {
	if cfg == nil {
		return
	}

	var manager *monitoring.HealthManager
	if cfg.Monitoring.Health.Enabled && mon != nil {
		manager = mon.Health()
	}

	for _, group := range []gin.IRouter{r, r.Group("/api")} {
		if manager == nil {
			group.GET("/health", healthDisabled)
			group.GET("/health/live", healthDisabled)
			group.GET("/health/ready", healthDisabled)
			continue
		}
		group.GET("/health", healthSummary(manager.EvaluateReadiness))
		group.GET("/health/live", healthDetail(manager.EvaluateLiveness))
		group.GET("/health/ready", healthDetail(manager.EvaluateReadiness))
	}
}

type evaluator func(ctx context.Context) monitoring.HealthReport

// healthSummary reports the readiness verdict and the names of the
// components that are not up, without per-probe timings.
func healthSummary(evaluate evaluator) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := evaluate(c.Request.Context())
		failing := []string{}
		for _, check := range report.Checks {
			if check.Status != monitoring.StatusUp {
				failing = append(failing, check.Component)
			}
		}
		c.JSON(healthHTTPStatus(report), gin.H{
			"success":    report.Success,
			"status":     report.Status,
			"failing":    failing,
			"checked_at": time.Now().UTC(),
		})
	}
}

func healthDetail(evaluate evaluator) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := evaluate(c.Request.Context())
		c.JSON(healthHTTPStatus(report), gin.H{
			"success":    report.Success,
			"status":     report.Status,
			"checks":     report.Checks,
			"checked_at": time.Now().UTC(),
		})
	}
}

// healthHTTPStatus keeps a degraded directory in rotation: search still works
// on the database cache, so only a down component answers 503.
func healthHTTPStatus(report monitoring.HealthReport) int {
	if report.Status == monitoring.StatusDown {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func healthDisabled(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "status": "disabled"})
}
