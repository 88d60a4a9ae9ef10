package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/app"
	"github.com/nutralink/directory/internal/middleware"
	"github.com/nutralink/directory/internal/monitoring"
	"github.com/nutralink/directory/internal/realtime"
	apperrors "github.com/nutralink/directory/pkg/errors"
	"github.com/nutralink/directory/pkg/response"
)

// MonitoringHandler surfaces monitoring summaries for administrators.
type MonitoringHandler struct {
	module *monitoring.Module
	cfg    *app.Config
	hub    *realtime.Hub
}

// NewMonitoringHandler constructs a monitoring handler. Returns nil when monitoring is disabled.
func NewMonitoringHandler(module *monitoring.Module, cfg *app.Config, hub *realtime.Hub) *MonitoringHandler {
	if module == nil || cfg == nil {
		return nil
	}
	if !cfg.Monitoring.Health.Enabled && !cfg.Monitoring.Prometheus.Enabled {
		return nil
	}
	return &MonitoringHandler{module: module, cfg: cfg, hub: hub}
}

// Summary GET /api/monitoring/summary
func (h *MonitoringHandler) Summary(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	if !claims.IsAdmin() {
		response.Error(c, apperrors.ErrForbidden)
		return
	}

	endpoint := strings.TrimSpace(h.cfg.Monitoring.Prometheus.Endpoint)
	if endpoint == "" {
		endpoint = "/metrics"
	}

	data := gin.H{
		"summary": monitoring.Snapshot(),
		"prometheus": gin.H{
			"enabled":  h.cfg.Monitoring.Prometheus.Enabled,
			"endpoint": endpoint,
		},
	}
	if h.hub != nil {
		streams := gin.H{}
		for _, stream := range realtime.KnownStreams() {
			streams[stream] = h.hub.SubscriberCount(stream)
		}
		data["realtime"] = gin.H{
			"connections": h.hub.ConnectionCount(),
			"subscribers": streams,
		}
	}
	response.Success(c, http.StatusOK, data)
}
