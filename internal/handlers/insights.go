package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/services"
	"github.com/nutralink/directory/pkg/response"
)

// InsightsHandler reports what buyers search for.
type InsightsHandler struct {
	svc *services.InsightsService
}

// NewInsightsHandler constructs an insights handler.
func NewInsightsHandler(svc *services.InsightsService) *InsightsHandler {
	return &InsightsHandler{svc: svc}
}

// Searches GET /api/insights/searches?days=&limit=
func (h *InsightsHandler) Searches(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	summary, err := h.svc.Summary(requestContext(c), parseIntQuery(c, "days", 0), parseIntQuery(c, "limit", 0))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}
