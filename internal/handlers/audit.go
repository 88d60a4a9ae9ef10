package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/middleware"
	"github.com/nutralink/directory/internal/services"
	"github.com/nutralink/directory/pkg/errors"
	"github.com/nutralink/directory/pkg/response"
)

// AuditHandler lists company listing mutations for administrators.
type AuditHandler struct {
	svc *services.AuditService
}

// NewAuditHandler constructs an audit handler.
func NewAuditHandler(svc *services.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// List GET /api/audit
func (h *AuditHandler) List(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}
	if !claims.IsAdmin() {
		response.Error(c, errors.ErrForbidden)
		return
	}

	page := max(parseIntQuery(c, "page", 1), 1)
	per := parseIntQuery(c, "per_page", 50)
	if per <= 0 || per > 200 {
		per = 50
	}

	filters := services.AuditFilters{
		UserID:    c.Query("user_id"),
		Action:    c.Query("action"),
		Result:    c.Query("result"),
		Resource:  c.Query("resource"),
		CompanyID: c.Query("company_id"),
	}
	for param, dst := range map[string]**time.Time{"since": &filters.Since, "until": &filters.Until} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, errors.NewBadRequest(param+" must be an RFC 3339 timestamp"))
			return
		}
		*dst = &t
	}

	logs, total, err := h.svc.List(requestContext(c), services.AuditListOptions{Page: page, PageSize: per, Filters: filters})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, logs, response.NewMeta(page, per, total))
}
