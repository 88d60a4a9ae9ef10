package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/services"
	"github.com/nutralink/directory/pkg/response"
)

// SavedCompanyHandler manages the caller's bookmarked companies.
type SavedCompanyHandler struct {
	svc *services.SavedCompanyService
}

// NewSavedCompanyHandler constructs a saved company handler.
func NewSavedCompanyHandler(svc *services.SavedCompanyService) *SavedCompanyHandler {
	return &SavedCompanyHandler{svc: svc}
}

type saveCompanyPayload struct {
	Note string `json:"note" validate:"omitempty,max=1000"`
}

// List GET /api/saved
func (h *SavedCompanyHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, perPage := services.NormalisePage(parseIntQuery(c, "page", 1), parseIntQuery(c, "per_page", 0))
	saved, total, err := h.svc.List(requestContext(c), userID, page, perPage)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, saved, response.NewMeta(page, perPage, total))
}

// Count GET /api/saved/count
func (h *SavedCompanyHandler) Count(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.svc.Count(requestContext(c), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": count})
}

// Save POST /api/saved/:companyID
func (h *SavedCompanyHandler) Save(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload saveCompanyPayload
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &payload) {
		return
	}

	saved, err := h.svc.Save(requestContext(c), userID, c.Param("companyID"), payload.Note)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, saved)
}

// Unsave DELETE /api/saved/:companyID
func (h *SavedCompanyHandler) Unsave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Unsave(requestContext(c), userID, c.Param("companyID")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
