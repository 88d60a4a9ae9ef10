package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/services"
	"github.com/nutralink/directory/pkg/response"
)

// EmailTemplateHandler exposes CRUD for the caller's outreach templates.
type EmailTemplateHandler struct {
	svc *services.EmailTemplateService
}

// NewEmailTemplateHandler constructs a template handler.
func NewEmailTemplateHandler(svc *services.EmailTemplateService) *EmailTemplateHandler {
	return &EmailTemplateHandler{svc: svc}
}

type templatePayload struct {
	Name    string `json:"name" validate:"required,max=120"`
	Subject string `json:"subject" validate:"required,max=255"`
	Body    string `json:"body" validate:"required,max=20000"`
}

func (p templatePayload) toInput() services.EmailTemplateInput {
	return services.EmailTemplateInput{Name: p.Name, Subject: p.Subject, Body: p.Body}
}

type updateTemplatePayload struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=120"`
	Subject *string `json:"subject" validate:"omitempty,min=1,max=255"`
	Body    *string `json:"body" validate:"omitempty,min=1,max=20000"`
}

func (p updateTemplatePayload) toInput() services.UpdateEmailTemplateInput {
	return services.UpdateEmailTemplateInput{Name: p.Name, Subject: p.Subject, Body: p.Body}
}

// List GET /api/workspace/templates
func (h *EmailTemplateHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	templates, err := h.svc.List(requestContext(c), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, templates)
}

// Get GET /api/workspace/templates/:id
func (h *EmailTemplateHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tmpl, err := h.svc.Get(requestContext(c), userID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tmpl)
}

// Create POST /api/workspace/templates
func (h *EmailTemplateHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload templatePayload
	if !bindAndValidate(c, &payload) {
		return
	}

	tmpl, err := h.svc.Create(requestContext(c), userID, payload.toInput())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, tmpl)
}

// Update PATCH /api/workspace/templates/:id
func (h *EmailTemplateHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload updateTemplatePayload
	if !bindAndValidate(c, &payload) {
		return
	}

	tmpl, err := h.svc.Update(requestContext(c), userID, c.Param("id"), payload.toInput())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tmpl)
}

// Delete DELETE /api/workspace/templates/:id
func (h *EmailTemplateHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(requestContext(c), userID, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
