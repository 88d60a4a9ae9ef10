package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/middleware"
	"github.com/nutralink/directory/internal/services"
	"github.com/nutralink/directory/pkg/response"
)

// OutreachHandler sends and lists the caller's outreach emails.
type OutreachHandler struct {
	svc *services.OutreachService
}

// NewOutreachHandler constructs an outreach handler.
func NewOutreachHandler(svc *services.OutreachService) *OutreachHandler {
	return &OutreachHandler{svc: svc}
}

type sendEmailPayload struct {
	CompanyID  string `json:"company_id" validate:"required"`
	TemplateID string `json:"template_id"`
	Subject    string `json:"subject" validate:"omitempty,max=255"`
	Body       string `json:"body" validate:"omitempty,max=20000"`
	Recipient  string `json:"recipient" validate:"omitempty,email"`
}

// List GET /api/workspace/emails
func (h *OutreachHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, perPage := services.NormalisePage(parseIntQuery(c, "page", 1), parseIntQuery(c, "per_page", 0))
	emails, total, err := h.svc.List(requestContext(c), userID, services.ListEmailsOptions{
		CompanyID: c.Query("company_id"),
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, emails, response.NewMeta(page, perPage, total))
}

// Send POST /api/workspace/emails
func (h *OutreachHandler) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var payload sendEmailPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	input := services.SendEmailInput{
		UserID:     userID,
		SenderName: senderName(c),
		CompanyID:  payload.CompanyID,
		TemplateID: payload.TemplateID,
		Subject:    payload.Subject,
		Body:       payload.Body,
		Recipient:  payload.Recipient,
	}
	if claims, ok := middleware.ClaimsFromContext(c); ok {
		input.ReplyTo = strings.TrimSpace(claims.Email)
	}

	email, err := h.svc.Send(requestContext(c), input)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, email)
}
