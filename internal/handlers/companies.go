package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/services"
	"github.com/nutralink/directory/pkg/response"
)

// CompanyHandler exposes the directory listing endpoints.
type CompanyHandler struct {
	svc   *services.CompanyService
	saved *services.SavedCompanyService
}

// NewCompanyHandler constructs a company handler.
func NewCompanyHandler(svc *services.CompanyService, saved *services.SavedCompanyService) *CompanyHandler {
	return &CompanyHandler{svc: svc, saved: saved}
}

type companyPayload struct {
	Name            string   `json:"name" validate:"required,max=200"`
	Slug            string   `json:"slug" validate:"omitempty,slug,max=160"`
	Description     string   `json:"description" validate:"omitempty,max=4000"`
	EntityType      string   `json:"entity_type" validate:"omitempty,entity_type"`
	Products        string   `json:"products"`
	Categories      string   `json:"categories"`
	Certifications  []string `json:"certifications" validate:"omitempty,dive,max=64"`
	IsExporter      bool     `json:"is_exporter"`
	ExportMarkets   string   `json:"export_markets"`
	Address         string   `json:"address"`
	City            string   `json:"city" validate:"omitempty,max=120"`
	State           string   `json:"state" validate:"omitempty,max=120"`
	Country         string   `json:"country" validate:"omitempty,max=80"`
	Website         string   `json:"website" validate:"omitempty,url"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Phone           string   `json:"phone" validate:"omitempty,max=40"`
	Verified        bool     `json:"verified"`
	YearEstablished int      `json:"year_established" validate:"omitempty,min=1800,max=2100"`
}

func (p companyPayload) toInput() services.CompanyInput {
	return services.CompanyInput{
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		EntityType:      p.EntityType,
		Products:        p.Products,
		Categories:      p.Categories,
		Certifications:  p.Certifications,
		IsExporter:      p.IsExporter,
		ExportMarkets:   p.ExportMarkets,
		Address:         p.Address,
		City:            p.City,
		State:           p.State,
		Country:         p.Country,
		Website:         p.Website,
		Email:           p.Email,
		Phone:           p.Phone,
		Verified:        p.Verified,
		YearEstablished: p.YearEstablished,
	}
}

type updateCompanyPayload struct {
	Name            *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Slug            *string   `json:"slug" validate:"omitempty,slug,max=160"`
	Description     *string   `json:"description" validate:"omitempty,max=4000"`
	EntityType      *string   `json:"entity_type" validate:"omitempty,entity_type"`
	Products        *string   `json:"products"`
	Categories      *string   `json:"categories"`
	Certifications  *[]string `json:"certifications" validate:"omitempty,dive,max=64"`
	IsExporter      *bool     `json:"is_exporter"`
	ExportMarkets   *string   `json:"export_markets"`
	Address         *string   `json:"address"`
	City            *string   `json:"city" validate:"omitempty,max=120"`
	State           *string   `json:"state" validate:"omitempty,max=120"`
	Country         *string   `json:"country" validate:"omitempty,max=80"`
	Website         *string   `json:"website" validate:"omitempty,url"`
	Email           *string   `json:"email" validate:"omitempty,email"`
	Phone           *string   `json:"phone" validate:"omitempty,max=40"`
	Verified        *bool     `json:"verified"`
	YearEstablished *int      `json:"year_established" validate:"omitempty,min=1800,max=2100"`
}

func (p updateCompanyPayload) toInput() services.UpdateCompanyInput {
	return services.UpdateCompanyInput{
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		EntityType:      p.EntityType,
		Products:        p.Products,
		Categories:      p.Categories,
		Certifications:  p.Certifications,
		IsExporter:      p.IsExporter,
		ExportMarkets:   p.ExportMarkets,
		Address:         p.Address,
		City:            p.City,
		State:           p.State,
		Country:         p.Country,
		Website:         p.Website,
		Email:           p.Email,
		Phone:           p.Phone,
		Verified:        p.Verified,
		YearEstablished: p.YearEstablished,
	}
}

// List GET /api/companies
func (h *CompanyHandler) List(c *gin.Context) {
	opts := services.ListCompaniesOptions{
		Filters:     filterContext(c),
		OwnerUserID: c.Query("owner"),
		Page:        parseIntQuery(c, "page", 1),
		PerPage:     parseIntQuery(c, "per_page", 0),
	}

	companies, total, err := h.svc.List(requestContext(c), opts)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	page, perPage := h.svc.Paging(opts.Page, opts.PerPage)
	response.SuccessWithMeta(c, http.StatusOK, companies, response.NewMeta(page, perPage, total))
}

// Get GET /api/companies/:id
func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, company)
}

// SavedCount GET /api/companies/:id/saved-count
func (h *CompanyHandler) SavedCount(c *gin.Context) {
	ctx := requestContext(c)
	company, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	count, err := h.saved.CompanySaveCount(ctx, company.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	result := services.SavedCount{Count: count, CompanyID: company.ID}
	if userID := optionalUserID(c); userID != "" {
		saved, err := h.saved.IsSaved(ctx, userID, company.ID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		result.Saved = saved
	}
	response.Success(c, http.StatusOK, result)
}

// Create POST /api/companies
func (h *CompanyHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var payload companyPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	company, err := h.svc.Create(requestContext(c), actor, payload.toInput())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, company)
}

// Update PATCH /api/companies/:id
func (h *CompanyHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var payload updateCompanyPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	company, err := h.svc.Update(requestContext(c), actor, c.Param("id"), payload.toInput())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, company)
}

// Delete DELETE /api/companies/:id
func (h *CompanyHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(requestContext(c), actor, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
