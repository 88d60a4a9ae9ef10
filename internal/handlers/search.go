package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/models"
	"github.com/nutralink/directory/internal/search"
	"github.com/nutralink/directory/internal/services"
	"github.com/nutralink/directory/pkg/response"
)

const maxQueryLength = 500

// SearchHandler answers natural language directory searches.
type SearchHandler struct {
	svc *services.CompanyService
}

// NewSearchHandler constructs a search handler.
func NewSearchHandler(svc *services.CompanyService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type searchResponse struct {
	Spec      search.Spec      `json:"spec"`
	Companies []models.Company `json:"companies"`
	Cached    bool             `json:"cached"`
}

// Search GET /api/search
func (h *SearchHandler) Search(c *gin.Context) {
	query, ok := searchQuery(c)
	if !ok {
		return
	}

	result, err := h.svc.Search(requestContext(c), services.SearchInput{
		Query:   query,
		Filters: filterContext(c),
		Page:    parseIntQuery(c, "page", 1),
		PerPage: parseIntQuery(c, "per_page", 0),
		UserID:  optionalUserID(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, searchResponse{
		Spec:      result.Spec,
		Companies: result.Companies,
		Cached:    result.Cached,
	}, response.NewMeta(result.Page, result.PerPage, result.Total))
}

// Parse GET /api/search/parse
func (h *SearchHandler) Parse(c *gin.Context) {
	query, ok := searchQuery(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, h.svc.Explain(query, filterContext(c)))
}

func searchQuery(c *gin.Context) (string, bool) {
	query := strings.TrimSpace(c.Query("q"))
	if utf8.RuneCountInString(query) > maxQueryLength {
		response.Error(c, errBadQuery)
		return "", false
	}
	return query, true
}
