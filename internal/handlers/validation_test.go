package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nutralink/directory/internal/search"
	"github.com/nutralink/directory/internal/services"
	apperrors "github.com/nutralink/directory/pkg/errors"
	appValidator "github.com/nutralink/directory/pkg/validator"
)

func testContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestFilterContextFromQuery(t *testing.T) {
	c := testContext("/api/search?entity_type=Distributor&state=orissa&city=Cuttack&verified=true&export_only=1&certifications=GMP,fssai&certifications=Organic")

	fc := filterContext(c)
	require.Equal(t, "Distributor", fc.EntityType)
	require.Equal(t, "orissa", fc.State)
	require.Equal(t, "Cuttack", fc.City)
	require.NotNil(t, fc.Verified)
	require.True(t, *fc.Verified)
	require.True(t, fc.ExportOnly)
	require.Equal(t, []string{"GMP", "fssai", "Organic"}, fc.Certifications)
}

func TestQueryHelpersFallBack(t *testing.T) {
	c := testContext("/api/companies?page=abc&verified=maybe")

	require.Equal(t, 3, parseIntQuery(c, "page", 3))
	require.Equal(t, 7, parseIntQuery(c, "missing", 7))
	require.Nil(t, parseBoolQuery(c, "verified"))
	require.Empty(t, parseListQuery(c, "certifications"))
	require.Equal(t, search.FilterContext{}, filterContext(c))
}

func TestFormatValidationError(t *testing.T) {
	msg := formatValidationError(appValidator.ValidationErrors{
		{Field: "company_id", Tag: "required"},
		{Field: "entity_type", Tag: "entity_type"},
		{Field: "year_established", Tag: "min", Param: "1800"},
	})
	require.Contains(t, msg, "company id is required")
	require.Contains(t, msg, "entity type must be one of manufacturer, distributor")
	require.Contains(t, msg, "year established must be at least 1800 characters")
	require.Equal(t, "invalid request payload", formatValidationError(errors.New("boom")))
}

func TestEntityTypeValidationRule(t *testing.T) {
	type payload struct {
		EntityType string `json:"entity_type" validate:"omitempty,entity_type"`
	}
	require.NoError(t, appValidator.ValidateStruct(payload{}))
	require.NoError(t, appValidator.ValidateStruct(payload{EntityType: " Wholesaler "}))
	require.Error(t, appValidator.ValidateStruct(payload{EntityType: "exporter"}))
}

func TestMapServiceError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrCompanyNotFound, http.StatusNotFound, "NOT_FOUND"},
		{services.ErrTemplateNotFound, http.StatusNotFound, "NOT_FOUND"},
		{services.ErrCompanySlugTaken, http.StatusConflict, "CONFLICT"},
		{services.ErrCompanyAlreadySaved, http.StatusConflict, "CONFLICT"},
		{services.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{&services.InputError{Field: "recipient", Message: "company has no email address"}, http.StatusBadRequest, "BAD_REQUEST"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}
	for _, tc := range cases {
		appErr := apperrors.FromError(mapServiceError(tc.err))
		require.Equal(t, tc.status, appErr.StatusCode, tc.err.Error())
		require.Equal(t, tc.code, appErr.Code, tc.err.Error())
	}

	appErr := apperrors.FromError(mapServiceError(&services.InputError{Field: "recipient", Message: "company has no email address"}))
	require.Equal(t, "recipient: company has no email address", appErr.Message)
}
