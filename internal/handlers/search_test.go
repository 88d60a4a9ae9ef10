package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nutralink/directory/internal/handlers/testutil"
	"github.com/nutralink/directory/internal/models"
	"github.com/nutralink/directory/internal/search"
)

type searchPayload struct {
	Spec      search.Spec      `json:"spec"`
	Companies []models.Company `json:"companies"`
	Cached    bool             `json:"cached"`
}

func companyNames(companies []models.Company) []string {
	names := make([]string, len(companies))
	for i, company := range companies {
		names[i] = company.Name
	}
	return names
}

func searchPath(query string, extra url.Values) string {
	values := url.Values{}
	values.Set("q", query)
	for key, vals := range extra {
		values[key] = vals
	}
	return "/api/search?" + values.Encode()
}

func TestSearchDetectsEntityAndLocation(t *testing.T) {
	env := testutil.NewEnv(t)

	var result searchPayload
	resp := testutil.Data(t, env.Request(http.MethodGet, searchPath("Ashwagandha manufacturers in Gujarat", nil), nil, ""), http.StatusOK, &result)

	require.Equal(t, search.EntityManufacturer, result.Spec.EntityType)
	require.Equal(t, search.SourceQuery, result.Spec.EntityTypeSource)
	require.NotNil(t, result.Spec.Location)
	require.Equal(t, "gujarat", result.Spec.Location.State)
	require.Equal(t, "Gujarat", result.Spec.Location.Display)
	require.Equal(t, []string{"ashwagandha"}, result.Spec.Keywords)
	require.Equal(t, []string{"Vedic Roots Pvt Ltd"}, companyNames(result.Companies))
	require.False(t, result.Cached)
	require.Equal(t, 1, resp.Meta.Total)
}

func TestSearchExportersOrdersVerifiedFirst(t *testing.T) {
	env := testutil.NewEnv(t)

	var result searchPayload
	testutil.Data(t, env.Request(http.MethodGet, searchPath("ashwagandha exporters", nil), nil, ""), http.StatusOK, &result)

	require.True(t, result.Spec.ExportOnly)
	require.Empty(t, result.Spec.EntityType)
	require.Equal(t, []string{"Vedic Roots Pvt Ltd", "Kutch Herbals"}, companyNames(result.Companies))
}

func TestSearchExplicitFiltersOverrideQuery(t *testing.T) {
	env := testutil.NewEnv(t)

	var result searchPayload
	testutil.Data(t, env.Request(http.MethodGet, searchPath("ashwagandha traders", url.Values{
		"entity_type": {"manufacturer"},
	}), nil, ""), http.StatusOK, &result)

	require.Equal(t, search.EntityManufacturer, result.Spec.EntityType)
	require.Equal(t, search.SourceFilter, result.Spec.EntityTypeSource)
	require.Equal(t, []string{"Deccan Naturals", "Vedic Roots Pvt Ltd"}, companyNames(result.Companies))

	testutil.Data(t, env.Request(http.MethodGet, searchPath("extracts", url.Values{
		"certifications": {"organic"},
		"verified":       {"true"},
	}), nil, ""), http.StatusOK, &result)
	require.Equal(t, []string{"Malabar Spice Extracts"}, companyNames(result.Companies))
}

func TestSearchCachesPagesAndLogsQueries(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.Token("buyer-1")
	path := searchPath("omega 3 softgels", nil)

	var first, second searchPayload
	testutil.Data(t, env.Request(http.MethodGet, path, nil, token), http.StatusOK, &first)
	testutil.Data(t, env.Request(http.MethodGet, path, nil, token), http.StatusOK, &second)

	require.False(t, first.Cached)
	require.True(t, second.Cached)
	require.Equal(t, companyNames(first.Companies), companyNames(second.Companies))

	var logs []models.SearchLog
	require.NoError(t, env.DB.Where("query = ?", "omega 3 softgels").Find(&logs).Error)
	require.Len(t, logs, 2)
	require.NotNil(t, logs[0].UserID)
	require.Equal(t, "buyer-1", *logs[0].UserID)
}

func TestSearchRejectsOverlongQuery(t *testing.T) {
	env := testutil.NewEnv(t)

	resp := env.Request(http.MethodGet, searchPath(strings.Repeat("a", 501), nil), nil, "")
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestSearchQueryLengthCountsCharacters(t *testing.T) {
	env := testutil.NewEnv(t)

	query := strings.TrimSpace(strings.Repeat("हल्दी ", 80))
	require.Greater(t, len(query), 500)

	var result searchPayload
	testutil.Data(t, env.Request(http.MethodGet, searchPath(query, nil), nil, ""), http.StatusOK, &result)
	require.Equal(t, []string{"हल्दी"}, result.Spec.Keywords)

	resp := env.Request(http.MethodGet, searchPath(strings.Repeat("ह", 501), nil), nil, "")
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestSearchParseReturnsExplanation(t *testing.T) {
	env := testutil.NewEnv(t)

	var explanation search.Explanation
	testutil.Data(t, env.Request(http.MethodGet, "/api/search/parse?q="+url.QueryEscape("mfg in orissa"), nil, ""), http.StatusOK, &explanation)

	require.Equal(t, search.EntityManufacturer, explanation.Spec.EntityType)
	require.NotNil(t, explanation.Spec.Location)
	require.Equal(t, "odisha", explanation.Spec.Location.State)
	require.Equal(t, []search.Rewrite{{From: "mfg", To: "manufacturer"}}, explanation.Spec.Rewrites)
	require.Contains(t, explanation.Where.SQL, "LOWER(companies.entity_type) = ?")
	require.Contains(t, explanation.Rendered, "'manufacturer'")
	require.True(t, strings.HasPrefix(explanation.CacheKey, "search:"))

	var count int64
	require.NoError(t, env.DB.Model(&models.SearchLog{}).Count(&count).Error)
	require.Zero(t, count, "parse must not log searches")
}
