package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nutralink/directory/internal/models"
)

func TestInsightsServiceSummary(t *testing.T) {
	db := openServiceTestDB(t)
	now := time.Now()

	logs := []models.SearchLog{
		{Query: "Ashwagandha manufacturers in Gujarat", Keywords: "ashwagandha", EntityType: "manufacturer", State: "gujarat", ResultCount: 3},
		{Query: "ashwagandha manufacturers in gujarat", Keywords: "ashwagandha", EntityType: "manufacturer", State: "gujarat", ResultCount: 3},
		{Query: "turmeric extract kerala", Keywords: "turmeric extract", State: "kerala", ResultCount: 1},
		{Query: "spirulina", Keywords: "spirulina", ResultCount: 0},
		{Query: "old query", Keywords: "old", ResultCount: 0},
	}
	logs[4].CreatedAt = now.AddDate(0, 0, -60)
	for i := range logs {
		require.NoError(t, db.Create(&logs[i]).Error)
	}

	popular := createTestCompany(t, db, models.Company{Name: "Popular"})
	quiet := createTestCompany(t, db, models.Company{Name: "Quiet"})
	for _, saved := range []models.SavedCompany{
		{UserID: "u1", CompanyID: popular.ID},
		{UserID: "u2", CompanyID: popular.ID},
		{UserID: "u1", CompanyID: quiet.ID},
	} {
		require.NoError(t, db.Create(&saved).Error)
	}

	svc, err := NewInsightsService(db)
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), 30, 5)
	require.NoError(t, err)
	require.Equal(t, 30, summary.Days)
	require.Equal(t, int64(4), summary.TotalSearches)

	require.Equal(t, TermCount{Term: "ashwagandha manufacturers in gujarat", Total: 2}, summary.TopQueries[0])
	require.Len(t, summary.TopQueries, 3)

	require.Equal(t, []TermCount{
		{Term: "ashwagandha", Total: 2},
		{Term: "extract", Total: 1},
		{Term: "spirulina", Total: 1},
		{Term: "turmeric", Total: 1},
	}, summary.TopKeywords)

	require.Equal(t, []TermCount{
		{Term: "gujarat", Total: 2},
		{Term: "kerala", Total: 1},
	}, summary.TopLocations)

	require.Equal(t, []TermCount{{Term: "spirulina", Total: 1}}, summary.ZeroResults)

	require.Len(t, summary.MostSaved, 2)
	require.Equal(t, popular.ID, summary.MostSaved[0].CompanyID)
	require.Equal(t, int64(2), summary.MostSaved[0].Total)
	require.Equal(t, "Quiet", summary.MostSaved[1].Name)
}

func TestInsightsServiceLimitsAndWindow(t *testing.T) {
	db := openServiceTestDB(t)
	for _, q := range []string{"a1", "b2", "c3"} {
		require.NoError(t, db.Create(&models.SearchLog{Query: q, Keywords: q, ResultCount: 1}).Error)
	}

	svc, err := NewInsightsService(db)
	require.NoError(t, err)

	top, err := svc.TopQueries(context.Background(), 0, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "a1", top[0].Term)

	svc.now = func() time.Time { return time.Now().AddDate(0, 0, 10) }
	top, err = svc.TopQueries(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Empty(t, top)

	days, limit := normaliseWindow(5000, 5000)
	require.Equal(t, maxInsightsDays, days)
	require.Equal(t, maxInsightsLimit, limit)
}

func TestInsightsServiceTopKeywordsAcrossPages(t *testing.T) {
	db := openServiceTestDB(t)
	for i := 0; i < 7; i++ {
		keywords := "moringa"
		if i%2 == 0 {
			keywords = "moringa powder"
		}
		require.NoError(t, db.Create(&models.SearchLog{Query: keywords, Keywords: keywords}).Error)
	}
	require.NoError(t, db.Create(&models.SearchLog{Query: "in gujarat", State: "gujarat"}).Error)

	svc, err := NewInsightsService(db)
	require.NoError(t, err)
	svc.pageSize = 3

	top, err := svc.TopKeywords(context.Background(), 30, 10)
	require.NoError(t, err)
	require.Equal(t, []TermCount{
		{Term: "moringa", Total: 7},
		{Term: "powder", Total: 4},
	}, top)
}
