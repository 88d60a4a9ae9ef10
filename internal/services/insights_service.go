package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/models"
)

const (
	defaultInsightsDays  = 30
	maxInsightsDays      = 365
	defaultInsightsLimit = 10
	maxInsightsLimit     = 50
	keywordPageSize      = 500
)

// TermCount is a search term and how often it occurred.
type TermCount struct {
	Term  string `json:"term"`
	Total int64  `json:"total"`
}

// SavedCompanyCount is a company and how many users saved it.
type SavedCompanyCount struct {
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Total     int64  `json:"total"`
}

// InsightsSummary aggregates the search insights for a window.
type InsightsSummary struct {
	Days          int                 `json:"days"`
	Since         time.Time           `json:"since"`
	TotalSearches int64               `json:"total_searches"`
	TopQueries    []TermCount         `json:"top_queries"`
	TopKeywords   []TermCount         `json:"top_keywords"`
	TopLocations  []TermCount         `json:"top_locations"`
	ZeroResults   []TermCount         `json:"zero_results"`
	MostSaved     []SavedCompanyCount `json:"most_saved"`
}

// InsightsService reports on search logs and saved companies.
type InsightsService struct {
	db       *gorm.DB
	now      func() time.Time
	pageSize int
}

// NewInsightsService constructs an insights service.
func NewInsightsService(db *gorm.DB) (*InsightsService, error) {
	if db == nil {
		return nil, errors.New("insights service: db is required")
	}
	return &InsightsService{db: db, now: time.Now, pageSize: keywordPageSize}, nil
}

// Summary collects every insight for the last days.
func (s *InsightsService) Summary(ctx context.Context, days, limit int) (*InsightsSummary, error) {
	ctx = ensureContext(ctx)
	days, limit = normaliseWindow(days, limit)
	since := s.since(days)

	summary := &InsightsSummary{Days: days, Since: since}

	if err := s.logs(ctx, since).Count(&summary.TotalSearches).Error; err != nil {
		return nil, fmt.Errorf("insights service: count searches: %w", err)
	}

	var err error
	if summary.TopQueries, err = s.TopQueries(ctx, days, limit); err != nil {
		return nil, err
	}
	if summary.TopKeywords, err = s.TopKeywords(ctx, days, limit); err != nil {
		return nil, err
	}
	if summary.TopLocations, err = s.TopLocations(ctx, days, limit); err != nil {
		return nil, err
	}
	if summary.ZeroResults, err = s.ZeroResultQueries(ctx, days, limit); err != nil {
		return nil, err
	}
	if summary.MostSaved, err = s.MostSaved(ctx, limit); err != nil {
		return nil, err
	}
	return summary, nil
}

// TopQueries returns the most frequent queries, case-insensitively.
func (s *InsightsService) TopQueries(ctx context.Context, days, limit int) ([]TermCount, error) {
	days, limit = normaliseWindow(days, limit)
	rows, err := s.groupCount(ensureContext(ctx), s.since(days), "LOWER(query)", "query <> ''", limit)
	if err != nil {
		return nil, fmt.Errorf("insights service: top queries: %w", err)
	}
	return rows, nil
}

// ZeroResultQueries returns the most frequent queries that matched nothing.
func (s *InsightsService) ZeroResultQueries(ctx context.Context, days, limit int) ([]TermCount, error) {
	days, limit = normaliseWindow(days, limit)
	rows, err := s.groupCount(ensureContext(ctx), s.since(days), "LOWER(query)", "query <> '' AND result_count = 0", limit)
	if err != nil {
		return nil, fmt.Errorf("insights service: zero result queries: %w", err)
	}
	return rows, nil
}

// TopLocations returns the states searched for most often.
func (s *InsightsService) TopLocations(ctx context.Context, days, limit int) ([]TermCount, error) {
	days, limit = normaliseWindow(days, limit)
	rows, err := s.groupCount(ensureContext(ctx), s.since(days), "state", "state <> ''", limit)
	if err != nil {
		return nil, fmt.Errorf("insights service: top locations: %w", err)
	}
	return rows, nil
}

// TopKeywords counts individual keywords across the logged searches. Logs are
// read a page at a time so only the per-keyword tallies stay in memory.
func (s *InsightsService) TopKeywords(ctx context.Context, days, limit int) ([]TermCount, error) {
	ctx = ensureContext(ctx)
	days, limit = normaliseWindow(days, limit)

	counts := make(map[string]int64)
	var page []models.SearchLog
	err := s.logs(ctx, s.since(days)).
		Select("id", "keywords").
		Where("keywords <> ''").
		FindInBatches(&page, s.pageSize, func(*gorm.DB, int) error {
			for _, entry := range page {
				for _, keyword := range strings.Fields(entry.Keywords) {
					counts[keyword]++
				}
			}
			return nil
		}).Error
	if err != nil {
		return nil, fmt.Errorf("insights service: top keywords: %w", err)
	}

	out := make([]TermCount, 0, len(counts))
	for term, total := range counts {
		out = append(out, TermCount{Term: term, Total: total})
	}
	sortTermCounts(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MostSaved returns the companies saved by the most users.
func (s *InsightsService) MostSaved(ctx context.Context, limit int) ([]SavedCompanyCount, error) {
	_, limit = normaliseWindow(0, limit)

	rows := []SavedCompanyCount{}
	err := s.db.WithContext(ensureContext(ctx)).
		Table("saved_companies").
		Select("companies.id AS company_id, companies.name AS name, companies.slug AS slug, COUNT(*) AS total").
		Joins("JOIN companies ON companies.id = saved_companies.company_id").
		Group("companies.id, companies.name, companies.slug").
		Order("total DESC, companies.name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("insights service: most saved: %w", err)
	}
	return rows, nil
}

func (s *InsightsService) logs(ctx context.Context, since time.Time) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.SearchLog{}).Where("created_at >= ?", since)
}

func (s *InsightsService) groupCount(ctx context.Context, since time.Time, expr, cond string, limit int) ([]TermCount, error) {
	rows := []TermCount{}
	err := s.logs(ctx, since).
		Select(expr + " AS term, COUNT(*) AS total").
		Where(cond).
		Group(expr).
		Order("total DESC, term ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (s *InsightsService) since(days int) time.Time {
	return s.now().AddDate(0, 0, -days)
}

func normaliseWindow(days, limit int) (int, int) {
	if days <= 0 {
		days = defaultInsightsDays
	}
	if days > maxInsightsDays {
		days = maxInsightsDays
	}
	if limit <= 0 {
		limit = defaultInsightsLimit
	}
	if limit > maxInsightsLimit {
		limit = maxInsightsLimit
	}
	return days, limit
}

func sortTermCounts(rows []TermCount) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Term < rows[j].Term
	})
}
