package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nutralink/directory/internal/models"
	"github.com/nutralink/directory/internal/monitoring"
	"github.com/nutralink/directory/internal/search"
	"github.com/nutralink/directory/pkg/metrics"
)

// searchGenerationKey holds a counter bumped on every company mutation. It is
// part of each result cache key, so a bump orphans all cached pages at once.
const (
	searchGenerationKey = "search:generation"
	generationWindow    = 30 * 24 * time.Hour
)

// SearchInput is a free-text query plus explicit filters.
type SearchInput struct {
	Query   string
	Filters search.FilterContext
	Page    int
	PerPage int
	UserID  string
}

// SearchResult is one page of matching companies.
type SearchResult struct {
	Spec      search.Spec      `json:"spec"`
	Companies []models.Company `json:"companies"`
	Total     int64            `json:"total"`
	Page      int              `json:"page"`
	PerPage   int              `json:"per_page"`
	Cached    bool             `json:"cached"`
}

type cachedPage struct {
	Companies []models.Company `json:"companies"`
	Total     int64            `json:"total"`
}

// Search parses input.Query, applies the filters and returns one page ordered
// by verified listings first, then name.
func (s *CompanyService) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	ctx = ensureContext(ctx)
	started := s.now()

	page, perPage := normalisePage(input.Page, input.PerPage, s.perPage, s.maxPage)
	spec := s.parser.Parse(input.Query, input.Filters)
	recordDetections(spec)

	result := &SearchResult{Spec: spec, Page: page, PerPage: perPage}

	key := s.pageCacheKey(ctx, spec, page, perPage)
	if cached, ok := s.readCachedPage(ctx, key); ok {
		result.Companies = cached.Companies
		result.Total = cached.Total
		result.Cached = true
	} else {
		query := search.Build(spec, s.fields).Apply(s.db.WithContext(ctx).Model(&models.Company{}))

		if err := query.Count(&result.Total).Error; err != nil {
			return nil, fmt.Errorf("company service: count search: %w", err)
		}

		result.Companies = []models.Company{}
		if result.Total > 0 {
			if err := query.
				Order("companies.verified DESC").
				Order("companies.name ASC").
				Offset((page - 1) * perPage).
				Limit(perPage).
				Find(&result.Companies).Error; err != nil {
				return nil, fmt.Errorf("company service: search: %w", err)
			}
		}
		s.writeCachedPage(ctx, key, cachedPage{Companies: result.Companies, Total: result.Total})
	}

	if page == 1 {
		s.recordSearchLog(ctx, input.UserID, spec, result.Total)
	}
	monitoring.RecordSearch(result.Cached, result.Total, s.now().Sub(started))
	return result, nil
}

// Explain parses query without touching the database.
func (s *CompanyService) Explain(query string, filters search.FilterContext) search.Explanation {
	return s.parser.Explain(query, filters, s.fields)
}

func (s *CompanyService) pageCacheKey(ctx context.Context, spec search.Spec, page, perPage int) string {
	if s.cache == nil || s.cacheTTL <= 0 {
		return ""
	}
	return fmt.Sprintf("%s:g%d:p%d:n%d", spec.CacheKey(), s.searchGeneration(ctx), page, perPage)
}

func (s *CompanyService) searchGeneration(ctx context.Context) int64 {
	raw, ok, err := s.cache.Get(ctx, searchGenerationKey)
	if err != nil || !ok {
		return 0
	}
	generation, _ := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	return generation
}

func (s *CompanyService) invalidateSearchCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, _, err := s.cache.IncrementWithTTL(ctx, searchGenerationKey, generationWindow); err != nil {
		s.log.Warn("bump search cache generation failed", zap.Error(err))
	}
}

func (s *CompanyService) readCachedPage(ctx context.Context, key string) (cachedPage, bool) {
	var page cachedPage
	if key == "" {
		return page, false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("search cache read failed", zap.Error(err))
		return page, false
	}
	if !ok {
		return page, false
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		s.log.Warn("search cache entry unreadable", zap.String("key", key), zap.Error(err))
		return page, false
	}
	if page.Companies == nil {
		page.Companies = []models.Company{}
	}
	return page, true
}

func (s *CompanyService) writeCachedPage(ctx context.Context, key string, page cachedPage) {
	if key == "" {
		return
	}
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.log.Warn("search cache write failed", zap.Error(err))
	}
}

func (s *CompanyService) recordSearchLog(ctx context.Context, userID string, spec search.Spec, total int64) {
	if !s.logSearch || strings.TrimSpace(spec.Raw) == "" {
		return
	}
	entry := models.SearchLog{
		UserID:      stringPtr(userID),
		Query:       strings.TrimSpace(spec.Raw),
		Keywords:    strings.Join(spec.Keywords, " "),
		EntityType:  string(spec.EntityType),
		ExportOnly:  spec.ExportOnly,
		ResultCount: total,
	}
	if spec.Location != nil {
		entry.State = spec.Location.State
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Warn("record search log failed", zap.Error(err))
	}
}

func recordDetections(spec search.Spec) {
	if len(spec.Keywords) > 0 {
		metrics.SearchDetections.WithLabelValues("keywords").Inc()
	}
	if spec.EntityTypeSource == search.SourceQuery {
		metrics.SearchDetections.WithLabelValues("entity_type").Inc()
	}
	if spec.Location != nil && spec.Location.Source == search.SourceQuery {
		metrics.SearchDetections.WithLabelValues("location").Inc()
	}
	if spec.ExportOnly {
		metrics.SearchDetections.WithLabelValues("export_only").Inc()
	}
	if len(spec.Rewrites) > 0 {
		metrics.SearchDetections.WithLabelValues("rewrite").Inc()
	}
}
