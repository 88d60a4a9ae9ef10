package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/events"
	"github.com/nutralink/directory/internal/models"
	"github.com/nutralink/directory/internal/realtime"
	"github.com/nutralink/directory/pkg/metrics"
)

// SavedCount is pushed to the user's realtime stream after every change.
type SavedCount struct {
	Count     int64  `json:"count"`
	CompanyID string `json:"company_id"`
	Saved     bool   `json:"saved"`
}

// SavedCompanyService manages the companies a user bookmarked.
type SavedCompanyService struct {
	db        *gorm.DB
	publisher events.Publisher
	realtime  realtime.Broadcaster
}

// NewSavedCompanyService constructs the service. publisher and hub may be nil.
func NewSavedCompanyService(db *gorm.DB, publisher events.Publisher, hub realtime.Broadcaster) (*SavedCompanyService, error) {
	if db == nil {
		return nil, errors.New("saved company service: db is required")
	}
	return &SavedCompanyService{db: db, publisher: publisher, realtime: hub}, nil
}

// Save bookmarks the company identified by companyIDOrSlug for userID.
func (s *SavedCompanyService) Save(ctx context.Context, userID, companyIDOrSlug, note string) (*models.SavedCompany, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, invalidInput("user_id", "is required")
	}

	company, err := findCompany(ctx, s.db, companyIDOrSlug)
	if err != nil {
		return nil, err
	}

	saved := models.SavedCompany{
		UserID:    userID,
		CompanyID: company.ID,
		Note:      strings.TrimSpace(note),
	}
	if err := s.db.WithContext(ctx).Create(&saved).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrCompanyAlreadySaved
		}
		return nil, fmt.Errorf("saved company service: save: %w", err)
	}
	saved.Company = company

	metrics.SavedCompanyChanges.WithLabelValues("save").Inc()
	s.notify(ctx, events.TypeCompanySaved, userID, company.ID, true)
	return &saved, nil
}

// Unsave removes the bookmark.
func (s *SavedCompanyService) Unsave(ctx context.Context, userID, companyIDOrSlug string) error {
	ctx = ensureContext(ctx)

	company, err := findCompany(ctx, s.db, companyIDOrSlug)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND company_id = ?", strings.TrimSpace(userID), company.ID).
		Delete(&models.SavedCompany{})
	if result.Error != nil {
		return fmt.Errorf("saved company service: unsave: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSavedCompanyNotFound
	}

	metrics.SavedCompanyChanges.WithLabelValues("unsave").Inc()
	s.notify(ctx, events.TypeCompanyUnsaved, userID, company.ID, false)
	return nil
}

// List returns the user's saved companies, newest first.
func (s *SavedCompanyService) List(ctx context.Context, userID string, page, perPage int) ([]models.SavedCompany, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage = normalisePage(page, perPage, defaultPerPage, maxPerPage)

	query := s.db.WithContext(ctx).Model(&models.SavedCompany{}).Where("user_id = ?", strings.TrimSpace(userID))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("saved company service: count: %w", err)
	}

	saved := []models.SavedCompany{}
	if err := query.
		Preload("Company").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&saved).Error; err != nil {
		return nil, 0, fmt.Errorf("saved company service: list: %w", err)
	}
	return saved, total, nil
}

// Count returns how many companies userID saved.
func (s *SavedCompanyService) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ensureContext(ctx)).
		Model(&models.SavedCompany{}).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("saved company service: count: %w", err)
	}
	return count, nil
}

// CompanySaveCount returns how many users saved the company.
func (s *SavedCompanyService) CompanySaveCount(ctx context.Context, companyIDOrSlug string) (int64, error) {
	ctx = ensureContext(ctx)

	company, err := findCompany(ctx, s.db, companyIDOrSlug)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.SavedCompany{}).
		Where("company_id = ?", company.ID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("saved company service: company count: %w", err)
	}
	return count, nil
}

// IsSaved reports whether userID saved the company.
func (s *SavedCompanyService) IsSaved(ctx context.Context, userID, companyID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ensureContext(ctx)).
		Model(&models.SavedCompany{}).
		Where("user_id = ? AND company_id = ?", strings.TrimSpace(userID), strings.TrimSpace(companyID)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("saved company service: lookup: %w", err)
	}
	return count > 0, nil
}

func (s *SavedCompanyService) notify(ctx context.Context, eventType, userID, companyID string, saved bool) {
	count, err := s.Count(ctx, userID)
	if err != nil {
		return
	}

	events.Emit(ctx, s.publisher, eventType, events.CompanySaved{
		UserID:     userID,
		CompanyID:  companyID,
		SavedCount: count,
	}, "")

	if s.realtime != nil {
		s.realtime.BroadcastToUser(realtime.StreamSaved, userID, realtime.Message{
			Event: realtime.EventSavedCount,
			Data:  SavedCount{Count: count, CompanyID: companyID, Saved: saved},
		})
	}
}
