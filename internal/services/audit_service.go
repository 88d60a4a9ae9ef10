package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/models"
)

// Audited listing mutations.
const (
	AuditCompanyCreate = "company.create"
	AuditCompanyUpdate = "company.update"
	AuditCompanyDelete = "company.delete"
)

const (
	auditResultSuccess  = "success"
	defaultAuditPerPage = 50
	maxAuditPerPage     = 200
)

// CompanyResource is the audit resource key of a company listing.
func CompanyResource(companyID string) string {
	return "company:" + companyID
}

// AuditEntry is one listing mutation to record.
type AuditEntry struct {
	UserID    *string
	Action    string
	Resource  string
	Result    string
	IPAddress string
	UserAgent string
	Metadata  map[string]any
}

// AuditFilters narrows an audit listing. Action matches exactly unless it
// ends in '.' or ".*", which selects every action in that family
// ("company." matches create, update and delete).
type AuditFilters struct {
	UserID    string
	Action    string
	Result    string
	Resource  string
	CompanyID string
	Since     *time.Time
	Until     *time.Time
}

// AuditListOptions pages an audit listing.
type AuditListOptions struct {
	Page     int
	PageSize int
	Filters  AuditFilters
}

// AuditService records who changed which company listing.
type AuditService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAuditService(db *gorm.DB) (*AuditService, error) {
	if db == nil {
		return nil, errors.New("audit service: db is required")
	}
	return &AuditService{db: db, now: time.Now}, nil
}

// Log validates and stores entry. Metadata is kept as JSON.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	action, result := strings.TrimSpace(entry.Action), strings.TrimSpace(entry.Result)
	switch {
	case action == "":
		return errors.New("audit service: action is required")
	case result == "":
		return errors.New("audit service: result is required")
	}

	record := models.AuditLog{
		Action:    action,
		Result:    result,
		Resource:  strings.TrimSpace(entry.Resource),
		IPAddress: strings.TrimSpace(entry.IPAddress),
		UserAgent: strings.TrimSpace(entry.UserAgent),
	}
	if entry.UserID != nil {
		record.UserID = stringPtr(*entry.UserID)
	}
	if len(entry.Metadata) > 0 {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("audit service: marshal metadata: %w", err)
		}
		record.Metadata = datatypes.JSON(encoded)
	}

	if err := s.db.WithContext(ensureContext(ctx)).Create(&record).Error; err != nil {
		return fmt.Errorf("audit service: record %s: %w", action, err)
	}
	return nil
}

// List returns matching entries, newest first, and the total match count.
func (s *AuditService) List(ctx context.Context, opts AuditListOptions) ([]models.AuditLog, int64, error) {
	page, perPage := normalisePage(opts.Page, opts.PageSize, defaultAuditPerPage, maxAuditPerPage)
	query := opts.Filters.apply(s.db.WithContext(ensureContext(ctx)).Model(&models.AuditLog{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("audit service: count logs: %w", err)
	}

	logs := []models.AuditLog{}
	if total == 0 {
		return logs, 0, nil
	}
	err := query.
		Order("created_at DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("audit service: list logs: %w", err)
	}
	return logs, total, nil
}

// CleanupOlderThan deletes entries older than retentionDays and reports how
// many were removed. It backs the audit retention maintenance job.
func (s *AuditService) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, errors.New("audit service: retentionDays must be positive")
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	res := s.db.WithContext(ensureContext(ctx)).Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("audit service: cleanup logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (f AuditFilters) apply(query *gorm.DB) *gorm.DB {
	if v := strings.TrimSpace(f.UserID); v != "" {
		query = query.Where("user_id = ?", v)
	}
	if v := strings.TrimSpace(f.Action); v != "" {
		if family, ok := actionFamily(v); ok {
			query = query.Where("action LIKE ?", family+"%")
		} else {
			query = query.Where("action = ?", v)
		}
	}
	if v := strings.TrimSpace(f.Result); v != "" {
		query = query.Where("result = ?", v)
	}
	if v := strings.TrimSpace(f.Resource); v != "" {
		query = query.Where("resource = ?", v)
	}
	if v := strings.TrimSpace(f.CompanyID); v != "" {
		query = query.Where("resource = ?", CompanyResource(v))
	}
	if f.Since != nil {
		query = query.Where("created_at >= ?", *f.Since)
	}
	if f.Until != nil {
		query = query.Where("created_at <= ?", *f.Until)
	}
	return query
}

// actionFamily reports the "company." prefix of a family filter.
func actionFamily(action string) (string, bool) {
	action = strings.TrimSuffix(action, "*")
	if !strings.HasSuffix(action, ".") || strings.ContainsAny(action, "%_") {
		return "", false
	}
	return action, true
}
