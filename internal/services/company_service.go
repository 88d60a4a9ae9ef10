package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/cache"
	"github.com/nutralink/directory/internal/events"
	"github.com/nutralink/directory/internal/models"
	"github.com/nutralink/directory/internal/realtime"
	"github.com/nutralink/directory/internal/search"
	"github.com/nutralink/directory/pkg/logger"
)

// CompanyServiceOptions wires the optional collaborators of CompanyService.
type CompanyServiceOptions struct {
	Parser          *search.Parser
	Cache           cache.Store
	CacheTTL        time.Duration
	DefaultPageSize int
	MaxPageSize     int
	LogSearches     bool
	Publisher       events.Publisher
	Realtime        realtime.Broadcaster
	Audit           *AuditService
}

// CompanyService manages directory listings and answers searches.
type CompanyService struct {
	db        *gorm.DB
	parser    *search.Parser
	fields    search.Fields
	cache     cache.Store
	cacheTTL  time.Duration
	perPage   int
	maxPage   int
	logSearch bool
	publisher events.Publisher
	realtime  realtime.Broadcaster
	audit     *AuditService
	log       *zap.Logger
	now       func() time.Time
}

// NewCompanyService constructs a company service once a database handle is supplied.
func NewCompanyService(db *gorm.DB, opts CompanyServiceOptions) (*CompanyService, error) {
	if db == nil {
		return nil, errors.New("company service: db is required")
	}
	parser := opts.Parser
	if parser == nil {
		parser = search.NewParser(nil)
	}
	perPage, maxPage := opts.DefaultPageSize, opts.MaxPageSize
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if maxPage < perPage {
		maxPage = max(perPage, maxPerPage)
	}

	return &CompanyService{
		db:        db,
		parser:    parser,
		fields:    search.CompanyFields(),
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		perPage:   perPage,
		maxPage:   maxPage,
		logSearch: opts.LogSearches,
		publisher: opts.Publisher,
		realtime:  opts.Realtime,
		audit:     opts.Audit,
		log:       logger.WithModule("companies"),
		now:       time.Now,
	}, nil
}

// Paging clamps page and perPage to the configured listing limits.
func (s *CompanyService) Paging(page, perPage int) (int, int) {
	return normalisePage(page, perPage, s.perPage, s.maxPage)
}

// Parser exposes the query parser used for searches.
func (s *CompanyService) Parser() *search.Parser {
	return s.parser
}

// CompanyInput carries the writable fields of a company.
type CompanyInput struct {
	Name            string
	Slug            string
	Description     string
	EntityType      string
	Products        string
	Categories      string
	Certifications  []string
	IsExporter      bool
	ExportMarkets   string
	Address         string
	City            string
	State           string
	Country         string
	Website         string
	Email           string
	Phone           string
	Verified        bool
	YearEstablished int
}

// UpdateCompanyInput describes mutable company fields. A nil pointer indicates no change.
type UpdateCompanyInput struct {
	Name            *string
	Slug            *string
	Description     *string
	EntityType      *string
	Products        *string
	Categories      *string
	Certifications  *[]string
	IsExporter      *bool
	ExportMarkets   *string
	Address         *string
	City            *string
	State           *string
	Country         *string
	Website         *string
	Email           *string
	Phone           *string
	Verified        *bool
	YearEstablished *int
}

// ListCompaniesOptions filters and paginates the plain listing.
type ListCompaniesOptions struct {
	Filters     search.FilterContext
	OwnerUserID string
	Page        int
	PerPage     int
}

// Create stores a new listing owned by the actor. Only admins may mark it verified.
func (s *CompanyService) Create(ctx context.Context, actor Actor, input CompanyInput) (*models.Company, error) {
	ctx = ensureContext(ctx)

	company := models.Company{
		Name:            strings.TrimSpace(input.Name),
		Slug:            strings.TrimSpace(input.Slug),
		Description:     strings.TrimSpace(input.Description),
		EntityType:      input.EntityType,
		Products:        strings.TrimSpace(input.Products),
		Categories:      strings.TrimSpace(input.Categories),
		IsExporter:      input.IsExporter,
		ExportMarkets:   strings.TrimSpace(input.ExportMarkets),
		Address:         strings.TrimSpace(input.Address),
		City:            strings.TrimSpace(input.City),
		State:           input.State,
		Country:         strings.TrimSpace(input.Country),
		Website:         strings.TrimSpace(input.Website),
		Email:           strings.TrimSpace(input.Email),
		Phone:           strings.TrimSpace(input.Phone),
		Verified:        input.Verified && actor.Admin,
		YearEstablished: input.YearEstablished,
		OwnerUserID:     actor.userIDPtr(),
	}
	company.SetCertifications(input.Certifications)

	if err := s.normalise(&company); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&company).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrCompanySlugTaken
		}
		return nil, fmt.Errorf("company service: create: %w", err)
	}

	s.afterChange(ctx, actor, &company, events.TypeCompanyCreated, realtime.EventCompanyCreated, AuditCompanyCreate)
	return &company, nil
}

// Update applies input to the company identified by idOrSlug.
func (s *CompanyService) Update(ctx context.Context, actor Actor, idOrSlug string, input UpdateCompanyInput) (*models.Company, error) {
	ctx = ensureContext(ctx)

	company, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, company) {
		return nil, ErrForbidden
	}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	assign(&company.Name, input.Name)
	assign(&company.Slug, input.Slug)
	assign(&company.Description, input.Description)
	assign(&company.EntityType, input.EntityType)
	assign(&company.Products, input.Products)
	assign(&company.Categories, input.Categories)
	assign(&company.ExportMarkets, input.ExportMarkets)
	assign(&company.Address, input.Address)
	assign(&company.City, input.City)
	assign(&company.State, input.State)
	assign(&company.Country, input.Country)
	assign(&company.Website, input.Website)
	assign(&company.Email, input.Email)
	assign(&company.Phone, input.Phone)
	if input.Certifications != nil {
		company.SetCertifications(*input.Certifications)
	}
	if input.IsExporter != nil {
		company.IsExporter = *input.IsExporter
	}
	if input.YearEstablished != nil {
		company.YearEstablished = *input.YearEstablished
	}
	if input.Verified != nil {
		if !actor.Admin {
			return nil, ErrForbidden
		}
		company.Verified = *input.Verified
	}

	if err := s.normalise(company); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(company).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrCompanySlugTaken
		}
		return nil, fmt.Errorf("company service: update: %w", err)
	}

	s.afterChange(ctx, actor, company, events.TypeCompanyUpdated, realtime.EventCompanyUpdated, AuditCompanyUpdate)
	return company, nil
}

// Delete removes the company together with the saved entries and emails referencing it.
func (s *CompanyService) Delete(ctx context.Context, actor Actor, idOrSlug string) error {
	ctx = ensureContext(ctx)

	company, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return err
	}
	if !canManage(actor, company) {
		return ErrForbidden
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", company.ID).Delete(&models.SavedCompany{}).Error; err != nil {
			return err
		}
		if err := tx.Where("company_id = ?", company.ID).Delete(&models.WorkspaceEmail{}).Error; err != nil {
			return err
		}
		return tx.Delete(company).Error
	})
	if err != nil {
		return fmt.Errorf("company service: delete: %w", err)
	}

	s.afterChange(ctx, actor, company, events.TypeCompanyDeleted, realtime.EventCompanyDeleted, AuditCompanyDelete)
	return nil
}

// Get loads a company by ID or slug.
func (s *CompanyService) Get(ctx context.Context, idOrSlug string) (*models.Company, error) {
	return findCompany(ensureContext(ctx), s.db, idOrSlug)
}

// List returns companies matching the explicit filters, ordered by name.
func (s *CompanyService) List(ctx context.Context, opts ListCompaniesOptions) ([]models.Company, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage := normalisePage(opts.Page, opts.PerPage, s.perPage, s.maxPage)

	spec := s.parser.Parse("", opts.Filters)
	query := search.Build(spec, s.fields).Apply(s.db.WithContext(ctx).Model(&models.Company{}))
	if owner := strings.TrimSpace(opts.OwnerUserID); owner != "" {
		query = query.Where("companies.owner_user_id = ?", owner)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("company service: count: %w", err)
	}

	companies := []models.Company{}
	if err := query.
		Order("companies.name ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&companies).Error; err != nil {
		return nil, 0, fmt.Errorf("company service: list: %w", err)
	}
	return companies, total, nil
}

// normalise validates company and canonicalises derived fields.
func (s *CompanyService) normalise(company *models.Company) error {
	if company.Name == "" {
		return invalidInput("name", "is required")
	}
	if company.Slug == "" {
		company.Slug = models.Slugify(company.Name)
	} else {
		company.Slug = models.Slugify(company.Slug)
	}
	if company.Slug == "" {
		return invalidInput("slug", "must contain letters or digits")
	}

	if raw := strings.TrimSpace(company.EntityType); raw != "" {
		entity, ok := search.ParseEntityType(raw)
		if !ok {
			return invalidInput("entity_type", fmt.Sprintf("unknown entity type %q", raw))
		}
		company.EntityType = string(entity)
	} else {
		company.EntityType = ""
	}

	if raw := strings.TrimSpace(company.State); raw != "" {
		if canonical, ok := s.parser.CanonicalState(raw); ok {
			company.State = s.parser.DisplayName(canonical)
		} else {
			company.State = raw
		}
	} else {
		company.State = ""
	}

	if company.Country == "" {
		company.Country = "India"
	}
	if company.YearEstablished < 0 {
		return invalidInput("year_established", "must not be negative")
	}
	return nil
}

func (s *CompanyService) afterChange(ctx context.Context, actor Actor, company *models.Company, eventType, realtimeEvent, auditAction string) {
	s.invalidateSearchCache(ctx)

	payload := events.CompanyChanged{CompanyID: company.ID, Slug: company.Slug, ActorID: actor.UserID}
	events.Emit(ctx, s.publisher, eventType, payload, "")
	if s.realtime != nil {
		s.realtime.BroadcastStream(realtime.StreamCompanies, realtime.Message{Event: realtimeEvent, Data: payload})
	}
	recordAudit(ctx, s.audit, actor, auditAction, CompanyResource(company.ID), map[string]any{"slug": company.Slug})
}

func canManage(actor Actor, company *models.Company) bool {
	if actor.Admin {
		return true
	}
	return company.OwnerUserID != nil && actor.UserID != "" && *company.OwnerUserID == actor.UserID
}

func findCompany(ctx context.Context, db *gorm.DB, idOrSlug string) (*models.Company, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, ErrCompanyNotFound
	}

	var company models.Company
	err := db.WithContext(ctx).
		Where("id = ? OR slug = ?", idOrSlug, strings.ToLower(idOrSlug)).
		Take(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("company service: load company: %w", err)
	}
	return &company, nil
}
