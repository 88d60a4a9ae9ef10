package api

import (
	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/app"
	"github.com/nutralink/directory/internal/realtime"
	"github.com/nutralink/directory/internal/services"
)

type serviceSet struct {
	companies *services.CompanyService
	saved     *services.SavedCompanyService
	templates *services.EmailTemplateService
	outreach  *services.OutreachService
	insights  *services.InsightsService
	audit     *services.AuditService
}

func newServices(db *gorm.DB, cfg *app.Config, deps Dependencies) (*serviceSet, error) {
	// A nil *Hub must not reach the services as a non-nil interface.
	var broadcaster realtime.Broadcaster
	if deps.Hub != nil {
		broadcaster = deps.Hub
	}

	audit := deps.Audit
	if audit == nil {
		var err error
		if audit, err = services.NewAuditService(db); err != nil {
			return nil, err
		}
	}

	companies, err := services.NewCompanyService(db, services.CompanyServiceOptions{
		Parser:          deps.Parser,
		Cache:           deps.Cache,
		CacheTTL:        cfg.Search.CacheTTL,
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
		LogSearches:     cfg.Search.LogSearches,
		Publisher:       deps.Publisher,
		Realtime:        broadcaster,
		Audit:           audit,
	})
	if err != nil {
		return nil, err
	}

	saved, err := services.NewSavedCompanyService(db, deps.Publisher, broadcaster)
	if err != nil {
		return nil, err
	}

	templates, err := services.NewEmailTemplateService(db)
	if err != nil {
		return nil, err
	}

	outreach, err := services.NewOutreachService(db, deps.Mailer, templates, deps.Publisher)
	if err != nil {
		return nil, err
	}

	insights, err := services.NewInsightsService(db)
	if err != nil {
		return nil, err
	}

	return &serviceSet{
		companies: companies,
		saved:     saved,
		templates: templates,
		outreach:  outreach,
		insights:  insights,
		audit:     audit,
	}, nil
}
