package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/events"
	"github.com/nutralink/directory/internal/models"
	"github.com/nutralink/directory/pkg/logger"
	"github.com/nutralink/directory/pkg/mail"
	"github.com/nutralink/directory/pkg/metrics"
)

// SendEmailInput describes an outreach email. When TemplateID is set the
// template supplies Subject and Body unless they are given explicitly.
type SendEmailInput struct {
	UserID     string
	SenderName string
	From       string
	ReplyTo    string
	CompanyID  string
	TemplateID string
	Subject    string
	Body       string
	Recipient  string
}

// ListEmailsOptions filters a user's outreach history.
type ListEmailsOptions struct {
	CompanyID string
	Page      int
	PerPage   int
}

// OutreachService sends emails to listed companies and records the outcome.
type OutreachService struct {
	db        *gorm.DB
	mailer    mail.Mailer
	templates *EmailTemplateService
	publisher events.Publisher
	now       func() time.Time
}

// NewOutreachService constructs the service. A nil mailer stores every email
// as disabled.
func NewOutreachService(db *gorm.DB, mailer mail.Mailer, templates *EmailTemplateService, publisher events.Publisher) (*OutreachService, error) {
	if db == nil {
		return nil, errors.New("outreach service: db is required")
	}
	if templates == nil {
		var err error
		if templates, err = NewEmailTemplateService(db); err != nil {
			return nil, err
		}
	}
	return &OutreachService{
		db:        db,
		mailer:    mailer,
		templates: templates,
		publisher: publisher,
		now:       time.Now,
	}, nil
}

// Send renders and delivers an email, then stores it with its delivery
// status. Delivery failures are recorded on the row, not returned.
func (s *OutreachService) Send(ctx context.Context, input SendEmailInput) (*models.WorkspaceEmail, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, invalidInput("user_id", "is required")
	}

	company, err := findCompany(ctx, s.db, input.CompanyID)
	if err != nil {
		return nil, err
	}

	subject, body := input.Subject, input.Body
	var templateID *string
	if id := strings.TrimSpace(input.TemplateID); id != "" {
		tmpl, err := s.templates.Get(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(subject) == "" {
			subject = tmpl.Subject
		}
		if strings.TrimSpace(body) == "" {
			body = tmpl.Body
		}
		templateID = &tmpl.ID
	}
	if strings.TrimSpace(subject) == "" {
		return nil, invalidInput("subject", "is required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, invalidInput("body", "is required")
	}

	subject, body, err = RenderTemplate(subject, body, TemplateDataFor(company, input.SenderName))
	if err != nil {
		return nil, err
	}

	recipient := strings.TrimSpace(input.Recipient)
	if recipient == "" {
		recipient = strings.TrimSpace(company.Email)
	}
	if recipient == "" {
		return nil, invalidInput("recipient", "company has no email address")
	}

	email := models.WorkspaceEmail{
		UserID:     userID,
		CompanyID:  company.ID,
		TemplateID: templateID,
		Recipient:  recipient,
		Subject:    subject,
		Body:       body,
	}
	s.deliver(ctx, &email, input)

	if err := s.db.WithContext(ctx).Create(&email).Error; err != nil {
		return nil, fmt.Errorf("outreach service: store email: %w", err)
	}
	email.Company = company

	metrics.OutreachEmails.WithLabelValues(email.Status).Inc()
	events.Emit(ctx, s.publisher, events.TypeOutreachEmail, events.OutreachEmail{
		EmailID:   email.ID,
		UserID:    userID,
		CompanyID: company.ID,
		Status:    email.Status,
	}, email.ID)

	return &email, nil
}

func (s *OutreachService) deliver(ctx context.Context, email *models.WorkspaceEmail, input SendEmailInput) {
	if s.mailer == nil {
		email.Status = models.EmailStatusDisabled
		return
	}

	err := s.mailer.Send(ctx, mail.Message{
		From:    strings.TrimSpace(input.From),
		ReplyTo: strings.TrimSpace(input.ReplyTo),
		To:      []string{email.Recipient},
		Subject: email.Subject,
		Body:    email.Body,
	})
	switch {
	case err == nil:
		sentAt := s.now().UTC()
		email.Status = models.EmailStatusSent
		email.SentAt = &sentAt
	case errors.Is(err, mail.ErrSMTPDisabled):
		email.Status = models.EmailStatusDisabled
	default:
		email.Status = models.EmailStatusFailed
		email.Error = err.Error()
		logger.WithModule("outreach").Warn("email delivery failed",
			zap.String("company_id", email.CompanyID),
			zap.Error(err),
		)
	}
}

// List returns the user's outreach emails, newest first.
func (s *OutreachService) List(ctx context.Context, userID string, opts ListEmailsOptions) ([]models.WorkspaceEmail, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage := normalisePage(opts.Page, opts.PerPage, defaultPerPage, maxPerPage)

	query := s.db.WithContext(ctx).Model(&models.WorkspaceEmail{}).
		Where("user_id = ?", strings.TrimSpace(userID))
	if companyID := strings.TrimSpace(opts.CompanyID); companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("outreach service: count emails: %w", err)
	}

	emails := []models.WorkspaceEmail{}
	err := query.
		Preload("Company").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&emails).Error
	if err != nil {
		return nil, 0, fmt.Errorf("outreach service: list emails: %w", err)
	}
	return emails, total, nil
}
