package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/models"
)

// TemplateData is the data available to email templates.
type TemplateData struct {
	CompanyName string
	City        string
	State       string
	SenderName  string
}

// TemplateDataFor builds the template data for company and sender.
func TemplateDataFor(company *models.Company, senderName string) TemplateData {
	data := TemplateData{SenderName: strings.TrimSpace(senderName)}
	if company != nil {
		data.CompanyName = company.Name
		data.City = company.City
		data.State = company.State
	}
	return data
}

// EmailTemplateInput carries the fields of a template.
type EmailTemplateInput struct {
	Name    string
	Subject string
	Body    string
}

// UpdateEmailTemplateInput describes mutable template fields. A nil pointer indicates no change.
type UpdateEmailTemplateInput struct {
	Name    *string
	Subject *string
	Body    *string
}

// EmailTemplateService manages outreach templates scoped to their owner.
type EmailTemplateService struct {
	db *gorm.DB
}

// NewEmailTemplateService constructs the service once a database handle is supplied.
func NewEmailTemplateService(db *gorm.DB) (*EmailTemplateService, error) {
	if db == nil {
		return nil, errors.New("email template service: db is required")
	}
	return &EmailTemplateService{db: db}, nil
}

// List returns the owner's templates ordered by name.
func (s *EmailTemplateService) List(ctx context.Context, ownerID string) ([]models.EmailTemplate, error) {
	templates := []models.EmailTemplate{}
	err := s.db.WithContext(ensureContext(ctx)).
		Where("owner_user_id = ?", strings.TrimSpace(ownerID)).
		Order("LOWER(name)").
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("email template service: list: %w", err)
	}
	return templates, nil
}

// Get loads one of the owner's templates.
func (s *EmailTemplateService) Get(ctx context.Context, ownerID, id string) (*models.EmailTemplate, error) {
	var tmpl models.EmailTemplate
	err := s.db.WithContext(ensureContext(ctx)).
		Where("id = ? AND owner_user_id = ?", strings.TrimSpace(id), strings.TrimSpace(ownerID)).
		Take(&tmpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("email template service: get: %w", err)
	}
	return &tmpl, nil
}

// Create stores a new template after checking that it renders.
func (s *EmailTemplateService) Create(ctx context.Context, ownerID string, input EmailTemplateInput) (*models.EmailTemplate, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, invalidInput("owner_user_id", "is required")
	}

	tmpl := models.EmailTemplate{
		OwnerUserID: ownerID,
		Name:        strings.TrimSpace(input.Name),
		Subject:     strings.TrimSpace(input.Subject),
		Body:        input.Body,
	}
	if err := validateTemplate(&tmpl); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ensureContext(ctx)).Create(&tmpl).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrTemplateNameTaken
		}
		return nil, fmt.Errorf("email template service: create: %w", err)
	}
	return &tmpl, nil
}

// Update modifies one of the owner's templates.
func (s *EmailTemplateService) Update(ctx context.Context, ownerID, id string, input UpdateEmailTemplateInput) (*models.EmailTemplate, error) {
	ctx = ensureContext(ctx)

	tmpl, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		tmpl.Name = strings.TrimSpace(*input.Name)
	}
	if input.Subject != nil {
		tmpl.Subject = strings.TrimSpace(*input.Subject)
	}
	if input.Body != nil {
		tmpl.Body = *input.Body
	}
	if err := validateTemplate(tmpl); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(tmpl).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrTemplateNameTaken
		}
		return nil, fmt.Errorf("email template service: update: %w", err)
	}
	return tmpl, nil
}

// Delete removes one of the owner's templates.
func (s *EmailTemplateService) Delete(ctx context.Context, ownerID, id string) error {
	result := s.db.WithContext(ensureContext(ctx)).
		Where("id = ? AND owner_user_id = ?", strings.TrimSpace(id), strings.TrimSpace(ownerID)).
		Delete(&models.EmailTemplate{})
	if result.Error != nil {
		return fmt.Errorf("email template service: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// RenderTemplate expands subject and body with data. Missing fields render
// empty rather than "<no value>".
func RenderTemplate(subject, body string, data TemplateData) (string, string, error) {
	renderedSubject, err := render("subject", subject, data)
	if err != nil {
		return "", "", err
	}
	renderedBody, err := render("body", body, data)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(renderedSubject), renderedBody, nil
}

func render(name, text string, data TemplateData) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", invalidInput(name, err.Error())
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", invalidInput(name, err.Error())
	}
	return b.String(), nil
}

func validateTemplate(tmpl *models.EmailTemplate) error {
	if tmpl.Name == "" {
		return invalidInput("name", "is required")
	}
	if tmpl.Subject == "" {
		return invalidInput("subject", "is required")
	}
	if strings.TrimSpace(tmpl.Body) == "" {
		return invalidInput("body", "is required")
	}
	_, _, err := RenderTemplate(tmpl.Subject, tmpl.Body, TemplateData{})
	return err
}
