package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nutralink/directory/internal/models"
)

func TestEmailTemplateServiceCRUDIsScopedToOwner(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewEmailTemplateService(db)
	require.NoError(t, err)

	ctx := context.Background()
	tmpl, err := svc.Create(ctx, "owner", EmailTemplateInput{
		Name:    " Intro ",
		Subject: "Sourcing from {{.CompanyName}}",
		Body:    "Hello {{.CompanyName}} team in {{.City}},\n\n{{.SenderName}}",
	})
	require.NoError(t, err)
	require.Equal(t, "Intro", tmpl.Name)

	_, err = svc.Create(ctx, "owner", EmailTemplateInput{Name: "Intro", Subject: "x", Body: "y"})
	require.ErrorIs(t, err, ErrTemplateNameTaken)

	_, err = svc.Create(ctx, "someone-else", EmailTemplateInput{Name: "Intro", Subject: "x", Body: "y"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "someone-else", tmpl.ID)
	require.ErrorIs(t, err, ErrTemplateNotFound)

	subject := "Quote request for {{.CompanyName}}"
	updated, err := svc.Update(ctx, "owner", tmpl.ID, UpdateEmailTemplateInput{Subject: &subject})
	require.NoError(t, err)
	require.Equal(t, subject, updated.Subject)

	list, err := svc.List(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.ErrorIs(t, svc.Delete(ctx, "someone-else", tmpl.ID), ErrTemplateNotFound)
	require.NoError(t, svc.Delete(ctx, "owner", tmpl.ID))
	require.ErrorIs(t, svc.Delete(ctx, "owner", tmpl.ID), ErrTemplateNotFound)
}

func TestEmailTemplateServiceRejectsBrokenTemplates(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewEmailTemplateService(db)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.Create(ctx, "owner", EmailTemplateInput{Name: "Broken", Subject: "Hi", Body: "{{.CompanyName"})
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	require.Equal(t, "body", inputErr.Field)

	_, err = svc.Create(ctx, "owner", EmailTemplateInput{Name: "Unknown", Subject: "{{.Budget}}", Body: "Hi"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, "owner", EmailTemplateInput{Name: "", Subject: "Hi", Body: "Hi"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, " ", EmailTemplateInput{Name: "x", Subject: "Hi", Body: "Hi"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRenderTemplate(t *testing.T) {
	company := &models.Company{Name: "Malabar Spice", City: "Kochi", State: "Kerala"}
	subject, body, err := RenderTemplate(
		" Turmeric for {{.CompanyName}} ",
		"Dear {{.CompanyName}} ({{.City}}, {{.State}}),\n-- {{.SenderName}}",
		TemplateDataFor(company, " Asha "),
	)
	require.NoError(t, err)
	require.Equal(t, "Turmeric for Malabar Spice", subject)
	require.Equal(t, "Dear Malabar Spice (Kochi, Kerala),\n-- Asha", body)

	_, body, err = RenderTemplate("Hi", "Hello {{.CompanyName}}", TemplateDataFor(nil, ""))
	require.NoError(t, err)
	require.Equal(t, "Hello ", body)
}
