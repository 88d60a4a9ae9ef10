package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nutralink/directory/internal/events"
	"github.com/nutralink/directory/internal/models"
	"github.com/nutralink/directory/pkg/mail"
)

func TestOutreachServiceSendRendersTemplate(t *testing.T) {
	db := openServiceTestDB(t)
	company := createTestCompany(t, db, models.Company{
		Name:  "Malabar Spice",
		City:  "Kochi",
		State: "Kerala",
		Email: "sales@malabar.example.com",
	})

	templates, err := NewEmailTemplateService(db)
	require.NoError(t, err)
	tmpl, err := templates.Create(context.Background(), "buyer", EmailTemplateInput{
		Name:    "Intro",
		Subject: "Curcumin for {{.CompanyName}}",
		Body:    "Hello {{.City}} team,\n{{.SenderName}}",
	})
	require.NoError(t, err)

	mailer := &stubMailer{}
	pub := &recordingPublisher{}
	svc, err := NewOutreachService(db, mailer, templates, pub)
	require.NoError(t, err)
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	email, err := svc.Send(context.Background(), SendEmailInput{
		UserID:     "buyer",
		SenderName: "Asha",
		ReplyTo:    "asha@buyer.example.com",
		CompanyID:  company.Slug,
		TemplateID: tmpl.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.EmailStatusSent, email.Status)
	require.NotNil(t, email.SentAt)
	require.True(t, fixed.Equal(*email.SentAt))
	require.Equal(t, "sales@malabar.example.com", email.Recipient)
	require.Equal(t, "Curcumin for Malabar Spice", email.Subject)
	require.NotNil(t, email.TemplateID)

	require.Len(t, mailer.sent, 1)
	require.Equal(t, []string{"sales@malabar.example.com"}, mailer.sent[0].To)
	require.Equal(t, "asha@buyer.example.com", mailer.sent[0].ReplyTo)
	require.Equal(t, "Hello Kochi team,\nAsha", mailer.sent[0].Body)

	require.Equal(t, []string{events.TypeOutreachEmail}, pub.types())
}

func TestOutreachServiceRecordsDeliveryOutcome(t *testing.T) {
	db := openServiceTestDB(t)
	company := createTestCompany(t, db, models.Company{Name: "Kutch Herbals"})

	cases := []struct {
		name   string
		mailer mail.Mailer
		status string
		errMsg string
	}{
		{name: "no mailer", mailer: nil, status: models.EmailStatusDisabled},
		{name: "smtp disabled", mailer: &stubMailer{err: mail.ErrSMTPDisabled}, status: models.EmailStatusDisabled},
		{name: "smtp failure", mailer: &stubMailer{err: errors.New("connection refused")}, status: models.EmailStatusFailed, errMsg: "connection refused"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, err := NewOutreachService(db, tc.mailer, nil, nil)
			require.NoError(t, err)

			email, err := svc.Send(context.Background(), SendEmailInput{
				UserID:    "buyer",
				CompanyID: company.ID,
				Recipient: "info@kutch.example.com",
				Subject:   "Guggul availability",
				Body:      "Hi {{.CompanyName}}",
			})
			require.NoError(t, err)
			require.Equal(t, tc.status, email.Status)
			require.Equal(t, tc.errMsg, email.Error)
			require.Nil(t, email.SentAt)
			require.Equal(t, "Hi Kutch Herbals", email.Body)
		})
	}
}

func TestOutreachServiceValidatesInput(t *testing.T) {
	db := openServiceTestDB(t)
	company := createTestCompany(t, db, models.Company{Name: "No Email Co"})

	svc, err := NewOutreachService(db, nil, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.Send(ctx, SendEmailInput{CompanyID: company.ID, Subject: "s", Body: "b"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Send(ctx, SendEmailInput{UserID: "u", CompanyID: "missing", Subject: "s", Body: "b"})
	require.ErrorIs(t, err, ErrCompanyNotFound)

	_, err = svc.Send(ctx, SendEmailInput{UserID: "u", CompanyID: company.ID, Subject: "s", Body: "b"})
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	require.Equal(t, "recipient", inputErr.Field)

	_, err = svc.Send(ctx, SendEmailInput{UserID: "u", CompanyID: company.ID, Recipient: "a@b.c", Body: "b"})
	require.ErrorAs(t, err, &inputErr)
	require.Equal(t, "subject", inputErr.Field)

	_, err = svc.Send(ctx, SendEmailInput{UserID: "u", CompanyID: company.ID, TemplateID: "missing"})
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestOutreachServiceListFiltersByCompany(t *testing.T) {
	db := openServiceTestDB(t)
	first := createTestCompany(t, db, models.Company{Name: "First", Email: "a@first.example.com"})
	second := createTestCompany(t, db, models.Company{Name: "Second", Email: "b@second.example.com"})

	svc, err := NewOutreachService(db, &stubMailer{}, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()
	for _, companyID := range []string{first.ID, first.ID, second.ID} {
		_, err := svc.Send(ctx, SendEmailInput{UserID: "buyer", CompanyID: companyID, Subject: "Hi", Body: "Hello"})
		require.NoError(t, err)
	}
	_, err = svc.Send(ctx, SendEmailInput{UserID: "other", CompanyID: first.ID, Subject: "Hi", Body: "Hello"})
	require.NoError(t, err)

	emails, total, err := svc.List(ctx, "buyer", ListEmailsOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, emails, 3)
	require.NotNil(t, emails[0].Company)

	emails, total, err = svc.List(ctx, "buyer", ListEmailsOptions{CompanyID: first.ID, PerPage: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, emails, 1)
	require.Equal(t, first.ID, emails[0].CompanyID)
}
