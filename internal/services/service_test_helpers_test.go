package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/database/testutil"
	"github.com/nutralink/directory/internal/events"
	"github.com/nutralink/directory/internal/models"
	"github.com/nutralink/directory/internal/realtime"
	"github.com/nutralink/directory/pkg/mail"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Envelope
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, msg events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, env := range p.events {
		out[i] = env.Meta.Type
	}
	return out
}

type broadcast struct {
	stream  string
	userID  string
	message realtime.Message
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []broadcast
}

func (b *recordingBroadcaster) BroadcastToUser(stream, userID string, message realtime.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, broadcast{stream: stream, userID: userID, message: message})
}

func (b *recordingBroadcaster) BroadcastStream(stream string, message realtime.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, broadcast{stream: stream, message: message})
}

func (b *recordingBroadcaster) last() broadcast {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sent) == 0 {
		return broadcast{}
	}
	return b.sent[len(b.sent)-1]
}

type stubMailer struct {
	sent []mail.Message
	err  error
}

func (m *stubMailer) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
}

func createTestCompany(t *testing.T, db *gorm.DB, company models.Company, certs ...string) *models.Company {
	t.Helper()
	if company.Slug == "" {
		company.Slug = models.Slugify(company.Name)
	}
	if company.Country == "" {
		company.Country = "India"
	}
	company.SetCertifications(certs)
	require.NoError(t, db.Create(&company).Error)
	return &company
}
