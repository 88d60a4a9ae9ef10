package events

import (
	"time"

	"github.com/google/uuid"
)

const producer = "directory-api"

// Event types double as AMQP routing keys.
const (
	TypeCompanySaved   = "directory.company.saved.v1"
	TypeCompanyUnsaved = "directory.company.unsaved.v1"
	TypeCompanyCreated = "directory.company.created.v1"
	TypeCompanyUpdated = "directory.company.updated.v1"
	TypeCompanyDeleted = "directory.company.deleted.v1"
	TypeOutreachEmail  = "directory.outreach.email.v1"
)

// Meta describes an emitted event.
type Meta struct {
	CorrelationID *string   `json:"correlation_id,omitempty"`
	ID            string    `json:"id"`
	Producer      string    `json:"producer"`
	Time          time.Time `json:"time"`
	Type          string    `json:"type"`
}

// Envelope is the wire format of every published event.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// NewEnvelope stamps data with a fresh event ID and the current time.
func NewEnvelope(eventType string, data any, correlationID string) Envelope {
	meta := Meta{
		ID:       uuid.NewString(),
		Producer: producer,
		Time:     time.Now().UTC(),
		Type:     eventType,
	}
	if correlationID != "" {
		meta.CorrelationID = &correlationID
	}
	return Envelope{Meta: meta, Data: data}
}

// CompanySaved is the payload of TypeCompanySaved and TypeCompanyUnsaved.
type CompanySaved struct {
	UserID     string `json:"user_id"`
	CompanyID  string `json:"company_id"`
	SavedCount int64  `json:"saved_count"`
}

// CompanyChanged is the payload of company lifecycle events.
type CompanyChanged struct {
	CompanyID string `json:"company_id"`
	Slug      string `json:"slug"`
	ActorID   string `json:"actor_id,omitempty"`
}

// OutreachEmail is the payload of TypeOutreachEmail.
type OutreachEmail struct {
	EmailID   string `json:"email_id"`
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Status    string `json:"status"`
}
