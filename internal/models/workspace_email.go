package models

import "time"

const (
	EmailStatusSent     = "sent"
	EmailStatusFailed   = "failed"
	EmailStatusDisabled = "disabled"
)

// WorkspaceEmail records an outreach email sent from a user's workspace.
type WorkspaceEmail struct {
	BaseModel
	UserID     string         `gorm:"size:64;not null;index" json:"user_id"`
	CompanyID  string         `gorm:"size:36;not null;index" json:"company_id"`
	Company    *Company       `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
	TemplateID *string        `gorm:"size:36;index" json:"template_id,omitempty"`
	Template   *EmailTemplate `gorm:"foreignKey:TemplateID;constraint:OnDelete:SET NULL" json:"-"`
	Recipient  string         `gorm:"not null" json:"recipient"`
	Subject    string         `gorm:"not null" json:"subject"`
	Body       string         `gorm:"type:text" json:"body"`
	Status     string         `gorm:"size:16;not null;index" json:"status"`
	Error      string         `gorm:"type:text" json:"error,omitempty"`
	SentAt     *time.Time     `json:"sent_at,omitempty"`
}
