package models

// EmailTemplate is a reusable outreach email owned by a user.
type EmailTemplate struct {
	BaseModel
	OwnerUserID string `gorm:"size:64;not null;uniqueIndex:idx_template_owner_name" json:"owner_user_id"`
	Name        string `gorm:"size:120;not null;uniqueIndex:idx_template_owner_name" json:"name"`
	Subject     string `gorm:"not null" json:"subject"`
	Body        string `gorm:"type:text;not null" json:"body"`
}
