package models

// SavedCompany bookmarks a company in a user's workspace.
type SavedCompany struct {
	BaseModel
	UserID    string   `gorm:"size:64;not null;uniqueIndex:idx_saved_user_company" json:"user_id"`
	CompanyID string   `gorm:"size:36;not null;uniqueIndex:idx_saved_user_company;index" json:"company_id"`
	Company   *Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
	Note      string   `gorm:"type:text" json:"note,omitempty"`
}
