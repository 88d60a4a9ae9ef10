package models

// SearchLog captures one executed directory search for insights.
type SearchLog struct {
	BaseModel
	UserID      *string `gorm:"size:64;index" json:"user_id,omitempty"`
	Query       string  `gorm:"type:text;not null" json:"query"`
	Keywords    string  `gorm:"type:text" json:"keywords"`
	EntityType  string  `gorm:"size:32;index" json:"entity_type,omitempty"`
	State       string  `gorm:"size:120;index" json:"state,omitempty"`
	ExportOnly  bool    `gorm:"not null;default:false" json:"export_only"`
	ResultCount int64   `json:"result_count"`
}
