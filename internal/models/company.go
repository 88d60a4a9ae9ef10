package models

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Company is a directory listing.
type Company struct {
	BaseModel
	Name        string `gorm:"not null;index" json:"name"`
	Slug        string `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	EntityType  string `gorm:"size:32;index" json:"entity_type"`
	// Products and Categories are free text, comma separated in practice.
	Products   string `gorm:"type:text" json:"products"`
	Categories string `gorm:"type:text" json:"categories"`

	Certifications datatypes.JSON `json:"certifications"`
	// CertificationIndex is derived from Certifications as "|gmp|fssai|" so
	// certification filters stay portable across drivers.
	CertificationIndex string `gorm:"type:text" json:"-"`

	IsExporter    bool   `gorm:"not null;default:false;index" json:"is_exporter"`
	ExportMarkets string `json:"export_markets,omitempty"`

	Address string `gorm:"type:text" json:"address,omitempty"`
	City    string `gorm:"size:120;index" json:"city"`
	State   string `gorm:"size:120;index" json:"state"`
	Country string `gorm:"size:80" json:"country"`

	Website string `json:"website,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`

	Verified        bool    `gorm:"not null;default:false;index" json:"verified"`
	YearEstablished int     `json:"year_established,omitempty"`
	OwnerUserID     *string `gorm:"size:64;index" json:"owner_user_id,omitempty"`
}

// CertificationList decodes the certifications column.
func (c *Company) CertificationList() []string {
	if len(c.Certifications) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(c.Certifications, &out); err != nil {
		return nil
	}
	return out
}

// SetCertifications stores certs trimmed and de-duplicated, case-insensitively.
func (c *Company) SetCertifications(certs []string) {
	seen := make(map[string]struct{}, len(certs))
	cleaned := make([]string, 0, len(certs))
	for _, cert := range certs {
		cert = strings.TrimSpace(cert)
		if cert == "" {
			continue
		}
		key := strings.ToLower(cert)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, cert)
	}
	raw, _ := json.Marshal(cleaned)
	c.Certifications = datatypes.JSON(raw)
}

// BeforeSave keeps the derived certification index in sync.
func (c *Company) BeforeSave(tx *gorm.DB) error {
	certs := c.CertificationList()
	if len(certs) == 0 {
		c.CertificationIndex = ""
		return nil
	}
	parts := make([]string, len(certs))
	for i, cert := range certs {
		parts[i] = strings.ToLower(strings.TrimSpace(cert))
	}
	c.CertificationIndex = "|" + strings.Join(parts, "|") + "|"
	return nil
}
