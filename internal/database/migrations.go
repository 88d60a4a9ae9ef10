package database

import (
	"bytes"
	"context"
	_ "embed"

	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/models"
)

//go:embed seed/demo_companies.yaml
var demoCompanies []byte

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.SavedCompany{},
		&models.EmailTemplate{},
		&models.WorkspaceEmail{},
		&models.SearchLog{},
		&models.AuditLog{},
		&models.CacheEntry{},
		&models.SystemSetting{},
	)
}

// DemoCompanies decodes the embedded demo company list.
func DemoCompanies() ([]models.Company, error) {
	return LoadSeedCompanies(bytes.NewReader(demoCompanies))
}

// SeedData inserts the embedded demo companies. Existing slugs are left alone.
func SeedData(db *gorm.DB) error {
	companies, err := DemoCompanies()
	if err != nil {
		return err
	}
	_, err = SeedCompanies(context.Background(), db, companies)
	return err
}
