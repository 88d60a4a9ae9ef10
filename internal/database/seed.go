package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/models"
)

type seedFile struct {
	Companies []seedCompany `yaml:"companies"`
}

type seedCompany struct {
	Name            string   `yaml:"name"`
	Slug            string   `yaml:"slug"`
	Description     string   `yaml:"description"`
	EntityType      string   `yaml:"entity_type"`
	Products        []string `yaml:"products"`
	Categories      []string `yaml:"categories"`
	Certifications  []string `yaml:"certifications"`
	IsExporter      bool     `yaml:"is_exporter"`
	ExportMarkets   []string `yaml:"export_markets"`
	Address         string   `yaml:"address"`
	City            string   `yaml:"city"`
	State           string   `yaml:"state"`
	Country         string   `yaml:"country"`
	Website         string   `yaml:"website"`
	Email           string   `yaml:"email"`
	Phone           string   `yaml:"phone"`
	Verified        bool     `yaml:"verified"`
	YearEstablished int      `yaml:"year_established"`
}

// LoadSeedCompanies decodes a YAML company list.
func LoadSeedCompanies(r io.Reader) ([]models.Company, error) {
	var file seedFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("seed: decode companies: %w", err)
	}

	companies := make([]models.Company, 0, len(file.Companies))
	for i, entry := range file.Companies {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("seed: company #%d has no name", i+1)
		}
		slug := strings.TrimSpace(entry.Slug)
		if slug == "" {
			slug = models.Slugify(name)
		}
		country := strings.TrimSpace(entry.Country)
		if country == "" {
			country = "India"
		}

		company := models.Company{
			Name:            name,
			Slug:            slug,
			Description:     strings.TrimSpace(entry.Description),
			EntityType:      strings.ToLower(strings.TrimSpace(entry.EntityType)),
			Products:        strings.Join(entry.Products, ", "),
			Categories:      strings.Join(entry.Categories, ", "),
			IsExporter:      entry.IsExporter,
			ExportMarkets:   strings.Join(entry.ExportMarkets, ", "),
			Address:         entry.Address,
			City:            entry.City,
			State:           entry.State,
			Country:         country,
			Website:         entry.Website,
			Email:           entry.Email,
			Phone:           entry.Phone,
			Verified:        entry.Verified,
			YearEstablished: entry.YearEstablished,
		}
		company.SetCertifications(entry.Certifications)
		companies = append(companies, company)
	}
	return companies, nil
}

// SeedCompanies inserts companies whose slug is not present yet and returns
// how many rows were created.
func SeedCompanies(ctx context.Context, db *gorm.DB, companies []models.Company) (int, error) {
	if db == nil {
		return 0, errors.New("seed: db is nil")
	}

	created := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range companies {
			company := companies[i]

			var existing int64
			if err := tx.Model(&models.Company{}).Where("slug = ?", company.Slug).Count(&existing).Error; err != nil {
				return fmt.Errorf("seed: lookup %q: %w", company.Slug, err)
			}
			if existing > 0 {
				continue
			}
			if err := tx.Create(&company).Error; err != nil {
				return fmt.Errorf("seed: company %q: %w", company.Slug, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
