package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Exec("SELECT 1").Error)
}

func TestSQLiteDSN(t *testing.T) {
	dsn, err := sqliteDSN(Config{})
	require.NoError(t, err)
	require.Equal(t, "file::memory:?cache=shared&_foreign_keys=1", dsn)

	path := filepath.Join(t.TempDir(), "data", "directory.sqlite")
	dsn, err = sqliteDSN(Config{Path: path, Options: map[string]string{"_busy_timeout": "100"}})
	require.NoError(t, err)
	require.Equal(t, "file:"+filepath.ToSlash(path)+"?_busy_timeout=100&_foreign_keys=1&_journal_mode=WAL", dsn)
	require.DirExists(t, filepath.Dir(path))
}

func TestOpenSQLiteFileEnforcesForeignKeys(t *testing.T) {
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "directory.sqlite")})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	require.Equal(t, 1, enabled)

	var mode string
	require.NoError(t, db.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	require.Equal(t, "wal", mode)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestAutoMigrateCreatesDirectoryTables(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	migrator := db.Migrator()
	for _, table := range []any{
		&models.Company{},
		&models.SavedCompany{},
		&models.EmailTemplate{},
		&models.WorkspaceEmail{},
		&models.SearchLog{},
		&models.AuditLog{},
		&models.CacheEntry{},
		&models.SystemSetting{},
	} {
		require.True(t, migrator.HasTable(table), "expected table for %T to exist", table)
	}
}

func TestAutoMigrateAndSeedDemoCompanies(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrateAndSeed(db, true))

	var count int64
	require.NoError(t, db.Model(&models.Company{}).Count(&count).Error)
	require.Equal(t, int64(8), count)

	var company models.Company
	require.NoError(t, db.Where("slug = ?", "vedic-roots-pvt-ltd").First(&company).Error)
	require.Equal(t, "India", company.Country)
	require.Equal(t, "|gmp|fssai|iso 22000|", company.CertificationIndex)
	require.True(t, company.IsExporter)

	// Seeding twice keeps slugs unique.
	require.NoError(t, AutoMigrateAndSeed(db, true))
	require.NoError(t, db.Model(&models.Company{}).Count(&count).Error)
	require.Equal(t, int64(8), count)
}

func TestAutoMigrateWithoutSeed(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrateAndSeed(db, false))

	var count int64
	require.NoError(t, db.Model(&models.Company{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestLoadSeedCompanies(t *testing.T) {
	companies, err := LoadSeedCompanies(strings.NewReader(`
companies:
  - name: Amrit & Sons
    entity_type: Distributor
    products: [neem oil, amla juice]
    certifications: [GMP, gmp]
`))
	require.NoError(t, err)
	require.Len(t, companies, 1)
	require.Equal(t, "amrit-and-sons", companies[0].Slug)
	require.Equal(t, "distributor", companies[0].EntityType)
	require.Equal(t, "neem oil, amla juice", companies[0].Products)
	require.Equal(t, []string{"GMP"}, companies[0].CertificationList())

	_, err = LoadSeedCompanies(strings.NewReader("companies:\n  - slug: nameless\n"))
	require.Error(t, err)

	_, err = LoadSeedCompanies(strings.NewReader("companies:\n  - name: X\n    founded: 1999\n"))
	require.Error(t, err)

	empty, err := LoadSeedCompanies(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSeedCompaniesCountsCreatedRows(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	companies := []models.Company{{Name: "A", Slug: "a"}, {Name: "B", Slug: "b"}}
	created, err := SeedCompanies(context.Background(), db, companies)
	require.NoError(t, err)
	require.Equal(t, 2, created)

	created, err = SeedCompanies(context.Background(), db, append(companies, models.Company{Name: "C", Slug: "c"}))
	require.NoError(t, err)
	require.Equal(t, 1, created)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite", DSN: MemoryDSN("db-" + uuid.NewString())})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
