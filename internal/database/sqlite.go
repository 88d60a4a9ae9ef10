package database

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MemoryDSN returns a DSN for a named shared in-memory database. Distinct
// names give isolated databases within one process.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
}

func openSQLite(cfg Config) (*gorm.DB, error) {
	dsn, err := sqliteDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(sqlite.Open(dsn), gormConfig())
}

// sqliteDSN enables foreign keys on every pooled connection. File databases
// also run in WAL mode with a busy timeout, so search logging and the
// maintenance jobs can write while searches read. Options override pragmas.
func sqliteDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	path := strings.TrimSpace(cfg.Path)
	if path == "" || strings.EqualFold(path, ":memory:") {
		return "file::memory:?cache=shared&_foreign_keys=1", nil
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	params := url.Values{
		"_foreign_keys": {"1"},
		"_journal_mode": {"WAL"},
		"_busy_timeout": {"5000"},
	}
	for key, value := range cfg.Options {
		params.Set(key, value)
	}
	return "file:" + filepath.ToSlash(path) + "?" + params.Encode(), nil
}
