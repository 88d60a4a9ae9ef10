package app

import (
	"strings"

	"github.com/nutralink/directory/internal/database"
)

// ConnectionConfig converts DatabaseConfig into database.Config.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	options := make(map[string]string, len(c.Options))
	for k, v := range c.Options {
		options[k] = v
	}

	return database.Config{
		Driver:          strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:            strings.TrimSpace(c.Path),
		DSN:             strings.TrimSpace(c.DSN),
		Host:            strings.TrimSpace(c.Host),
		Port:            c.Port,
		Name:            strings.TrimSpace(c.Name),
		User:            strings.TrimSpace(c.User),
		Password:        c.Password,
		Options:         options,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}
