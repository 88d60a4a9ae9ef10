// Command directoryctl is the operator CLI for the directory service: it
// explains search queries, seeds companies and mints access tokens.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/nutralink/directory/internal/app"
	"github.com/nutralink/directory/internal/database"
)

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "directoryctl",
		Short:         "Operate the nutraceutical company directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(opts.envFile)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration directory or file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional dotenv file loaded before the configuration")

	root.AddCommand(newParseCmd(opts))
	root.AddCommand(newSeedCmd(opts))
	root.AddCommand(newTokenCmd(opts))
	root.AddCommand(newMigrateCmd(opts))

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

func (o *rootOptions) loadConfig() (*app.Config, error) {
	path := strings.TrimSpace(o.configPath)
	if path == "" {
		return app.LoadConfig()
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
	if !info.IsDir() {
		path = filepath.Dir(path)
	}
	return app.LoadConfig(path)
}

// openDatabase opens and migrates the configured database. The returned
// closer releases the connection pool.
func openDatabase(cfg *app.Config) (*gorm.DB, func(), error) {
	db, err := database.Open(cfg.Database.ConnectionConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	closer := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := database.AutoMigrate(db); err != nil {
		closer()
		return nil, nil, fmt.Errorf("auto-migrate database: %w", err)
	}
	return db, closer, nil
}
