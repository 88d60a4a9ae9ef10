package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nutralink/directory/internal/database"
	"github.com/nutralink/directory/internal/models"
)

func newSeedCmd(root *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert companies from a YAML file",
		Long: `Insert companies into the configured database. Without --file the
built-in demo companies are used. Companies whose slug already exists are
skipped, so the command can be re-run safely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			companies, err := readSeedCompanies(file)
			if err != nil {
				return err
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			db, closeDB, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			created, err := database.SeedCompanies(cmd.Context(), db, companies)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d of %d companies\n", created, len(companies))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with a top-level companies list")
	return cmd
}

func readSeedCompanies(path string) ([]models.Company, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return database.DemoCompanies()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return database.LoadSeedCompanies(f)
}
