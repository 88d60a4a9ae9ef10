package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			_, closeDB, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			closeDB()

			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", driverName(cfg.Database.Driver))
			return nil
		},
	}
}

func driverName(driver string) string {
	if driver == "" {
		return "sqlite"
	}
	return driver
}
