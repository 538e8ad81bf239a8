package main

import (
	"fmt"

	"cardmatch/internal/cli"
	"cardmatch/internal/config"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// openEngine migrates as part of opening
			_, cleanup, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Println(cli.FormatSuccess("Database schema is up to date at " + config.DatabasePath()))
			return nil
		},
	}
}
