package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/pdf-annotator/internal/schema"
	"github.com/JaimeStill/pdf-annotator/pkg/database"
	"github.com/JaimeStill/pdf-annotator/pkg/logging"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger := logging.New(&cfg.Logging)
			if err := database.Migrate(&cfg.Database, schema.Migrations, logger); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}
