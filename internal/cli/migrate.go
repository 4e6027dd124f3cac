package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JustJay7/docket-pipeline/internal/config"
	"github.com/JustJay7/docket-pipeline/internal/database"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Create or update the database schema",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			db, err := database.Initialize(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Database migrated at %s\n", cfg.DatabasePath)
			return nil
		},
	}
}
