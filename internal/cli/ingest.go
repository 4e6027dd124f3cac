package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JustJay7/docket-pipeline/internal/config"
	"github.com/JustJay7/docket-pipeline/internal/database"
	"github.com/JustJay7/docket-pipeline/internal/ingest"
	"github.com/JustJay7/docket-pipeline/pkg/logger"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	var sourceName string

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a JSON docket file into the store",
		Long: `Ingest reads a JSON array of raw docket records, normalizes and loads
them, and prints a run summary. Per-record failures are quarantined and
counted; the command exits non-zero only on run-level failures.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer log.Sync()

			db, err := database.Initialize(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			pipeline := ingest.NewPipeline(db, cfg, log)
			summary, err := pipeline.Run(args[0], sourceName)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode summary: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceName, "source-name", "", "source name recorded for the run (defaults to the file name)")
	return cmd
}
