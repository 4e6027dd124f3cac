package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/JustJay7/docket-pipeline/internal/config"
	"github.com/JustJay7/docket-pipeline/internal/database"
	"github.com/JustJay7/docket-pipeline/internal/report"
)

// ReportCmd returns the report command
func ReportCmd() *cobra.Command {
	var runID uint
	var since string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a data quality report for the docket store",
		Long: `Report summarizes ingest volume, error breakdown, case completeness,
date sanity, entity normalization and parties coverage. It exits non-zero
when quality thresholds are exceeded, for use in scheduled checks.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			opts := report.Options{RunID: runID}
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid --since date %q, use YYYY-MM-DD", since)
				}
				opts.Since = t
			}

			db, err := database.Initialize(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			r, err := report.Generate(db, opts)
			if err != nil {
				return err
			}

			r.Render(cmd.OutOrStdout())

			if r.ExitCode() != 0 {
				return fmt.Errorf("quality thresholds exceeded")
			}
			return nil
		},
	}

	cmd.Flags().UintVar(&runID, "run-id", 0, "restrict to a specific ingest run")
	cmd.Flags().StringVar(&since, "since", "", "scope to cases filed on/after this date (YYYY-MM-DD)")
	return cmd
}
