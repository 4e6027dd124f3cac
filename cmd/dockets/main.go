package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JustJay7/docket-pipeline/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dockets",
		Short: "Legal docket ingestion pipeline",
		Long: `dockets ingests raw legal docket records into a normalized relational
store with full name-variation provenance, per-record quarantine of bad data,
and audited ingestion runs.`,
	}

	rootCmd.AddCommand(cli.IngestCmd())
	rootCmd.AddCommand(cli.ReportCmd())
	rootCmd.AddCommand(cli.MigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
