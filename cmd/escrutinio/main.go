package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coolbeans/escrutinio/pkg/audit"
	"github.com/coolbeans/escrutinio/pkg/dataset"
	"github.com/coolbeans/escrutinio/pkg/report"
)

var version = "0.1.0"

var (
	verbose bool
	logger  *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "escrutinio",
		Short: "Electoral tally cross-validator",
		Long: `Escrutinio cross-validates the official results report of a
presidential election against the electoral authority's consolidated
CSV export.

It extracts candidate-level, sex-disaggregated and summary vote figures
from the report text, aggregates the export for the same round, and runs
a five-phase fail-fast reconciliation that halts at the first
irreconcilable discrepancy with a human-readable audit trail.`,
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(layoutsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Cross-validate a results report against the consolidated export",
		Long: `Audit extracts vote entities from the report text, aggregates the
consolidated CSV export for the round detected in the report, and runs the
five reconciliation phases.

The report is plain text as produced by a PDF text extractor (pdftotext),
with form feeds separating pages.

Example:
  escrutinio audit --report acta.txt --dataset consolidado.csv
  escrutinio audit --report acta.txt --dataset consolidado.csv --layouts ./layouts --layout provincial`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reportPath, _ := cmd.Flags().GetString("report")
			datasetPath, _ := cmd.Flags().GetString("dataset")
			layoutDir, _ := cmd.Flags().GetString("layouts")
			layoutName, _ := cmd.Flags().GetString("layout")

			if reportPath == "" {
				return fmt.Errorf("--report flag is required")
			}
			if datasetPath == "" {
				return fmt.Errorf("--dataset flag is required")
			}

			registry := report.NewRegistry()
			if layoutDir != "" {
				if err := registry.LoadDirectory(layoutDir); err != nil {
					return fmt.Errorf("loading layouts: %w", err)
				}
			}
			layout, ok := registry.Get(layoutName)
			if !ok {
				return fmt.Errorf("unknown layout %q", layoutName)
			}

			logger.Debug("parsing report",
				zap.String("path", reportPath),
				zap.String("layout", layout.Name))
			parsed, err := report.Parse(&report.TextFileSource{Path: reportPath}, layout)
			if err != nil {
				return err
			}
			logger.Debug("report parsed",
				zap.String("round", parsed.Round.String()),
				zap.Int("entities", len(parsed.Entities)))

			table, err := (&dataset.CSVSource{Path: datasetPath}).Read()
			if err != nil {
				return err
			}
			aggregated, err := dataset.Aggregate(table, parsed.Round)
			if err != nil {
				return err
			}
			logger.Debug("export aggregated",
				zap.Int("entities", len(aggregated.Entities)),
				zap.Int("by_subdivision", len(aggregated.EntitiesBySubdivision)))

			result := audit.Compare(parsed, aggregated)
			renderTrace(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().String("report", "", "path to the report text (required)")
	cmd.Flags().String("dataset", "", "path to the consolidated CSV export (required)")
	cmd.Flags().String("layouts", "", "directory of additional YAML row layouts")
	cmd.Flags().String("layout", "default", "name of the row layout to use")
	return cmd
}

func layoutsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "List available report row layouts",
		Long: `Layouts lists the registered row layouts: the built-in default plus
any YAML layouts loaded from --layouts.

With --watch the layout directory is watched and changes are applied and
logged until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			layoutDir, _ := cmd.Flags().GetString("layouts")
			watch, _ := cmd.Flags().GetBool("watch")

			registry := report.NewRegistry()
			if layoutDir != "" {
				if err := registry.LoadDirectory(layoutDir); err != nil {
					return fmt.Errorf("loading layouts: %w", err)
				}
			}

			for _, layout := range registry.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", layout.Name)
				if layout.Description != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", layout.Description)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "    pattern: %s\n", layout.Pattern)
			}

			if !watch {
				return nil
			}
			if layoutDir == "" {
				return fmt.Errorf("--watch requires --layouts")
			}

			registry.SetOnChange(func(event string, layout *report.RowLayout) {
				if layout == nil {
					logger.Info("layout removed", zap.String("event", event))
					return
				}
				logger.Info("layout reloaded",
					zap.String("event", event),
					zap.String("name", layout.Name))
			})
			if err := registry.Watch(); err != nil {
				return err
			}
			defer registry.StopWatch()

			logger.Info("watching layout directory", zap.String("dir", layoutDir))
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			return nil
		},
	}

	cmd.Flags().String("layouts", "", "directory of YAML row layouts")
	cmd.Flags().Bool("watch", false, "watch the layout directory for changes")
	return cmd
}
