package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cardmatch/internal/cli"
	"cardmatch/internal/export"
	"cardmatch/internal/model"

	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <output-file>",
		Short: "Export decisions to CSV or XLSX",
		Long: `Export writes the decision ledger to the given file. The format is
inferred from the extension (.csv or .xlsx). By default only accepted
and auto-accepted decisions are exported; use --status to change that.`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}
	cmd.Flags().StringSlice("status", []string{"accepted", "auto_accepted"}, "decision statuses to include (or 'all')")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	outputPath := args[0]

	statusNames, _ := cmd.Flags().GetStringSlice("status")
	var statuses []model.DecisionStatus
	if len(statusNames) != 1 || statusNames[0] != "all" {
		for _, name := range statusNames {
			status := model.DecisionStatus(name)
			if !status.Valid() {
				return fmt.Errorf("unknown status %q", name)
			}
			statuses = append(statuses, status)
		}
	}

	engine, cleanup, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	decisions, err := engine.ListDecisions(ctx, statuses)
	if err != nil {
		return fmt.Errorf("failed to load decisions: %w", err)
	}
	if len(decisions) == 0 {
		fmt.Println(cli.FormatInfo("Nothing to export."))
		return nil
	}

	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".xlsx":
		if err := export.DecisionsToXLSX(decisions, outputPath); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
	case ".csv":
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		if err := export.DecisionsToCSV(decisions, f); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output format %q (use .csv or .xlsx)", filepath.Ext(outputPath))
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d decision(s) to %s", len(decisions), outputPath)))
	return nil
}
