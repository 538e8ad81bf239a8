package main

import (
	"fmt"
	"sort"

	"cardmatch/internal/cli"
	"cardmatch/internal/model"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the decision ledger",
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	engine, cleanup, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := engine.Statistics(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}

	fmt.Println(cli.FormatTitle("Decision ledger"))
	if stats.Total == 0 {
		fmt.Println(cli.FormatInfo("No decisions recorded yet. Run 'cardmatch match' first."))
		return nil
	}

	statuses := make([]string, 0, len(stats.ByStatus))
	for status := range stats.ByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)

	for _, status := range statuses {
		fmt.Printf("  %-17s %d\n", status, stats.ByStatus[model.DecisionStatus(status)])
	}
	fmt.Printf("  %-17s %d\n", "total", stats.Total)
	fmt.Printf("  %-17s %d\n", "updated today", stats.Recent)
	fmt.Printf("  similarity: min %.3f / avg %.3f / max %.3f\n",
		stats.MinSimilarity, stats.AvgSimilarity, stats.MaxSimilarity)
	return nil
}
