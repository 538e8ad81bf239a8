package main

import (
	"context"
	"fmt"
	"os"

	"cardmatch/internal/cli"
	"cardmatch/internal/config"
	"cardmatch/internal/export"
	"cardmatch/internal/ingest"
	"cardmatch/internal/model"
	"cardmatch/internal/reconcile"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a sell inventory against a buylist",
		Long: `Match loads both inventories, scores every sell item against the
buylist, auto-accepts unambiguous pairings, and records everything else
as pending. Previously accepted sell items are skipped unless
--no-skip-decided is given.`,
		RunE: runMatch,
	}

	cmd.Flags().String("sell", "", "sell inventory file (.csv or .xlsx)")
	cmd.Flags().String("buy", "", "buylist file (JSON, optionally JSONP-wrapped)")
	cmd.Flags().Bool("review", false, "interactively review pending matches afterward")
	cmd.Flags().String("out", "", "write the full candidate report to an .xlsx file")
	cmd.Flags().Float64("similarity-threshold", 0, "minimum similarity for a candidate to be reported")
	cmd.Flags().Float64("auto-accept", -1, "similarity at which the best candidate is accepted without review (0 disables)")
	cmd.Flags().Int("max-matches", 0, "maximum candidates kept per sell item")
	cmd.Flags().Bool("no-skip-decided", false, "re-match sell items that already have an accepted pairing")
	_ = cmd.MarkFlagRequired("sell")
	_ = cmd.MarkFlagRequired("buy")

	_ = viper.BindPFlag("match.similarity_threshold", cmd.Flags().Lookup("similarity-threshold"))
	_ = viper.BindPFlag("match.max_matches", cmd.Flags().Lookup("max-matches"))

	return cmd
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sellPath, _ := cmd.Flags().GetString("sell")
	buyPath, _ := cmd.Flags().GetString("buy")

	sell, report, err := ingest.LoadSellInventory(sellPath)
	if err != nil {
		return fmt.Errorf("failed to load sell inventory: %w", err)
	}
	fmt.Println(cli.FormatInfo(fmt.Sprintf("Loaded %d sell items (%d rows, %d without id, %d non-Magic)",
		report.Loaded, report.TotalRows, report.SkippedNoID, report.SkippedNonMagic)))

	buy, err := ingest.LoadBuyList(buyPath)
	if err != nil {
		return fmt.Errorf("failed to load buylist: %w", err)
	}
	fmt.Println(cli.FormatInfo(fmt.Sprintf("Loaded %d buylist entries", len(buy))))

	opts := config.LoadMatchOptions()
	if v, _ := cmd.Flags().GetFloat64("auto-accept"); v >= 0 {
		opts.AutoAcceptThreshold = v
	}
	if noSkip, _ := cmd.Flags().GetBool("no-skip-decided"); noSkip {
		opts.SkipDecided = false
	}

	engine, cleanup, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := engine.FindMatches(ctx, sell, buy, opts)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	printRunSummary(result)

	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		if err := export.MatchesToXLSX(result.Matches, outPath); err != nil {
			return fmt.Errorf("failed to write candidate report: %w", err)
		}
		fmt.Println(cli.FormatSuccess("Candidate report written to " + outPath))
	}

	if review, _ := cmd.Flags().GetBool("review"); review {
		return runReview(ctx, engine, result)
	}

	if result.Stats.Pending > 0 {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("%d items need review. Run 'cardmatch match --review' or 'cardmatch decide'.", result.Stats.Pending)))
	}
	return nil
}

func runReview(ctx context.Context, engine *reconcile.Engine, result *reconcile.RunResult) error {
	pending := make([]model.MatchCandidate, 0, len(result.Matches))
	for _, m := range result.Matches {
		if m.Status == model.StatusPending {
			pending = append(pending, m)
		}
	}

	handler := cli.NewInterruptHandler(os.Stdout)
	ctx = handler.HandleInterrupts(ctx, true)

	reviewer := cli.NewReviewer(os.Stdin, os.Stdout)
	_, err := reviewer.Review(ctx, pending, func(ctx context.Context, sellID, buyID string, accept bool, notes string) error {
		_, err := engine.Decide(ctx, sellID, buyID, accept, notes)
		return err
	})
	if handler.WasInterrupted() {
		return nil
	}
	return err
}

func printRunSummary(result *reconcile.RunResult) {
	s := result.Stats
	fmt.Println()
	fmt.Println(cli.FormatTitle("Match run complete"))
	fmt.Printf("  Sell items:       %d (%d skipped as already matched)\n", s.TotalSellItems, s.SkippedDecided)
	fmt.Printf("  Buylist entries:  %d\n", s.TotalBuyItems)
	fmt.Printf("  Candidates found: %d across %d items (%.1f%% coverage)\n", s.MatchesFound, s.ItemsWithMatch, s.Coverage*100)
	fmt.Printf("  Auto-accepted:    %s\n", cli.StyleSuccess(fmt.Sprintf("%d", s.AutoAccepted)))
	if s.ConflictBlocked > 0 {
		fmt.Printf("  Conflict-blocked: %s\n", cli.StyleWarning(fmt.Sprintf("%d", s.ConflictBlocked)))
	}
	fmt.Printf("  Pending review:   %d\n", s.Pending)
	if s.ExcludedPairs > 0 {
		fmt.Printf("  Excluded pairs:   %d\n", s.ExcludedPairs)
	}
	if s.MatchesFound > 0 {
		fmt.Printf("  Similarity:       min %.3f / mean %.3f / max %.3f\n", s.MinScore, s.MeanScore, s.MaxScore)
	}
	fmt.Printf("  Vocabulary:       %d terms, %.2fs\n", s.VocabularySize, s.ProcessingSeconds)
	if result.SessionID > 0 {
		fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("  Session #%d recorded", result.SessionID)))
	}
	fmt.Println()
}
