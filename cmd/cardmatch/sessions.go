package main

import (
	"fmt"

	"cardmatch/internal/cli"

	"github.com/spf13/cobra"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent match run audit records",
		RunE:  runSessions,
	}
	cmd.Flags().Int("limit", 20, "maximum sessions to show")
	return cmd
}

func runSessions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	engine, cleanup, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	sessions, err := engine.Sessions(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println(cli.FormatInfo("No match runs recorded yet."))
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Last %d match run(s)", len(sessions))))
	for _, s := range sessions {
		fmt.Printf("  #%-4d %s  %d sell × %d buy → %d candidates  thr %.2f auto %.2f  %.2fs\n",
			s.ID, s.StartedAt.Format("2006-01-02 15:04"),
			s.SellItems, s.BuyItems, s.MatchesFound,
			s.SimilarityThreshold, s.AutoAcceptThreshold, s.ProcessingSeconds)
	}
	return nil
}
