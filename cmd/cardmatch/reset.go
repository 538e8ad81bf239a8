package main

import (
	"fmt"

	"cardmatch/internal/cli"

	"github.com/spf13/cobra"
)

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete persisted reconciliation state",
		Long: `Reset deletes decisions and sessions. This is destructive; decided
pairings cannot be recovered afterward.

By default only pending decisions are cleared so the next run proposes
them afresh. With --all, every decision, non-match, conflict event, and
session is deleted.`,
		RunE: runReset,
	}

	cmd.Flags().BoolP("force", "f", false, "skip confirmation prompt")
	cmd.Flags().Bool("all", false, "delete everything, not just pending decisions")
	return cmd
}

func runReset(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	force, _ := cmd.Flags().GetBool("force")
	all, _ := cmd.Flags().GetBool("all")

	if !force {
		scope := "all pending decisions"
		if all {
			scope = "ALL decisions, non-matches, conflicts, and sessions"
		}
		fmt.Printf("This will delete %s.\n\nAre you sure you want to continue? [y/N]: ", scope)

		var response string
		if _, err := fmt.Scanln(&response); err != nil || (response != "y" && response != "Y") {
			fmt.Println("Reset canceled.")
			return nil
		}
	}

	engine, cleanup, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if !all {
		cleared, err := engine.ClearPending(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear pending decisions: %w", err)
		}
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Cleared %d pending decision(s)", cleared)))
		return nil
	}

	result, err := engine.ClearAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Deleted %d decision(s), %d non-match(es), %d conflict(s), %d session(s)",
		result.Decisions, result.NonMatches, result.Conflicts, result.Sessions)))
	return nil
}
