package main

import (
	"fmt"
	"strconv"

	"cardmatch/internal/cli"
	"cardmatch/internal/model"

	"github.com/spf13/cobra"
)

func conflictsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Inspect and resolve uniqueness conflicts",
	}

	cmd.AddCommand(conflictsListCmd())
	cmd.AddCommand(conflictsResolveCmd())
	return cmd
}

func conflictsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded conflict events",
		RunE:  runConflictsList,
	}
	cmd.Flags().Bool("all", false, "include resolved and ignored conflicts")
	return cmd
}

func runConflictsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	engine, cleanup, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	resolution := model.ResolutionUnresolved
	if all, _ := cmd.Flags().GetBool("all"); all {
		resolution = ""
	}

	conflicts, err := engine.ListConflicts(ctx, resolution)
	if err != nil {
		return fmt.Errorf("failed to list conflicts: %w", err)
	}

	if len(conflicts) == 0 {
		fmt.Println(cli.FormatSuccess("No conflicts."))
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("%d conflict(s)", len(conflicts))))
	for _, c := range conflicts {
		line := fmt.Sprintf("#%d  %s  sell %s / buy %s  score %.3f  [%s]",
			c.ID, c.Type, c.SellID, c.BuyID, c.AttemptedScore, c.Resolution)
		switch c.Resolution {
		case model.ResolutionUnresolved:
			fmt.Println(cli.StyleWarning(line))
		default:
			fmt.Println(cli.SubtleStyle.Render(line))
		}
		if c.Message != "" {
			fmt.Println("    " + cli.SubtleStyle.Render(c.Message))
		}
	}
	return nil
}

func conflictsResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <conflict-id>",
		Short: "Resolve a conflict event",
		Long: `Resolve marks a conflict event handled. With --replace the previously
accepted decision is demoted to replaced, freeing both items for a new
pairing; without it the conflict is simply closed with the given action.`,
		Args: cobra.ExactArgs(1),
		RunE: runConflictsResolve,
	}
	cmd.Flags().Bool("replace", false, "demote the existing accepted decision to replaced")
	cmd.Flags().String("action", "reviewed", "short action label recorded on the event")
	return cmd
}

func runConflictsResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid conflict id %q", args[0])
	}

	replace, _ := cmd.Flags().GetBool("replace")
	action, _ := cmd.Flags().GetString("action")

	engine, cleanup, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.ResolveConflict(ctx, id, action, replace); err != nil {
		return fmt.Errorf("failed to resolve conflict #%d: %w", id, err)
	}

	msg := fmt.Sprintf("Conflict #%d resolved", id)
	if replace {
		msg += " and the prior decision replaced"
	}
	fmt.Println(cli.FormatSuccess(msg))
	return nil
}
