package main

import (
	"errors"
	"fmt"
	"sort"

	"cardmatch/internal/cli"
	"cardmatch/internal/common"
	"cardmatch/internal/model"

	"github.com/spf13/cobra"
)

func nonmatchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nonmatches",
		Short: "Manage the permanent non-match exclusion set",
	}

	cmd.AddCommand(nonmatchesListCmd())
	cmd.AddCommand(nonmatchesAddCmd())
	cmd.AddCommand(nonmatchesRemoveCmd())
	return cmd
}

func nonmatchesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List excluded pairs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			engine, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			nonMatches, err := engine.ListNonMatches(ctx)
			if err != nil {
				return fmt.Errorf("failed to list non-matches: %w", err)
			}

			if len(nonMatches) == 0 {
				fmt.Println(cli.FormatInfo("No excluded pairs."))
				return nil
			}

			entries := make([]model.NonMatch, 0, len(nonMatches))
			for _, nm := range nonMatches {
				entries = append(entries, nm)
			}
			sort.Slice(entries, func(i, j int) bool {
				if entries[i].SellID != entries[j].SellID {
					return entries[i].SellID < entries[j].SellID
				}
				return entries[i].BuyID < entries[j].BuyID
			})

			fmt.Println(cli.FormatTitle(fmt.Sprintf("%d excluded pair(s)", len(entries))))
			for _, nm := range entries {
				line := fmt.Sprintf("sell %s / buy %s  (%s)", nm.SellID, nm.BuyID, nm.RejectedBy)
				if nm.Reason != "" {
					line += "  " + nm.Reason
				}
				fmt.Println("  " + line)
			}
			return nil
		},
	}
}

func nonmatchesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <sell-id> <buy-id>",
		Short: "Exclude a pair from all future matching",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reason, _ := cmd.Flags().GetString("reason")

			engine, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := engine.AddNonMatch(ctx, args[0], args[1], reason); err != nil {
				return fmt.Errorf("failed to add non-match: %w", err)
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Excluded sell %s / buy %s", args[0], args[1])))
			return nil
		},
	}
	cmd.Flags().String("reason", "", "why this pair must never match")
	return cmd
}

func nonmatchesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <sell-id> <buy-id>",
		Short: "Lift an exclusion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			engine, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := engine.RemoveNonMatch(ctx, args[0], args[1]); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return fmt.Errorf("no exclusion recorded for sell %s / buy %s", args[0], args[1])
				}
				return fmt.Errorf("failed to remove non-match: %w", err)
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exclusion lifted for sell %s / buy %s", args[0], args[1])))
			return nil
		},
	}
}
