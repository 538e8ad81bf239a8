package main

import (
	"errors"
	"fmt"

	"cardmatch/internal/cli"
	"cardmatch/internal/common"

	"github.com/spf13/cobra"
)

func decideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decide <sell-id> <buy-id>",
		Short: "Accept or reject a single sell/buy pairing",
		Long: `Decide records a manual verdict for one pair. Accepting fails with a
conflict when either side already belongs to another accepted pairing;
rejecting also excludes the pair from future match runs.`,
		Args: cobra.ExactArgs(2),
		RunE: runDecide,
	}

	cmd.Flags().Bool("accept", false, "accept the pairing")
	cmd.Flags().Bool("reject", false, "reject the pairing")
	cmd.Flags().String("notes", "", "free-form notes to attach to the decision")
	cmd.MarkFlagsOneRequired("accept", "reject")
	cmd.MarkFlagsMutuallyExclusive("accept", "reject")

	return cmd
}

func runDecide(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sellID, buyID := args[0], args[1]

	accept, _ := cmd.Flags().GetBool("accept")
	notes, _ := cmd.Flags().GetString("notes")

	engine, cleanup, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	decision, err := engine.Decide(ctx, sellID, buyID, accept, notes)
	if err != nil {
		var conflict *common.ConflictError
		if errors.As(err, &conflict) {
			fmt.Println(cli.FormatError(fmt.Sprintf(
				"Refused: %s. The existing pairing is sell %s / buy %s (decision #%d).",
				conflict.Type, conflict.ExistingSellID, conflict.ExistingBuyID, conflict.ExistingID)))
			fmt.Println(cli.FormatInfo("A conflict event was recorded. See 'cardmatch conflicts list'."))
			return fmt.Errorf("pairing conflicts with an existing accepted match")
		}
		return err
	}

	verb := "Rejected"
	if accept {
		verb = "Accepted"
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s %s ↔ %s (status %s)", verb, sellID, buyID, decision.Status)))
	return nil
}
