package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvander/tidyflow/internal/cli"
	"github.com/nvander/tidyflow/internal/common"
)

func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Dispatch suggestions as one move batch",
		Long: `Flatten the selected suggestions into a single move batch and dispatch
it to the backend. The backend performs the physical moves; tidyflow
reports how many files moved and which ones failed.

The batch is sent once. If part of it fails, fix the cause and re-run.

Examples:
  tidyflow apply              # apply every current suggestion
  tidyflow apply --rule 3     # apply only the suggestion for rule 3
  tidyflow apply --rule 3 --rule 7`,
		RunE: runApply,
	}

	cmd.Flags().Int64Slice("rule", nil, "Rule ID to apply (repeatable; default all)")

	return cmd
}

func runApply(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	ruleIDs, _ := cmd.Flags().GetInt64Slice("rule")

	session, cleanup, err := initSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := session.Apply(ctx, ruleIDs)
	if err != nil {
		if errors.Is(err, common.ErrNoAnalysis) {
			return common.NewUserError("no analysis found; run 'tidyflow analyze <path>' first", nil)
		}
		return err
	}

	if result.MovedCount == 0 && len(result.Errors) == 0 {
		fmt.Println(cli.InfoStyle.Render("Nothing to move.")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Moved %d files", result.MovedCount))) //nolint:forbidigo // User-facing output

	for _, moveErr := range result.Errors {
		fmt.Println(cli.FormatError(fmt.Sprintf("%s: %s", moveErr.Path, moveErr.Reason))) //nolint:forbidigo // User-facing output
	}
	if result.Failed() {
		return common.NewUserError(fmt.Sprintf("%d files could not be moved", len(result.Errors)), nil)
	}

	return nil
}
