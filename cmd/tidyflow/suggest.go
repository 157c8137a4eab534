package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nvander/tidyflow/internal/cli"
	"github.com/nvander/tidyflow/internal/common"
)

func suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Show move suggestions for the last analysis",
		Long: `Evaluate every enabled rule against the last completed analysis and show
the resulting move suggestions. Nothing is moved; use 'tidyflow apply' to
dispatch a batch.

Examples:
  tidyflow suggest
  tidyflow suggest --files`,
		RunE: runSuggest,
	}

	cmd.Flags().Bool("files", false, "List every matching file under each suggestion")
	_ = viper.BindPFlag("suggest.files", cmd.Flags().Lookup("files"))

	return cmd
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	showFiles := viper.GetBool("suggest.files")

	session, cleanup, err := initSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	run, suggestions, err := session.Suggestions(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNoAnalysis) {
			return common.NewUserError("no analysis found; run 'tidyflow analyze <path>' first", nil)
		}
		return err
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Suggestions for %s", run.Path)))                    //nolint:forbidigo // User-facing output
	fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("%d files analyzed %s",                       //nolint:forbidigo // User-facing output
		run.TotalFiles, run.CompletedAt.Format("2006-01-02 15:04"))))
	fmt.Println() //nolint:forbidigo // User-facing output

	if len(suggestions) == 0 {
		fmt.Println(cli.InfoStyle.Render("No rules matched the analyzed files.")) //nolint:forbidigo // User-facing output
		return nil
	}

	for _, suggestion := range suggestions {
		fmt.Printf("%s %s → %s\n", //nolint:forbidigo // User-facing output
			cli.SubtleStyle.Render(fmt.Sprintf("[rule %d]", suggestion.RuleID)),
			suggestion.Title,
			cli.InfoStyle.Render(suggestion.TargetFolder))
		fmt.Printf("  %s\n", suggestion.Description) //nolint:forbidigo // User-facing output

		if showFiles {
			for _, file := range suggestion.MatchingFiles {
				fmt.Printf("    %s %s\n", file.Path, //nolint:forbidigo // User-facing output
					cli.SubtleStyle.Render(fmt.Sprintf("(%s)", formatBytes(file.SizeBytes))))
			}
		}
	}

	fmt.Println()                                                                                          //nolint:forbidigo // User-facing output
	fmt.Println(cli.SubtleStyle.Render("Use 'tidyflow apply --rule <id>' to dispatch a suggestion."))       //nolint:forbidigo // User-facing output

	return nil
}
