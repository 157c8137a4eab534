package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nvander/tidyflow/internal/cli"
	"github.com/nvander/tidyflow/internal/common"
	"github.com/nvander/tidyflow/internal/model"
	"github.com/nvander/tidyflow/internal/stream"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <path>",
		Short: "Analyze a directory through the backend",
		Long: `Ask the backend to scan and categorize every file under a directory,
following its progress live. The completed file set is cached locally so
'tidyflow suggest' works without re-scanning.

Examples:
  tidyflow analyze ~/Downloads
  tidyflow analyze --no-recursive /srv/incoming`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().Bool("no-recursive", false, "Do not scan subdirectories")
	_ = viper.BindPFlag("analyze.no_recursive", cmd.Flags().Lookup("no-recursive"))

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", args[0], err)
	}
	recursive := !viper.GetBool("analyze.no_recursive")

	session, cleanup, err := initSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	slog.Info("Starting analysis", "path", path, "recursive", recursive)

	var bar *progressbar.ProgressBar
	onEvent := func(event model.AnalysisEvent) {
		switch event.Kind {
		case model.EventStarted:
			bar = progressbar.NewOptions(event.Total,
				progressbar.OptionSetDescription("Analyzing"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		case model.EventProgress:
			if bar != nil {
				_ = bar.Set(event.Processed)
			}
		case model.EventCompleted:
			if bar != nil {
				_ = bar.Finish()
			}
		}
	}

	result, err := session.RunAnalysis(ctx, path, recursive, onEvent)
	if err != nil {
		var failed *stream.FailedError
		switch {
		case errors.As(err, &failed):
			return common.NewUserError("analysis failed", errors.New(failed.Reason))
		case errors.Is(err, common.ErrStreamClosed):
			return common.NewUserError("analysis failed", err)
		}
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Analyzed %d files (%s) under %s",
		result.Run.TotalFiles, formatBytes(result.Run.TotalBytes), path))) //nolint:forbidigo // User-facing output
	fmt.Println(cli.SubtleStyle.Render("Run 'tidyflow suggest' to see move suggestions.")) //nolint:forbidigo // User-facing output

	return nil
}
