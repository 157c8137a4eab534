package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nvander/tidyflow/internal/backend"
	"github.com/nvander/tidyflow/internal/cli"
	"github.com/nvander/tidyflow/internal/common"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend health and the cached analysis",
		Long: `Probe the backend's readiness and summarize the last completed analysis
by suggested category.`,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	client, err := backend.NewClient(viper.GetString("backend.url"))
	if err != nil {
		return err
	}

	ready, detail, err := client.Health(ctx)
	switch {
	case err != nil:
		fmt.Println(cli.FormatError(fmt.Sprintf("backend: %v", err))) //nolint:forbidigo // User-facing output
	case ready:
		fmt.Println(cli.FormatSuccess("backend: " + detail)) //nolint:forbidigo // User-facing output
	default:
		fmt.Println(cli.FormatWarning("backend: " + detail)) //nolint:forbidigo // User-facing output
	}

	db, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	run, _, err := db.GetLatestAnalysis(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNoAnalysis) {
			fmt.Println(cli.InfoStyle.Render("No cached analysis.")) //nolint:forbidigo // User-facing output
			return nil
		}
		return err
	}

	fmt.Println() //nolint:forbidigo // User-facing output
	fmt.Println(cli.FormatTitle(fmt.Sprintf("Last analysis: %s", run.Path)))               //nolint:forbidigo // User-facing output
	fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("%d files, %s, completed %s",           //nolint:forbidigo // User-facing output
		run.TotalFiles, formatBytes(run.TotalBytes), run.CompletedAt.Format("2006-01-02 15:04"))))

	summaries, err := db.GetRunSummary(ctx, run.ID)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		return nil
	}

	fmt.Println() //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("Category"),
		cli.TableHeaderStyle.Render("Files"),
		cli.TableHeaderStyle.Render("Size")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, summary := range summaries {
		category := summary.Category
		if category == "" {
			category = "(uncategorized)"
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\t%s\n",
			category, summary.FileCount, formatBytes(summary.TotalBytes)); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush table writer: %w", err)
	}

	return nil
}
