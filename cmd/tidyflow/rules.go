package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nvander/tidyflow/internal/cli"
	"github.com/nvander/tidyflow/internal/model"
	"github.com/nvander/tidyflow/internal/rules"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage organization rules",
		Long: `Create, list, edit, and delete the rules that turn an analyzed file set
into move suggestions. Rules persist across analysis runs.`,
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesEditCmd())
	cmd.AddCommand(rulesDeleteCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all rules",
		Long: `Display all rules in evaluation order (highest priority first). Rules
whose match value is not valid for their match kind are flagged: they are
kept but match nothing until fixed.`,
		RunE: runRulesList,
	}
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	ruleSet, err := db.ListRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to list rules: %w", err)
	}

	if len(ruleSet) == 0 {
		fmt.Println(cli.InfoStyle.Render("No rules found. Use 'tidyflow rules add' to create one.")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle("Organization Rules")) //nolint:forbidigo // User-facing output
	fmt.Println()                                      //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("ID"),
		cli.TableHeaderStyle.Render("Title"),
		cli.TableHeaderStyle.Render("Match"),
		cli.TableHeaderStyle.Render("Value"),
		cli.TableHeaderStyle.Render("Target"),
		cli.TableHeaderStyle.Render("Priority"),
		cli.TableHeaderStyle.Render("Enabled")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	var warnings []string
	for _, rule := range ruleSet {
		enabled := cli.SuccessIcon
		if !rule.Enabled {
			enabled = "-"
		}

		title := rule.Title
		if validErr := rules.Validate(&rule); validErr != nil {
			title = cli.WarningStyle.Render(cli.WarningIcon + " " + title)
			warnings = append(warnings,
				fmt.Sprintf("rule %d (%s) matches nothing: %v", rule.ID, rule.Title, validErr))
		}

		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rule.ID, title, rule.MatchKind, rule.MatchValue,
			rule.TargetFolder, rule.Priority, enabled); err != nil {
			return fmt.Errorf("failed to write rule row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush table writer: %w", err)
	}

	for _, warning := range warnings {
		fmt.Println(cli.FormatWarning(warning)) //nolint:forbidigo // User-facing output
	}

	return nil
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new rule",
		Long: `Create an organization rule. The match value's meaning depends on the
match kind:

  extension_set     comma-separated extensions, e.g. ".ps1,.bat"
  filename_pattern  case-insensitive regular expression
  folder_contains   literal path substring

A syntactically invalid match value is accepted with a warning: the rule is
saved but matches nothing until you fix it.

Examples:
  tidyflow rules add --title "Scripts" --kind extension_set --value ".ps1,.bat" --target Scripts
  tidyflow rules add --title "Backups" --kind filename_pattern --value "(backup|bak)" --target Archive --priority high`,
		RunE: runRulesAdd,
	}

	cmd.Flags().String("title", "", "Rule title (required)")
	cmd.Flags().String("description", "", "Rule description")
	cmd.Flags().String("kind", "", "Match kind: extension_set, filename_pattern, folder_contains (required)")
	cmd.Flags().String("value", "", "Match value (required)")
	cmd.Flags().String("target", "", "Target folder for matched files (required)")
	cmd.Flags().String("priority", "medium", "Priority: high, medium, low")
	cmd.Flags().Bool("disabled", false, "Create the rule disabled")

	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("value")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runRulesAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	kind, _ := cmd.Flags().GetString("kind")
	value, _ := cmd.Flags().GetString("value")
	target, _ := cmd.Flags().GetString("target")
	priority, _ := cmd.Flags().GetString("priority")
	disabled, _ := cmd.Flags().GetBool("disabled")

	rule := &model.Rule{
		Title:        title,
		Description:  description,
		MatchKind:    model.MatchKind(strings.ToLower(kind)),
		MatchValue:   value,
		TargetFolder: target,
		Priority:     model.Priority(strings.ToLower(priority)),
		Enabled:      !disabled,
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

	if err := db.CreateRule(ctx, rule); err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created rule %d (%s)", rule.ID, rule.Title))) //nolint:forbidigo // User-facing output

	if validErr := rules.Validate(rule); validErr != nil {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("rule saved but will match nothing: %v", validErr))) //nolint:forbidigo // User-facing output
	}

	return nil
}

func rulesEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an existing rule",
		Long: `Update fields of an existing rule. Only the flags you pass change;
everything else is kept.

Examples:
  tidyflow rules edit 3 --target "Archive/2026"
  tidyflow rules edit 3 --disabled
  tidyflow rules edit 3 --enabled --priority high`,
		Args: cobra.ExactArgs(1),
		RunE: runRulesEdit,
	}

	cmd.Flags().String("title", "", "Rule title")
	cmd.Flags().String("description", "", "Rule description")
	cmd.Flags().String("kind", "", "Match kind")
	cmd.Flags().String("value", "", "Match value")
	cmd.Flags().String("target", "", "Target folder")
	cmd.Flags().String("priority", "", "Priority: high, medium, low")
	cmd.Flags().Bool("enabled", false, "Enable the rule")
	cmd.Flags().Bool("disabled", false, "Disable the rule")

	return cmd
}

func runRulesEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid rule ID %q: %w", args[0], err)
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

	rule, err := db.GetRule(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("title") {
		rule.Title, _ = cmd.Flags().GetString("title")
	}
	if cmd.Flags().Changed("description") {
		rule.Description, _ = cmd.Flags().GetString("description")
	}
	if cmd.Flags().Changed("kind") {
		kind, _ := cmd.Flags().GetString("kind")
		rule.MatchKind = model.MatchKind(strings.ToLower(kind))
	}
	if cmd.Flags().Changed("value") {
		rule.MatchValue, _ = cmd.Flags().GetString("value")
	}
	if cmd.Flags().Changed("target") {
		rule.TargetFolder, _ = cmd.Flags().GetString("target")
	}
	if cmd.Flags().Changed("priority") {
		priority, _ := cmd.Flags().GetString("priority")
		rule.Priority = model.Priority(strings.ToLower(priority))
	}
	if cmd.Flags().Changed("enabled") {
		rule.Enabled = true
	}
	if cmd.Flags().Changed("disabled") {
		rule.Enabled = false
	}

	if err := db.UpdateRule(ctx, rule); err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated rule %d (%s)", rule.ID, rule.Title))) //nolint:forbidigo // User-facing output

	if validErr := rules.Validate(rule); validErr != nil {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("rule saved but will match nothing: %v", validErr))) //nolint:forbidigo // User-facing output
	}

	return nil
}

func rulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rule ID %q: %w", args[0], err)
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

			if err := db.DeleteRule(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted rule %d", id))) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}
