package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/categories"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/rules"
)

func newRulesCommand(a *app) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization rules",
	}
	rulesCmd.AddCommand(
		newRulesListCommand(a),
		newRulesAddCommand(a),
		newRulesCheckCommand(a),
	)
	return rulesCmd
}

func newRulesListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in the order they are evaluated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.open()
			if err != nil {
				return err
			}
			rs, err := rules.NewSource(p.root).Rules(cmd.Context())
			if err != nil {
				return err
			}
			engine := rules.New(rs)
			if engine.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No active rules")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPRIORITY\tCATEGORY\tKEYWORDS")
			for _, r := range engine.Rules() {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.ID, r.Priority, r.Category, r.Pattern)
			}
			return tw.Flush()
		},
	}
}

func newRulesAddCommand(a *app) *cobra.Command {
	var (
		rule     model.Rule
		inactive bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a keyword rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.open()
			if err != nil {
				return err
			}
			chart, err := categories.Load(p.root)
			if err != nil {
				return err
			}
			if !chart.Exists(rule.Category) {
				return fmt.Errorf("unknown category %q", rule.Category)
			}
			if c, ok := chart.Get(rule.Category); ok {
				rule.Category = c.Name
			}
			rule.IsActive = !inactive

			added, err := rules.NewSource(p.root).Add(rule)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added rule %s: %q -> %s\n", added.ID, added.Pattern, added.Category)
			_, err = p.commit(cmd.Context(), fmt.Sprintf("rules: add %s (%s)", added.ID, added.Category))
			return err
		},
	}

	cmd.Flags().StringVar(&rule.Pattern, "pattern", "", "comma-separated keywords (required)")
	cmd.Flags().StringVar(&rule.Category, "category", "", "category to assign (required)")
	cmd.Flags().IntVar(&rule.Priority, "priority", 0, "higher numbers are evaluated first")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "add the rule disabled")
	_ = cmd.MarkFlagRequired("pattern")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newRulesCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that every rule points at a known category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.open()
			if err != nil {
				return err
			}
			rs, err := rules.NewSource(p.root).Rules(cmd.Context())
			if err != nil {
				return err
			}
			chart, err := categories.Load(p.root)
			if err != nil {
				return err
			}
			unknown := rules.UnknownCategories(rs, chart)
			for _, r := range unknown {
				fmt.Fprintf(cmd.OutOrStdout(), "rule %s: unknown category %q\n", r.ID, r.Category)
			}
			if len(unknown) > 0 {
				return errors.New("rules reference unknown categories")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rules OK\n", len(rs))
			return nil
		},
	}
}
