package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClassifyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Apply categorization rules to uncategorized ledger transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.open()
			if err != nil {
				return err
			}
			res, err := p.service(a.logger).Reclassify(cmd.Context(), p.cfg.Business.CompanyID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Classified %d transactions using %d rules\n", res.Classified, res.RulesApplied)
			for _, cat := range res.Categories() {
				fmt.Fprintf(out, "  %-28s %d\n", cat, len(res.ByCategory[cat]))
			}
			if res.Classified == 0 {
				return nil
			}
			_, err = p.commit(cmd.Context(), fmt.Sprintf("classify: %d transactions", res.Classified))
			return err
		},
	}
}
