package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/tally/internal/bankformat"
)

func newFormatsCommand() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the bank export formats that can be detected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles := append(bankformat.Default().Profiles(), bankformat.Generic())

			if asYAML {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(profiles)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tBANK\tAMOUNTS\tDETECTS ON")
			for _, p := range profiles {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.DisplayName, p.Convention, describeDetect(p.Detect))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print full profiles as YAML")
	return cmd
}

func describeDetect(preds []bankformat.Predicate) string {
	if len(preds) == 0 {
		return "(fallback)"
	}
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = fmt.Sprintf("%s(%s)", p.Kind, strings.Join(p.Headers, ", "))
	}
	return strings.Join(parts, " & ")
}
