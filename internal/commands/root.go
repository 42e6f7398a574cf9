package commands

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Bank statement import and categorization for small business books",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := log.InfoLevel
			if a.verbose {
				level = log.DebugLevel
			}
			a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
				Level:  level,
				Prefix: "tally",
			})
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.repoDir, "repo", ".", "project directory")

	rootCmd.AddCommand(
		newInitCommand(a),
		newFormatsCommand(),
		newImportCommand(a),
		newClassifyCommand(a),
		newRulesCommand(a),
	)

	return rootCmd
}
