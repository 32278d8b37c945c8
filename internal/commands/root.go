package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/burrima/bank-statement-analysis/internal/buildinfo"
	"github.com/burrima/bank-statement-analysis/internal/logging"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:     "bsa",
		Short:   "Process bank statements and categorize the expenses",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newFormatsCommand())

	return rootCmd
}
