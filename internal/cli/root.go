// Package cli holds the indexer commands: serve exposes the HTTP trigger,
// run performs one indexing pass from the console.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var flagLogLevel string

var rootCmd = &cobra.Command{
	Use:          "indexer",
	Short:        "Submit URL update notifications across a pool of accounts",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
