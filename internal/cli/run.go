package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samims/indexer/internal/report"
)

var (
	flagURLFile string
	flagVerbose bool
	flagJSON    bool
)

func init() {
	runCmd.Flags().StringVarP(&flagURLFile, "file", "f", "", "Read URLs from a file, one per line, instead of the sheet")
	runCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print the outcome of every URL")
	runCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the run report as JSON")

	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one indexing pass and print the summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, l, err := loadConfig()
		if err != nil {
			return err
		}

		// no signal trap: an interrupted run has nothing worth reporting
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg, l, appOptions{urlFile: flagURLFile})
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.indexing.StartRun(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report.Summarize(r))
		}
		_, err = fmt.Fprint(out, report.Text(r, flagVerbose))
		return err
	},
}
