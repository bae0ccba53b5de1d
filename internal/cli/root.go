package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const asciiLogo = `
 _                    _   _                     _
| |___      _____ ___| |_| |__   ___ _ __   ___| |__
| __\ \ /\ / / _ \ _ \ __| '_ \ / _ \ '_ \ / __| '_ \
| |_ \ V  V /  __/  __/ |_| |_) |  __/ | | | (__| | | |
 \__| \_/\_/ \___|\___|\__|_.__/ \___|_| |_|\___|_| |_|`

var rootCmd = &cobra.Command{
	Use:   "tweetbench",
	Short: "PostgreSQL tweet loading and query benchmark",
	Long: asciiLogo + `

tweetbench loads a newline-delimited tweet dataset into PostgreSQL and times
the ways of getting data in and out: row-at-a-time inserts against batched
round-trips and COPY, and SQL aggregation against JSON and regex scans over
the raw file.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Database connection failed
  12 - Failed to fetch the remote tweet resource
  13 - SQL execution failed
  14 - Tweet source file not found`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for tweetbench")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
