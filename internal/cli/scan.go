package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kvellian/tweetbench/internal/bench"
	"github.com/kvellian/tweetbench/internal/fetch"
	"github.com/kvellian/tweetbench/internal/logging"
	"github.com/kvellian/tweetbench/internal/scan"
	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

var scanCmd = &cobra.Command{
	Use:   "scan <path-or-url>",
	Short: "Run the timed per-user aggregation directly over the source file",
	Long: `Scan computes the same per-user coordinate averages as the query
command, but straight over the tweet source without the database. The json
mode decodes every line; the regex mode extracts only the two needed fields.

The output matches the SQL aggregation over the same data, which makes the
timings directly comparable.

Examples:
  # Five timed JSON scans
  tweetbench scan tweets.txt

  # Twenty timed regex scans
  tweetbench scan tweets.txt --mode regex --iterations 20

The source may be omitted when source.file is set in tweetbench.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

var scanFlags struct {
	mode       string
	iterations int
	show       int
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanFlags.mode, "mode", "json",
		"Scanning mode: json|regex")
	scanCmd.Flags().IntVar(&scanFlags.iterations, "iterations", tweetbench.DefaultIterations,
		"Number of timed repetitions of the scan")
	scanCmd.Flags().IntVar(&scanFlags.show, "show", 10,
		"Number of result rows to print (0 = none)")
}

func runScan(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	log := logging.NewConsoleLogger(verbose)

	method, err := scan.ParseMethod(scanFlags.mode)
	if err != nil {
		return err
	}

	projectCfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	var fallback string
	if projectCfg != nil {
		fallback = projectCfg.Source.File
	}
	source, err := resolveSource(args, fallback)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	scanner := scan.New(fetch.NewFetcher(log), log)

	var last *scan.Result
	label := fmt.Sprintf("scan %s", method)
	res, err := bench.Run(ctx, label, scanFlags.iterations, func(ctx context.Context) error {
		last, err = scanner.UserAverages(ctx, source, method)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d iterations, total %s, mean %s\n",
		label, len(res.Samples), res.Total.Round(time.Microsecond), res.Mean().Round(time.Microsecond))
	fmt.Printf("%d lines scanned (%d skipped), %d users have located tweets\n",
		last.Lines, last.Skipped, len(last.Averages))

	printAverages(last.Averages, scanFlags.show)
	return nil
}
