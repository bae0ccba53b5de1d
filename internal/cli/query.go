package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kvellian/tweetbench/internal/bench"
	"github.com/kvellian/tweetbench/internal/logging"
	"github.com/kvellian/tweetbench/internal/store"
	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run the timed per-user location aggregation in SQL",
	Long: `Query times the SQL aggregation that averages tweet coordinates per
user (tweets without coordinates do not participate), repeating it for the
requested number of iterations, and prints per-table row counts alongside
the first rows of the result.

Examples:
  # Five timed iterations against the tweets database
  tweetbench query -d tweets

  # Twenty iterations, show more rows
  tweetbench query -d tweets --iterations 20 --show 25`,
	RunE: runQuery,
}

var queryFlags struct {
	conn       connFlagValues
	iterations int
	show       int
}

func init() {
	rootCmd.AddCommand(queryCmd)
	addConnectionFlags(queryCmd, &queryFlags.conn)

	queryCmd.Flags().IntVar(&queryFlags.iterations, "iterations", tweetbench.DefaultIterations,
		"Number of timed repetitions of the aggregation query")
	queryCmd.Flags().IntVar(&queryFlags.show, "show", 10,
		"Number of result rows to print (0 = none)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	log := logging.NewConsoleLogger(verbose)

	projectCfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	connConfig, err := resolveConnection(&queryFlags.conn, projectCfg, verbose)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	pool, err := openPool(ctx, connConfig)
	if err != nil {
		return err
	}
	defer pool.Close()

	s := store.New(pool)

	counts, err := s.Counts(ctx)
	if err != nil {
		return err
	}
	log.Info("Aggregating over %d tweets, %d users, %d geo points",
		counts.Tweets, counts.Users, counts.Geos)

	var averages []tweetbench.UserAverage
	res, err := bench.Run(ctx, "query user averages", queryFlags.iterations, func(ctx context.Context) error {
		averages, err = s.UserAverages(ctx)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Printf("query user averages: %d iterations, total %s, mean %s\n",
		len(res.Samples), res.Total.Round(time.Microsecond), res.Mean().Round(time.Microsecond))
	fmt.Printf("%d users have located tweets\n", len(averages))

	printAverages(averages, queryFlags.show)
	return nil
}

// printAverages prints up to limit aggregation rows.
func printAverages(averages []tweetbench.UserAverage, limit int) {
	if limit <= 0 {
		return
	}
	if limit > len(averages) {
		limit = len(averages)
	}
	for _, avg := range averages[:limit] {
		fmt.Printf("  %-20s  lon %12.6f  lat %12.6f\n", avg.UserID, avg.Longitude, avg.Latitude)
	}
	if len(averages) > limit {
		fmt.Printf("  ... and %d more\n", len(averages)-limit)
	}
}
