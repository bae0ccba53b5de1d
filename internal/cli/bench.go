package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kvellian/tweetbench/internal/bench"
	"github.com/kvellian/tweetbench/internal/fetch"
	"github.com/kvellian/tweetbench/internal/load"
	"github.com/kvellian/tweetbench/internal/logging"
	"github.com/kvellian/tweetbench/internal/scan"
	"github.com/kvellian/tweetbench/internal/store"
	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

var benchCmd = &cobra.Command{
	Use:   "bench <path-or-url>",
	Short: "Run the full load and query comparison matrix",
	Long: `Bench runs the complete comparison over one tweet source:

  1. For each record count, load the first N records in row, batch and
     copy modes, timing each load (tables are emptied between loads).
  2. For each iteration count, time the SQL aggregation and the json and
     regex file scans.
  3. Materialize the denormalized join table once and time it.

Every run gets a unique ID, stamped into the bench_run table and printed
on the report.

Examples:
  # Default matrix against the tweets database
  tweetbench bench tweets.txt -d tweets --create-db

  # Custom record counts and iteration counts
  tweetbench bench tweets.txt -d tweets --counts 1000,10000 --iterations 5,20

The source may be omitted when source.file is set in tweetbench.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBench,
}

var benchFlags struct {
	conn       connFlagValues
	counts     []int
	iterations []int
	batchSize  int
	createDB   bool
}

func init() {
	rootCmd.AddCommand(benchCmd)
	addConnectionFlags(benchCmd, &benchFlags.conn)

	benchCmd.Flags().IntSliceVar(&benchFlags.counts, "counts", []int{10000},
		"Record counts to load per scenario (comma separated)")
	benchCmd.Flags().IntSliceVar(&benchFlags.iterations, "iterations", []int{5, 20},
		"Iteration counts for the timed query and scan runs (comma separated)")
	benchCmd.Flags().IntVar(&benchFlags.batchSize, "batch-size", tweetbench.DefaultBatchSize,
		"Records per batched flush (batch and copy modes)")
	benchCmd.Flags().BoolVar(&benchFlags.createDB, "create-db", false,
		"Create the target database if it does not exist")
}

// loadScenario is one timed load in the comparison matrix.
type loadScenario struct {
	label  string
	source string
	mode   tweetbench.LoadMode
	count  int
}

// loadScenarios builds the load matrix: for each record count, a row load
// straight off the web when webSource is set, then row, batch and copy
// loads from the local source.
func loadScenarios(counts []int, localSource, webSource string) []loadScenario {
	var scenarios []loadScenario
	for _, count := range counts {
		if webSource != "" {
			scenarios = append(scenarios, loadScenario{
				label:  fmt.Sprintf("load row n=%d (web)", count),
				source: webSource,
				mode:   tweetbench.LoadModeRow,
				count:  count,
			})
		}
		for _, mode := range []tweetbench.LoadMode{
			tweetbench.LoadModeRow,
			tweetbench.LoadModeBatch,
			tweetbench.LoadModeCopy,
		} {
			scenarios = append(scenarios, loadScenario{
				label:  fmt.Sprintf("load %s n=%d", mode, count),
				source: localSource,
				mode:   mode,
				count:  count,
			})
		}
	}
	return scenarios
}

func runBench(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	log := logging.NewConsoleLogger(verbose)

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
	sourceName := source

	connConfig, err := resolveConnection(&benchFlags.conn, projectCfg, verbose)
	if err != nil {
		return err
	}

	counts := benchFlags.counts
	if projectCfg != nil && len(projectCfg.Bench.Counts) > 0 && !cmd.Flags().Changed("counts") {
		counts = projectCfg.Bench.Counts
	}
	iterations := benchFlags.iterations
	if projectCfg != nil && len(projectCfg.Bench.Iterations) > 0 && !cmd.Flags().Changed("iterations") {
		iterations = projectCfg.Bench.Iterations
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	if benchFlags.createDB {
		if err := ensureDatabase(ctx, connConfig, log); err != nil {
			return err
		}
	}

	pool, err := openPool(ctx, connConfig)
	if err != nil {
		return err
	}
	defer pool.Close()

	s := store.New(pool)
	if err := s.CreateSchema(ctx); err != nil {
		return err
	}

	fetcher := fetch.NewFetcher(log)
	loader := load.New(s, fetcher, log)
	scanner := scan.New(fetcher, log)
	report := bench.NewReport()

	// Phase 0: when the source is remote, time one fetch to a local file.
	// The local copy feeds the rest of the matrix, while each count also
	// gets a row load straight off the web for the web-vs-file comparison.
	webSource := ""
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		maxCount := 0
		for _, c := range counts {
			if c > maxCount {
				maxCount = c
			}
		}

		localPath := filepath.Join(os.TempDir(), fmt.Sprintf("tweetbench-%s.txt", report.RunID))
		defer os.Remove(localPath)

		res, err := bench.Run(ctx, fmt.Sprintf("fetch n=%d", maxCount), 1, func(ctx context.Context) error {
			_, err := fetcher.SaveFirstN(ctx, source, localPath, maxCount)
			return err
		})
		if err != nil {
			return err
		}
		report.Add(res)

		webSource = source
		source = localPath
	}

	// Phase 1: timed loads per record count and mode.
	for _, sc := range loadScenarios(counts, source, webSource) {
		cfg := tweetbench.LoadConfig{
			Source:     sc.source,
			Mode:       sc.mode,
			BatchSize:  benchFlags.batchSize,
			MaxRecords: sc.count,
			Verbose:    verbose,
		}

		res, err := bench.Run(ctx, sc.label, 1, func(ctx context.Context) error {
			if err := s.Truncate(ctx); err != nil {
				return err
			}
			_, err := loader.Run(ctx, cfg)
			return err
		})
		if err != nil {
			return err
		}
		report.Add(res)
	}

	// Phase 2: timed aggregation and scans per iteration count.
	for _, iters := range iterations {
		res, err := bench.Run(ctx, fmt.Sprintf("query averages x%d", iters), iters, func(ctx context.Context) error {
			_, err := s.UserAverages(ctx)
			return err
		})
		if err != nil {
			return err
		}
		report.Add(res)

		for _, method := range []scan.Method{scan.MethodJSON, scan.MethodRegex} {
			res, err := bench.Run(ctx, fmt.Sprintf("scan %s x%d", method, iters), iters, func(ctx context.Context) error {
				_, err := scanner.UserAverages(ctx, source, method)
				return err
			})
			if err != nil {
				return err
			}
			report.Add(res)
		}
	}

	// Phase 3: denormalized join materialization.
	res, err := bench.Run(ctx, "create tweet_denorm", 1, func(ctx context.Context) error {
		_, err := s.CreateDenorm(ctx)
		return err
	})
	if err != nil {
		return err
	}
	report.Add(res)

	if err := s.RecordBenchRun(ctx, report.RunID, fmt.Sprintf("bench %s", sourceName)); err != nil {
		return err
	}

	fmt.Println(report.Render())
	return nil
}
