package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kvellian/tweetbench/internal/logging"
	"github.com/kvellian/tweetbench/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Export the tweet tables to JSON and CSV files",
	Long: `Export rebuilds the denormalized three-way join table (tweet_denorm)
and writes the tweet table and the join to files in the given directory:

  tweets.json        both tables in one JSON document
  tweets.csv         the tweet table
  tweet_denorm.csv   the denormalized join

Examples:
  # Export everything
  tweetbench export ./out -d tweets

  # CSV only
  tweetbench export ./out -d tweets --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var exportFlags struct {
	conn   connFlagValues
	format string
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addConnectionFlags(exportCmd, &exportFlags.conn)

	exportCmd.Flags().StringVar(&exportFlags.format, "format", "all",
		"Export format: json|csv|all")
}

func runExport(cmd *cobra.Command, args []string) error {
	dir := args[0]
	verbose := getVerboseFlag(cmd)
	log := logging.NewConsoleLogger(verbose)

	if exportFlags.format != "json" && exportFlags.format != "csv" && exportFlags.format != "all" {
		return fmt.Errorf("unknown export format %q (want json, csv, or all)", exportFlags.format)
	}

	projectCfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	connConfig, err := resolveConnection(&exportFlags.conn, projectCfg, verbose)
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

	denormCount, err := s.CreateDenorm(ctx)
	if err != nil {
		return err
	}
	log.Verbose("Materialized tweet_denorm with %d rows", denormCount)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}

	if exportFlags.format == "json" || exportFlags.format == "all" {
		path := filepath.Join(dir, "tweets.json")
		if err := exportTo(path, func(f *os.File) error {
			return s.ExportJSON(ctx, f)
		}); err != nil {
			return err
		}
		log.Info("Wrote %s", path)
	}

	if exportFlags.format == "csv" || exportFlags.format == "all" {
		tweetPath := filepath.Join(dir, "tweets.csv")
		denormPath := filepath.Join(dir, "tweet_denorm.csv")

		tweetFile, err := os.Create(tweetPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", tweetPath, err)
		}
		defer tweetFile.Close()

		denormFile, err := os.Create(denormPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", denormPath, err)
		}
		defer denormFile.Close()

		if err := s.ExportCSV(ctx, tweetFile, denormFile); err != nil {
			return err
		}
		log.Info("Wrote %s and %s", tweetPath, denormPath)
	}

	return nil
}

// exportTo writes one export file, closing it on all paths.
func exportTo(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}
	return f.Sync()
}
