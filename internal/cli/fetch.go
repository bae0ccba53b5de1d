package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kvellian/tweetbench/internal/fetch"
	"github.com/kvellian/tweetbench/internal/logging"
	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download the first N tweet lines to a local file",
	Long: `Fetch streams a newline-delimited tweet resource over HTTP and writes
its first N lines to a local file, one tweet per line. The file is the
input for the load, scan and bench commands.

Examples:
  # Save the default number of tweets
  tweetbench fetch https://example.com/tweets.txt

  # Save 10000 tweets to a custom path
  tweetbench fetch https://example.com/tweets.txt --count 10000 --output sample.txt

The URL may be omitted when source.url is set in tweetbench.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

var fetchFlags struct {
	count  int
	output string
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVar(&fetchFlags.count, "count", tweetbench.DefaultFetchCount,
		"Number of tweet lines to save")
	fetchCmd.Flags().StringVarP(&fetchFlags.output, "output", "o", "tweets.txt",
		"Output file path")
}

func runFetch(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	log := logging.NewConsoleLogger(verbose)

	projectCfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	var fallback string
	if projectCfg != nil {
		fallback = projectCfg.Source.URL
	}
	url, err := resolveSource(args, fallback)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	fetcher := fetch.NewFetcher(log)
	written, err := fetcher.SaveFirstN(ctx, url, fetchFlags.output, fetchFlags.count)
	if err != nil {
		return fmt.Errorf("fetch failed after %d lines: %w", written, err)
	}

	log.Info("Saved %d tweet lines to %s", written, fetchFlags.output)
	return nil
}

// signalContext derives a context that cancels on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
