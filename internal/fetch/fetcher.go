// Package fetch streams the remote newline-delimited tweet resource and
// opens tweet sources (local files or http URLs) for loading.
package fetch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

// Generous read timeout: the full tweet resource is hundreds of megabytes.
const defaultClientTimeout = 30 * time.Minute

// MaxLineSize bounds a single tweet line. The longest observed lines are
// well under 1MB; anything larger is corrupt input.
const MaxLineSize = 1 << 20

// Fetcher downloads tweet lines over HTTP.
type Fetcher struct {
	client *http.Client
	log    tweetbench.Logger
}

// NewFetcher creates a Fetcher with a long-lived streaming HTTP client.
func NewFetcher(log tweetbench.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: defaultClientTimeout},
		log:    log,
	}
}

// NewFetcherWithClient creates a Fetcher with the given client.
// Used by tests against httptest servers.
func NewFetcherWithClient(client *http.Client, log tweetbench.Logger) *Fetcher {
	return &Fetcher{client: client, log: log}
}

// SaveFirstN streams the resource at url and writes its first n lines to
// path, one tweet per line. Returns the number of lines written.
//
// Any network or file error aborts the fetch; a partially written file may
// remain on disk.
func (f *Fetcher) SaveFirstN(ctx context.Context, url, path string, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("line count must be positive, got %d: %w", n, tweetbench.ErrInvalidConfig)
	}

	body, err := f.Open(ctx, url)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	written := 0

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), MaxLineSize)
	for scanner.Scan() && written < n {
		if _, err := w.Write(scanner.Bytes()); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written++
	}
	if err := scanner.Err(); err != nil {
		return written, fmt.Errorf("failed to stream %s: %w", url, err)
	}

	if err := w.Flush(); err != nil {
		return written, fmt.Errorf("failed to flush %s: %w", path, err)
	}

	f.log.Verbose("Saved %d tweet lines to %s", written, path)
	return written, nil
}

// Open returns a line stream for a tweet source: an http(s) URL opens a
// streaming GET, anything else is treated as a local file path.
func (f *Fetcher) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	if IsURL(source) {
		return f.openURL(ctx, source)
	}

	file, err := os.Open(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", source, tweetbench.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("failed to open %s: %w", source, err)
	}
	return file, nil
}

func (f *Fetcher) openURL(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url %s: %w", url, tweetbench.ErrFetchFailed)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %v: %w", url, err, tweetbench.ErrFetchFailed)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s: %w", url, resp.Status, tweetbench.ErrFetchFailed)
	}

	f.log.Verbose("Streaming %s (%s)", url, resp.Header.Get("Content-Type"))
	return resp.Body, nil
}

// IsURL reports whether a load source names a remote resource.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
