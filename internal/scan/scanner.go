// Package scan computes the per-user location aggregation directly over a
// tweet source file, without the database. It exists to be timed against
// the SQL query surface: one scanner decodes each line as JSON, the other
// pulls the fields out with regular expressions.
package scan

import (
	"bufio"
	"context"
	"fmt"
	"sort"

	"github.com/kvellian/tweetbench/internal/fetch"
	"github.com/kvellian/tweetbench/internal/tweet"
	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

// Method selects how a scanner extracts user and coordinates from a line.
type Method int

const (
	// MethodJSON fully decodes each line.
	MethodJSON Method = iota
	// MethodRegex matches the two needed fields without decoding.
	MethodRegex
)

// String returns the CLI spelling of the Method.
func (m Method) String() string {
	switch m {
	case MethodJSON:
		return "json"
	case MethodRegex:
		return "regex"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseMethod converts a CLI flag value into a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "json":
		return MethodJSON, nil
	case "regex":
		return MethodRegex, nil
	default:
		return 0, fmt.Errorf("unknown scan method %q (want json or regex): %w", s, tweetbench.ErrInvalidConfig)
	}
}

// Result is the outcome of one file scan.
type Result struct {
	Averages []tweetbench.UserAverage
	Lines    int
	Skipped  int
}

// Scanner aggregates coordinates per user over a tweet source.
type Scanner struct {
	fetcher   *fetch.Fetcher
	extractor *tweet.Extractor
	log       tweetbench.Logger
}

// New creates a Scanner.
func New(fetcher *fetch.Fetcher, log tweetbench.Logger) *Scanner {
	if fetcher == nil || log == nil {
		panic("scan: fetcher and logger are required")
	}
	return &Scanner{
		fetcher:   fetcher,
		extractor: tweet.NewExtractor(),
		log:       log,
	}
}

type accumulator struct {
	count  int64
	sumLon float64
	sumLat float64
}

// UserAverages scans the source and returns per-user average coordinates,
// sorted by user ID. Tweets without coordinates do not participate, so the
// output matches the SQL aggregation over the same data.
func (s *Scanner) UserAverages(ctx context.Context, source string, method Method) (*Result, error) {
	src, err := s.fetcher.Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	res := &Result{}
	accs := make(map[string]*accumulator)

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), fetch.MaxLineSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("scan interrupted: %w", err)
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		res.Lines++

		userID, lon, lat, ok, err := s.extract(line, method)
		if err != nil {
			res.Skipped++
			continue
		}
		if !ok {
			continue
		}

		acc := accs[userID]
		if acc == nil {
			acc = &accumulator{}
			accs[userID] = acc
		}
		acc.count++
		acc.sumLon += lon
		acc.sumLat += lat
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("failed to read source: %v: %w", err, tweetbench.ErrFetchFailed)
	}

	res.Averages = make([]tweetbench.UserAverage, 0, len(accs))
	for userID, acc := range accs {
		res.Averages = append(res.Averages, tweetbench.UserAverage{
			UserID:    userID,
			Longitude: acc.sumLon / float64(acc.count),
			Latitude:  acc.sumLat / float64(acc.count),
		})
	}
	sort.Slice(res.Averages, func(i, j int) bool {
		return res.Averages[i].UserID < res.Averages[j].UserID
	})

	s.log.Verbose("Scanned %d lines (%d skipped) with %s method", res.Lines, res.Skipped, method)
	return res, nil
}

// extract returns the user and coordinates of one line. ok is false when
// the line is valid but carries no coordinates.
func (s *Scanner) extract(line []byte, method Method) (userID string, lon, lat float64, ok bool, err error) {
	switch method {
	case MethodRegex:
		userID, lon, lat, ok = s.extractor.Extract(line)
		return userID, lon, lat, ok, nil
	default:
		rec, err := tweet.ParseLine(line)
		if err != nil {
			return "", 0, 0, false, err
		}
		if rec.Geo == nil {
			return "", 0, 0, false, nil
		}
		return rec.Tweet.UserID, rec.Geo.Longitude, rec.Geo.Latitude, true, nil
	}
}
