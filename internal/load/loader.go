// Package load streams tweet records from a source into the store, one
// record per input line. The three loading modes differ only in how rows
// reach the server: single statements, batched round-trips, or COPY.
package load

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kvellian/tweetbench/internal/fetch"
	"github.com/kvellian/tweetbench/internal/tweet"
	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

// progressInterval is how many processed records pass between progress
// callbacks in row mode. Batch and copy modes report per flush.
const progressInterval = 1000

// Sink receives parsed records. Satisfied by store.Store.
type Sink interface {
	InsertRecord(ctx context.Context, rec *tweetbench.Record) error
	InsertBatch(ctx context.Context, recs []*tweetbench.Record) error
	CopyRecords(ctx context.Context, recs []*tweetbench.Record) error
}

// Progress is called as the load advances with running totals.
type Progress func(processed, skipped int)

// Result summarizes one completed load.
type Result struct {
	Processed int
	Skipped   int
	Elapsed   time.Duration
}

// Loader reads a line-delimited tweet source and writes records to a Sink.
type Loader struct {
	sink     Sink
	fetcher  *fetch.Fetcher
	log      tweetbench.Logger
	progress Progress
}

// New creates a Loader. All arguments are required.
func New(sink Sink, fetcher *fetch.Fetcher, log tweetbench.Logger) *Loader {
	if sink == nil || fetcher == nil || log == nil {
		panic("load: sink, fetcher and logger are required")
	}
	return &Loader{sink: sink, fetcher: fetcher, log: log}
}

// WithProgress returns a copy of the loader that reports running totals
// through fn.
func (l *Loader) WithProgress(fn Progress) *Loader {
	clone := *l
	clone.progress = fn
	return &clone
}

// Run streams the configured source into the sink. Malformed lines are
// skipped and counted; any database error aborts the load.
func (l *Loader) Run(ctx context.Context, cfg tweetbench.LoadConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	src, err := l.fetcher.Open(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	l.log.Info("Loading from %s in %s mode", cfg.Source, cfg.Mode)
	start := time.Now()

	res := &Result{}
	var pending []*tweetbench.Record

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		var err error
		switch cfg.Mode {
		case tweetbench.LoadModeBatch:
			err = l.sink.InsertBatch(ctx, pending)
		case tweetbench.LoadModeCopy:
			err = l.sink.CopyRecords(ctx, pending)
		}
		if err != nil {
			return err
		}
		res.Processed += len(pending)
		pending = pending[:0]
		l.report(res)
		return nil
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), fetch.MaxLineSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("load interrupted: %w", err)
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		rec, err := tweet.ParseLine(line)
		if err != nil {
			if errors.Is(err, tweetbench.ErrMalformedRecord) {
				res.Skipped++
				l.log.Verbose("Skipping malformed line %d: %v", res.Processed+res.Skipped+len(pending), err)
				continue
			}
			return res, err
		}

		if cfg.Mode == tweetbench.LoadModeRow {
			if err := l.sink.InsertRecord(ctx, rec); err != nil {
				return res, err
			}
			res.Processed++
			if res.Processed%progressInterval == 0 {
				l.report(res)
			}
		} else {
			pending = append(pending, rec)
			if len(pending) >= cfg.BatchSize {
				if err := flush(); err != nil {
					return res, err
				}
			}
		}

		if cfg.MaxRecords > 0 && res.Processed+len(pending) >= cfg.MaxRecords {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("failed to read source: %v: %w", err, tweetbench.ErrFetchFailed)
	}

	if err := flush(); err != nil {
		return res, err
	}

	res.Elapsed = time.Since(start)
	l.report(res)
	l.log.Info("Loaded %d records (%d skipped) in %s", res.Processed, res.Skipped, res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func (l *Loader) report(res *Result) {
	if l.progress != nil {
		l.progress(res.Processed, res.Skipped)
	}
}
