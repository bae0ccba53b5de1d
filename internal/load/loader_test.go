package load

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvellian/tweetbench/internal/fetch"
	"github.com/kvellian/tweetbench/internal/logging"
	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

// stubSink records which insert path was taken and how many records arrived.
type stubSink struct {
	rows    []*tweetbench.Record
	batches [][]*tweetbench.Record
	copies  [][]*tweetbench.Record
	failAt  int
	seen    int
}

func (s *stubSink) InsertRecord(_ context.Context, rec *tweetbench.Record) error {
	s.seen++
	if s.failAt > 0 && s.seen >= s.failAt {
		return fmt.Errorf("row %d: %w", s.seen, tweetbench.ErrExecutionFailed)
	}
	s.rows = append(s.rows, rec)
	return nil
}

func (s *stubSink) InsertBatch(_ context.Context, recs []*tweetbench.Record) error {
	s.seen += len(recs)
	if s.failAt > 0 && s.seen >= s.failAt {
		return fmt.Errorf("batch: %w", tweetbench.ErrExecutionFailed)
	}
	cp := append([]*tweetbench.Record(nil), recs...)
	s.batches = append(s.batches, cp)
	return nil
}

func (s *stubSink) CopyRecords(_ context.Context, recs []*tweetbench.Record) error {
	s.seen += len(recs)
	cp := append([]*tweetbench.Record(nil), recs...)
	s.copies = append(s.copies, cp)
	return nil
}

func tweetLine(id int) string {
	return fmt.Sprintf(`{"id_str":"%d","text":"t%d","user":{"id_str":"u%d"}}`, id, id, id%3)
}

func writeSource(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tweets.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func newTestLoader(sink Sink) *Loader {
	log := logging.NewNullLogger()
	return New(sink, fetch.NewFetcher(log), log)
}

func TestLoader_RowMode(t *testing.T) {
	var lines []string
	for i := 0; i < 7; i++ {
		lines = append(lines, tweetLine(i))
	}
	sink := &stubSink{}

	res, err := newTestLoader(sink).Run(context.Background(), tweetbench.LoadConfig{
		Source: writeSource(t, lines),
		Mode:   tweetbench.LoadModeRow,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, res.Processed)
	assert.Equal(t, 0, res.Skipped)
	assert.Len(t, sink.rows, 7)
	assert.Empty(t, sink.batches)
}

func TestLoader_BatchModeFlushesAtBatchSize(t *testing.T) {
	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, tweetLine(i))
	}
	sink := &stubSink{}

	res, err := newTestLoader(sink).Run(context.Background(), tweetbench.LoadConfig{
		Source:    writeSource(t, lines),
		Mode:      tweetbench.LoadModeBatch,
		BatchSize: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, res.Processed)
	// Two full batches plus the final partial flush.
	require.Len(t, sink.batches, 3)
	assert.Len(t, sink.batches[0], 4)
	assert.Len(t, sink.batches[1], 4)
	assert.Len(t, sink.batches[2], 2)
}

func TestLoader_CopyMode(t *testing.T) {
	var lines []string
	for i := 0; i < 5; i++ {
		lines = append(lines, tweetLine(i))
	}
	sink := &stubSink{}

	res, err := newTestLoader(sink).Run(context.Background(), tweetbench.LoadConfig{
		Source:    writeSource(t, lines),
		Mode:      tweetbench.LoadModeCopy,
		BatchSize: 2000,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Processed)
	require.Len(t, sink.copies, 1)
	assert.Len(t, sink.copies[0], 5)
}

func TestLoader_SkipsMalformedLines(t *testing.T) {
	lines := []string{
		tweetLine(1),
		`{"id_str":"2",`,
		"",
		`{"text":"no ids"}`,
		tweetLine(3),
	}
	sink := &stubSink{}

	res, err := newTestLoader(sink).Run(context.Background(), tweetbench.LoadConfig{
		Source: writeSource(t, lines),
		Mode:   tweetbench.LoadModeRow,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Processed)
	// Blank lines are ignored outright, not counted as skips.
	assert.Equal(t, 2, res.Skipped)
}

func TestLoader_MaxRecordsCapsTheLoad(t *testing.T) {
	var lines []string
	for i := 0; i < 100; i++ {
		lines = append(lines, tweetLine(i))
	}
	sink := &stubSink{}

	res, err := newTestLoader(sink).Run(context.Background(), tweetbench.LoadConfig{
		Source:     writeSource(t, lines),
		Mode:       tweetbench.LoadModeBatch,
		BatchSize:  10,
		MaxRecords: 25,
	})
	require.NoError(t, err)

	assert.Equal(t, 25, res.Processed)
}

func TestLoader_AbortsOnSinkError(t *testing.T) {
	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, tweetLine(i))
	}
	sink := &stubSink{failAt: 4}

	res, err := newTestLoader(sink).Run(context.Background(), tweetbench.LoadConfig{
		Source: writeSource(t, lines),
		Mode:   tweetbench.LoadModeRow,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, tweetbench.ErrExecutionFailed)
	assert.Equal(t, 3, res.Processed)
}

func TestLoader_MissingSource(t *testing.T) {
	sink := &stubSink{}
	_, err := newTestLoader(sink).Run(context.Background(), tweetbench.LoadConfig{
		Source: filepath.Join(t.TempDir(), "absent.txt"),
		Mode:   tweetbench.LoadModeRow,
	})
	assert.ErrorIs(t, err, tweetbench.ErrSourceNotFound)
}

func TestLoader_InvalidConfig(t *testing.T) {
	sink := &stubSink{}
	_, err := newTestLoader(sink).Run(context.Background(), tweetbench.LoadConfig{
		Mode: tweetbench.LoadModeBatch,
	})
	assert.ErrorIs(t, err, tweetbench.ErrInvalidConfig)
}

func TestLoader_ProgressCallback(t *testing.T) {
	var lines []string
	for i := 0; i < 6; i++ {
		lines = append(lines, tweetLine(i))
	}
	sink := &stubSink{}

	var calls int
	loader := newTestLoader(sink).WithProgress(func(processed, skipped int) {
		calls++
	})
	_, err := loader.Run(context.Background(), tweetbench.LoadConfig{
		Source:    writeSource(t, lines),
		Mode:      tweetbench.LoadModeBatch,
		BatchSize: 3,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 2)
}
