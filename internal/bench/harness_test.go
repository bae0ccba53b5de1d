package bench

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

func TestRun_CollectsOneSamplePerIteration(t *testing.T) {
	var calls int
	res, err := Run(context.Background(), "noop", 5, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 5, calls)
	assert.Equal(t, "noop", res.Label)
	require.Len(t, res.Samples, 5)
	for i, s := range res.Samples {
		assert.Equal(t, i, s.Iteration)
	}
}

func TestRun_TotalIsSumOfSamples(t *testing.T) {
	res, err := Run(context.Background(), "sleep", 3, func(context.Context) error {
		time.Sleep(time.Millisecond)
		return nil
	})
	require.NoError(t, err)

	var sum time.Duration
	for _, s := range res.Samples {
		sum += s.Elapsed
	}
	assert.Equal(t, sum, res.Total)
	assert.GreaterOrEqual(t, res.Mean(), time.Millisecond)
	assert.LessOrEqual(t, res.Min(), res.Max())
}

func TestRun_AbortsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	res, err := Run(context.Background(), "failing", 10, func(context.Context) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
	assert.Len(t, res.Samples, 2)
}

func TestRun_RejectsNonPositiveIterations(t *testing.T) {
	_, err := Run(context.Background(), "bad", 0, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, tweetbench.ErrInvalidConfig)
}

func TestRun_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	res, err := Run(ctx, "cancelled", 100, func(context.Context) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
	assert.Len(t, res.Samples, 2)
}

func TestResult_MeanOfEmptyResultIsZero(t *testing.T) {
	res := &Result{Label: "empty"}
	assert.Equal(t, time.Duration(0), res.Mean())
	assert.Equal(t, time.Duration(0), res.Min())
	assert.Equal(t, time.Duration(0), res.Max())
}

func TestReport_RenderListsEveryResult(t *testing.T) {
	report := NewReport()
	report.Add(&Result{
		Label:   "load row mode",
		Samples: []Sample{{Iteration: 0, Elapsed: 2 * time.Second}},
		Total:   2 * time.Second,
	})
	report.Add(&Result{
		Label: "query user averages",
		Samples: []Sample{
			{Iteration: 0, Elapsed: 10 * time.Millisecond},
			{Iteration: 1, Elapsed: 20 * time.Millisecond},
		},
		Total: 30 * time.Millisecond,
	})

	out := report.Render()
	assert.Contains(t, out, report.RunID.String())
	assert.Contains(t, out, "load row mode")
	assert.Contains(t, out, "query user averages")
	assert.Contains(t, out, "15ms") // mean of the two query samples

	// One header line plus one line per result.
	lines := strings.Count(strings.TrimRight(out, "\n"), "\n") + 1
	assert.GreaterOrEqual(t, lines, 4)
}
