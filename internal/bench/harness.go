// Package bench times repeated runs of load and query operations and
// renders the collected samples as a report.
package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

// Sample is one timed iteration of an operation.
type Sample struct {
	Iteration int
	Elapsed   time.Duration
}

// Result aggregates the samples of one labeled operation.
type Result struct {
	Label   string
	Samples []Sample
	Total   time.Duration
}

// Mean returns the average elapsed time per iteration.
func (r *Result) Mean() time.Duration {
	if len(r.Samples) == 0 {
		return 0
	}
	return r.Total / time.Duration(len(r.Samples))
}

// Min returns the fastest sample.
func (r *Result) Min() time.Duration {
	var min time.Duration
	for i, s := range r.Samples {
		if i == 0 || s.Elapsed < min {
			min = s.Elapsed
		}
	}
	return min
}

// Max returns the slowest sample.
func (r *Result) Max() time.Duration {
	var max time.Duration
	for _, s := range r.Samples {
		if s.Elapsed > max {
			max = s.Elapsed
		}
	}
	return max
}

// Run executes fn the given number of times under the wall clock and
// returns one sample per iteration. The first error aborts the run;
// samples collected so far are returned alongside it.
func Run(ctx context.Context, label string, iterations int, fn func(ctx context.Context) error) (*Result, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d: %w", iterations, tweetbench.ErrInvalidConfig)
	}

	res := &Result{Label: label, Samples: make([]Sample, 0, iterations)}
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("run %q interrupted at iteration %d: %w", label, i, err)
		}

		start := time.Now()
		err := fn(ctx)
		elapsed := time.Since(start)
		if err != nil {
			return res, fmt.Errorf("run %q failed at iteration %d: %w", label, i, err)
		}

		res.Samples = append(res.Samples, Sample{Iteration: i, Elapsed: elapsed})
		res.Total += elapsed
	}
	return res, nil
}
