package retry

import (
	"context"
	"time"

	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

// Executor orchestrates retry attempts with backoff and error classification.
//
// The Executor is safe for concurrent use when calling Execute().
// WithOnRetry() returns a NEW instance with the callback configured, so
// each caller can attach its own callback without shared state.
type Executor struct {
	classifier tweetbench.ErrorClassifier
	strategy   tweetbench.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a new retry executor.
// Panics if classifier or strategy is nil (programmer error).
func NewExecutor(classifier tweetbench.ErrorClassifier, strategy tweetbench.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
	}
}

// WithOnRetry returns a new Executor that calls the callback before each
// retry wait. The receiver is not modified.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs the operation with retry logic.
// Returns the result of the last attempt (success or fatal error).
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	lastErr := operation(ctx)
	if lastErr == nil {
		return nil
	}

	if !e.classifier.IsTransient(lastErr) {
		return lastErr
	}

	maxAttempts := e.strategy.MaxAttempts()

	for attempt := 0; maxAttempts < 0 || attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		delay := e.strategy.NextDelay(attempt)

		if e.onRetry != nil {
			e.onRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}

		if !e.classifier.IsTransient(lastErr) {
			return lastErr
		}
	}

	return lastErr
}
