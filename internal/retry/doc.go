// Package retry provides retry orchestration for transient database and
// network failures during connection establishment.
//
// The three pieces compose: a classifier decides whether an error is worth
// retrying, a backoff strategy decides how long to wait, and the executor
// drives the loop while honoring context cancellation.
//
// Statement execution during a load is deliberately not retried; a failed
// insert aborts the load and surfaces the error.
package retry
