package tweetbench

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Operation completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitFetchError      = 12 // Failed to fetch the remote tweet resource
	ExitExecutionFailed = 13 // SQL execution failed
	ExitSourceMissing   = 14 // Tweet source file not found
)

const (
	// DefaultBatchSize is the number of records accumulated before a
	// batched insert is flushed to the database.
	DefaultBatchSize = 2000

	// DefaultIterations is the default iteration count for timed runs.
	DefaultIterations = 5

	// DefaultFetchCount is the default number of tweet lines pulled from
	// the remote resource when --count is not given.
	DefaultFetchCount = 110000

	// DefaultRetryInitialDelay is the default initial delay before the first
	// connection retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultManagementDB is the default database to connect to for
	// management operations such as CREATE DATABASE.
	DefaultManagementDB = "postgres"
)
