package tweetbench

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := loader.Load(ctx, opts)
//	if errors.Is(err, tweetbench.ErrConnectionFailed) {
//	    // Handle an unreachable database
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrFetchFailed indicates the remote tweet resource could not be fetched.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrExecutionFailed indicates SQL execution failed.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrSourceNotFound indicates the tweet source file was not found.
	ErrSourceNotFound = errors.New("tweet source not found")

	// ErrMalformedRecord indicates a line could not be decoded as a tweet.
	// Loaders skip and count these; callers only see it from direct parsing.
	ErrMalformedRecord = errors.New("malformed tweet record")

	// ErrUnsupportedAuthMethod indicates the requested authentication method
	// is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrFetchFailed):
		return ExitFetchError
	case errors.Is(err, ErrExecutionFailed):
		return ExitExecutionFailed
	case errors.Is(err, ErrSourceNotFound):
		return ExitSourceMissing
	}

	// Cobra reports usage problems as plain error strings
	errStr := err.Error()
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "invalid argument") ||
		(strings.Contains(errStr, "accepts") && strings.Contains(errStr, "arg")) {
		return ExitUsageError
	}

	// Check for common connection error patterns
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
