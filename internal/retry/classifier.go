package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes for transient conditions.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	// Class 40 - Transaction Rollback
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"

	// Class 55 - Object Not In Prerequisite State
	pgCodeLockNotAvailable = "55P03"
)

// PostgreSQLErrorClassifier implements tweetbench.ErrorClassifier for
// PostgreSQL and network-level errors.
type PostgreSQLErrorClassifier struct{}

// NewPostgreSQLErrorClassifier creates a new PostgreSQL error classifier.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
// Context cancellation is never transient.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientPgError(pgErr)
	}

	return isNetworkError(err) || isConnectionError(err)
}

func isTransientPgError(pgErr *pgconn.PgError) bool {
	code := pgErr.Code

	// Class 08 (connection exception), 53 (insufficient resources) and
	// 57 (operator intervention) are transient as a class.
	if strings.HasPrefix(code, "08") ||
		strings.HasPrefix(code, "53") ||
		strings.HasPrefix(code, "57") {
		return true
	}

	switch code {
	case pgCodeSerializationFailure, pgCodeDeadlockDetected, pgCodeLockNotAvailable:
		return true
	}

	return false
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT)
}

func isConnectionError(err error) bool {
	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"failed to connect",
		"i/o timeout",
		"unexpected eof",
	} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
