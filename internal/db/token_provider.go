package db

import (
	"context"
	"time"
)

// TokenProvider acquires short-lived credentials for cloud-hosted benchmark
// targets. The token stands in for the password on the PostgreSQL wire, so
// running against RDS or Azure Database for PostgreSQL needs no stored
// secret.
type TokenProvider interface {
	// GetToken returns a fresh token and its expiry. Called on every
	// connection attempt so retries never hand pgx a stale token.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String identifies the provider in log and warning output.
	// Must not leak secrets.
	String() string
}

// AzurePostgreSQLScope is the OAuth scope Azure AD issues tokens under for
// Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"
