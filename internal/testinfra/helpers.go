package testinfra

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnvTestDatabaseURL points integration tests at an existing database,
// bypassing the container start.
const EnvTestDatabaseURL = "TWEETBENCH_TEST_DATABASE_URL"

// SkipIfShort skips integration tests under `go test -short`.
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// RequirePool returns a pool against a test database, starting a disposable
// container unless TWEETBENCH_TEST_DATABASE_URL is set. Cleanup is
// registered on the test.
func RequirePool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	SkipIfShort(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	connStr := os.Getenv(EnvTestDatabaseURL)
	if connStr == "" {
		ctr, err := StartPostgres(ctx)
		if err != nil {
			t.Fatalf("Failed to start postgres container: %v", err)
		}
		t.Cleanup(func() {
			_ = ctr.Terminate(context.Background())
		})
		connStr = ctr.ConnString
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}
