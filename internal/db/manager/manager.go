// Package manager provides database lifecycle operations for the benchmark
// target database: checking existence and creating it on demand.
//
// CREATE DATABASE cannot run inside a transaction, so Create acquires a
// dedicated connection from the pool. Identifiers are quoted with
// pgx.Identifier.Sanitize() to handle names with special characters.
package manager

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const queryDatabaseExists = "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"

// Manager implements database existence and creation checks.
// Stateless and safe for concurrent use.
type Manager struct{}

// New creates a new Manager instance.
func New() *Manager {
	return &Manager{}
}

// Exists checks if a database exists.
func (m *Manager) Exists(ctx context.Context, pool *pgxpool.Pool, dbName string) (bool, error) {
	var exists bool
	if err := pool.QueryRow(ctx, queryDatabaseExists, dbName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check database existence: %w", err)
	}
	return exists, nil
}

// Create creates a new database.
func (m *Manager) Create(ctx context.Context, pool *pgxpool.Pool, dbName string) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	sql := fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{dbName}.Sanitize())
	if _, err := conn.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to create database %q: %w", dbName, err)
	}
	return nil
}

// EnsureExists creates the database when it is missing. Returns true when
// the database was created by this call.
func (m *Manager) EnsureExists(ctx context.Context, pool *pgxpool.Pool, dbName string) (bool, error) {
	exists, err := m.Exists(ctx, pool, dbName)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := m.Create(ctx, pool, dbName); err != nil {
		return false, err
	}
	return true, nil
}
