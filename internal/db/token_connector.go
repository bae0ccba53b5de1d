package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kvellian/tweetbench/internal/retry"
	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

// tokenExpiryWarning is how close to expiry a token may be before Connect
// warns. A load that outlives its token fails mid-run with an opaque
// authentication error, so the warning fires up front.
const tokenExpiryWarning = 5 * time.Minute

// TokenBasedConnector establishes pools against cloud-hosted targets that
// authenticate with short-lived tokens (AWS RDS IAM, Azure Entra ID). The
// token is acquired from a TokenProvider and sent as the password.
type TokenBasedConnector struct {
	config        *tweetbench.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
}

// NewTokenBasedConnector wires a TokenProvider into the standard retrying
// connect flow. providerName labels warnings and errors ("AWS IAM", "Azure").
func NewTokenBasedConnector(config *tweetbench.ConnectionConfig, tokenProvider TokenProvider, providerName string) *TokenBasedConnector {
	classifier := retry.NewPostgreSQLErrorClassifier()
	strategy := retry.NewExponentialBackoff(tweetbench.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(tweetbench.DefaultRetryInitialDelay),
		retry.WithMaxDelay(tweetbench.DefaultRetryMaxDelay),
	)

	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: retry.NewExecutor(classifier, strategy),
		providerName:  providerName,
	}
}

// Connect acquires a token and establishes the pool, retrying transient
// failures with a fresh token per attempt.
func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}

		// Stdout carries benchmark results; warnings go to stderr.
		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			fmt.Fprintf(os.Stderr, "Warning: %s token expires in %v\n", c.providerName, remaining.Round(time.Second))
		}

		configWithToken := *c.config
		configWithToken.Password = token

		poolConfig, err := pgxpool.ParseConfig(BuildConnectionString(&configWithToken))
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w", err)
		}

		configurePool(poolConfig)

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return pool, nil
}
