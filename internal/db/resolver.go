package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kvellian/tweetbench/internal/config"
	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Note: Password is NOT included as a CLI flag for security reasons.
// Use one of these methods instead:
//  1. $PGPASSWORD environment variable
//  2. .pgpass file (PostgreSQL standard)
//  3. Connection string with embedded password
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were provided by the user.
// The Database flag is excluded from this check because it can be used to override
// the database specified in a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// AzureFlags represents Azure Entra ID CLI flags.
// These override the corresponding AZURE_* environment variables.
// Note: Client secret is NOT included as a CLI flag for security reasons.
// Use AZURE_CLIENT_SECRET environment variable instead.
type AzureFlags struct {
	TenantID string // Overrides AZURE_TENANT_ID
	ClientID string // Overrides AZURE_CLIENT_ID
}

// IsEmpty returns true if no Azure flags were provided.
func (a *AzureFlags) IsEmpty() bool {
	return a == nil || (a.TenantID == "" && a.ClientID == "")
}

// EnvVars represents PostgreSQL standard environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string // PostgreSQL server host
	PGPORT       string // PostgreSQL server port
	PGUSER       string // PostgreSQL username
	PGPASSWORD   string // PostgreSQL password (discouraged, use .pgpass instead)
	PGDATABASE   string // Default database name
	PGSSLMODE    string // SSL mode
	DATABASE_URL string // Full connection string (Heroku/Rails convention)

	// Azure Entra ID environment variables (Azure SDK standard names)
	AZURE_TENANT_ID     string // Azure AD tenant/directory ID
	AZURE_CLIENT_ID     string // Azure AD application/client ID
	AZURE_CLIENT_SECRET string // Azure AD client secret (for Service Principal auth)
}

// LoadFromEnvironment loads PostgreSQL and cloud provider environment variables.
// This follows standard PostgreSQL client behavior and Azure SDK conventions.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// HasAzureCredentials returns true if Azure Entra ID environment variables are set.
func (e *EnvVars) HasAzureCredentials() bool {
	return e.AZURE_TENANT_ID != "" || e.AZURE_CLIENT_ID != ""
}

// ResolveConnectionParams resolves connection parameters using PostgreSQL-standard precedence:
//
//  1. Connection string flag (--connection) - if provided, parse and use directly
//  2. Granular flags (-h, -p, -U, -d) - if any provided, build config from flags
//  3. Environment variables (PGHOST, PGPORT, etc.) - fallback if no flags
//  4. DATABASE_URL environment variable - fallback if no granular params
//  5. tweetbench.yaml connection section - project defaults
//  6. Defaults (localhost:5432, prefer SSL, the "postgres" database)
//
// Azure Entra ID Authentication:
// If azureFlags are provided OR Azure environment variables are set (AZURE_TENANT_ID, etc.),
// the AuthMethod is set to AzureEntraID and credentials are attached to the config.
// CLI flags take precedence over environment variables.
//
// Conflict Detection:
// Returns an error if BOTH --connection AND granular flags are provided.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	azureFlags *AzureFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*tweetbench.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if azureFlags == nil {
		azureFlags = &AzureFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U)\n" +
				"Choose one approach:\n" +
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/tweets\"\n" +
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d tweets\n" +
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser",
		)
	}

	var cfg *tweetbench.ConnectionConfig
	var err error

	if connStringFlag != "" {
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	} else if granularFlags.IsEmpty() && envVars.DATABASE_URL != "" {
		cfg, err = resolveFromConnectionString(envVars.DATABASE_URL, envVars)
	} else {
		cfg, err = resolveFromGranularParams(granularFlags, envVars, projectConfig)
	}

	if err != nil {
		return nil, err
	}

	// A -d flag overrides the database from any source.
	if granularFlags.Database != "" {
		cfg.Database = granularFlags.Database
	}

	applyCloudAuth(cfg, azureFlags, envVars, projectConfig)

	return cfg, nil
}

// applyCloudAuth sets cloud IAM authentication on the config when credentials
// are configured. CLI flags take precedence over environment variables, which
// take precedence over tweetbench.yaml.
func applyCloudAuth(cfg *tweetbench.ConnectionConfig, flags *AzureFlags, env *EnvVars, projectConfig *config.ProjectConfig) {
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	// Azure: flag > env var > yaml
	tenantID := flags.TenantID
	if tenantID == "" {
		tenantID = env.AZURE_TENANT_ID
	}
	if tenantID == "" {
		tenantID = pc.AzureTenantID
	}

	clientID := flags.ClientID
	if clientID == "" {
		clientID = env.AZURE_CLIENT_ID
	}
	if clientID == "" {
		clientID = pc.AzureClientID
	}

	if tenantID != "" || clientID != "" {
		cfg.AuthMethod = tweetbench.AuthMethodAzureEntraID
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		// Client secret only comes from the environment (no flag for security).
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
		return
	}

	switch pc.AuthMethod {
	case "aws-iam":
		cfg.AuthMethod = tweetbench.AuthMethodAWSIAM
		cfg.AWSRegion = pc.AWSRegion
		if cfg.AWSRegion == "" {
			cfg.AWSRegion = os.Getenv("AWS_REGION")
		}
	case "google-iam":
		cfg.AuthMethod = tweetbench.AuthMethodGoogleIAM
		cfg.GoogleInstance = pc.GoogleInstance
	}
}

// resolveFromConnectionString parses a connection string into a config.
//
// Environment variables are applied as fallbacks for parameters not specified
// in the connection string (following PostgreSQL standard behavior).
func resolveFromConnectionString(connStr string, envVars *EnvVars) (*tweetbench.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	if cfg.SSLMode == "" && envVars != nil && envVars.PGSSLMODE != "" {
		cfg.SSLMode = envVars.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}

	return cfg, nil
}

// resolveFromGranularParams builds a ConnectionConfig from granular flags,
// environment variables, and the project config.
//
// Precedence for each parameter (following PostgreSQL standards):
//  1. CLI flag (highest priority)
//  2. Environment variable
//  3. tweetbench.yaml
//  4. Default value (lowest priority)
func resolveFromGranularParams(
	flags *GranularConnFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*tweetbench.ConnectionConfig, error) {
	cfg := &tweetbench.ConnectionConfig{
		AuthMethod:       tweetbench.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	// Host: flag > PGHOST > tweetbench.yaml > default
	cfg.Host = flags.Host
	if cfg.Host == "" {
		cfg.Host = envVars.PGHOST
	}
	if cfg.Host == "" {
		cfg.Host = pc.Host
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}

	// Port: flag > PGPORT > tweetbench.yaml > default
	if flags.Port != 0 {
		cfg.Port = flags.Port
	} else if envVars.PGPORT != "" {
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer", envVars.PGPORT)
		}
		cfg.Port = port
	} else if pc.Port != 0 {
		cfg.Port = pc.Port
	} else {
		cfg.Port = 5432
	}

	// Username: flag > PGUSER > tweetbench.yaml > current OS user
	cfg.Username = flags.Username
	if cfg.Username == "" {
		cfg.Username = envVars.PGUSER
	}
	if cfg.Username == "" {
		cfg.Username = pc.Username
	}
	if cfg.Username == "" {
		if currentUser := os.Getenv("USER"); currentUser != "" {
			cfg.Username = currentUser
		} else if currentUser := os.Getenv("USERNAME"); currentUser != "" {
			cfg.Username = currentUser
		}
	}

	cfg.Password = envVars.PGPASSWORD

	// Database: flag > PGDATABASE > tweetbench.yaml > default
	cfg.Database = flags.Database
	if cfg.Database == "" {
		cfg.Database = envVars.PGDATABASE
	}
	if cfg.Database == "" {
		cfg.Database = pc.Database
	}
	if cfg.Database == "" {
		cfg.Database = tweetbench.DefaultManagementDB
	}

	// SSLMode: flag > PGSSLMODE > tweetbench.yaml > default
	cfg.SSLMode = flags.SSLMode
	if cfg.SSLMode == "" {
		cfg.SSLMode = envVars.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = pc.SSLMode
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}

	return cfg, nil
}
