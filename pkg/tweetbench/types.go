package tweetbench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// User is the author of a tweet as stored in the tweet_user table.
// Pointer fields map to nullable columns.
type User struct {
	ID           string
	Name         *string
	ScreenName   *string
	Description  *string
	FriendsCount *int64
}

// Geo is a point location referenced by a tweet.
// ID is derived from the coordinates ("<longitude>_<latitude>") so that
// repeated locations collapse onto a single row.
type Geo struct {
	ID        string
	Type      string
	Longitude float64
	Latitude  float64
}

// Tweet is a single tweet row. Immutable once parsed from its source line.
type Tweet struct {
	ID                  string
	CreatedAt           *string
	Text                *string
	Source              *string
	InReplyToUserID     *string
	InReplyToScreenName *string
	InReplyToStatusID   *string
	RetweetCount        *int64
	Contributors        *string
	UserID              string
	GeoID               *string
}

// Record is one fully parsed tweet line: the tweet, its author, and the
// optional geo reference. Geo is nil when the tweet carries no coordinates.
type Record struct {
	User  User
	Tweet Tweet
	Geo   *Geo
}

// UserAverage is one row of the per-user location aggregation, produced
// either by the SQL query surface or by the file scanners.
type UserAverage struct {
	UserID    string
	Longitude float64
	Latitude  float64
}

// LoadMode selects how parsed records are written to the store.
type LoadMode int

const (
	// LoadModeRow issues one insert statement per record.
	LoadModeRow LoadMode = iota
	// LoadModeBatch accumulates records and flushes them in a single
	// batched round-trip per BatchSize records.
	LoadModeBatch
	// LoadModeCopy stages records with the PostgreSQL COPY protocol and
	// merges them into the target tables in one statement per table.
	LoadModeCopy
)

// String returns the CLI spelling of the LoadMode.
func (m LoadMode) String() string {
	switch m {
	case LoadModeRow:
		return "row"
	case LoadModeBatch:
		return "batch"
	case LoadModeCopy:
		return "copy"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseLoadMode converts a CLI flag value into a LoadMode.
func ParseLoadMode(s string) (LoadMode, error) {
	switch s {
	case "row":
		return LoadModeRow, nil
	case "batch":
		return LoadModeBatch, nil
	case "copy":
		return LoadModeCopy, nil
	default:
		return 0, fmt.Errorf("unknown load mode %q (want row, batch, or copy): %w", s, ErrInvalidConfig)
	}
}

// LoadConfig contains all parameters needed for a load operation.
type LoadConfig struct {
	// Source is the tweet source: a local file path or an http(s) URL of a
	// newline-delimited tweet resource.
	Source string

	// Mode selects row-at-a-time, batched, or COPY-based loading.
	Mode LoadMode

	// BatchSize bounds the number of records per batched flush.
	// Ignored for LoadModeRow.
	BatchSize int

	// MaxRecords stops the load after this many parsed records.
	// Zero means load the whole source.
	MaxRecords int

	// Timeout is the global timeout for the entire load.
	Timeout time.Duration

	// Verbose enables detailed logging.
	Verbose bool
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.Source == "" {
		errs = append(errs, fmt.Errorf("Source is required: %w", ErrInvalidConfig))
	}

	if c.Mode != LoadModeRow && c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("BatchSize must be positive for %s mode: %w", c.Mode, ErrInvalidConfig))
	}

	if c.MaxRecords < 0 {
		errs = append(errs, fmt.Errorf("MaxRecords cannot be negative: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents resolved connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use.
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID parameters (used when AuthMethod is AuthMethodAzureEntraID).
	// If all three are provided, Service Principal authentication is used;
	// otherwise the DefaultAzureCredential chain applies.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name
	// (project:region:instance), required for AuthMethodGoogleIAM.
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
}

// Connector abstracts database connection establishment so that standard
// and cloud IAM authentication flows share one calling convention.
type Connector interface {
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}

// ErrorClassifier determines whether an error is transient and retryable.
type ErrorClassifier interface {
	IsTransient(err error) bool
}

// BackoffStrategy computes retry delays.
type BackoffStrategy interface {
	// NextDelay returns the delay before the given retry attempt (0-based).
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of retry attempts.
	// Negative means retry indefinitely.
	MaxAttempts() int
}
