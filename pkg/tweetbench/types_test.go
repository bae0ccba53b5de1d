package tweetbench

import (
	"errors"
	"fmt"
	"testing"
)

func TestLoadConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  LoadConfig
		wantErr bool
	}{
		{
			name:   "valid row mode",
			config: LoadConfig{Source: "tweets.txt", Mode: LoadModeRow},
		},
		{
			name:   "valid batch mode",
			config: LoadConfig{Source: "tweets.txt", Mode: LoadModeBatch, BatchSize: 2000},
		},
		{
			name:   "valid copy mode with cap",
			config: LoadConfig{Source: "http://example.com/tweets.txt", Mode: LoadModeCopy, BatchSize: 500, MaxRecords: 110000},
		},
		{
			name:    "missing source",
			config:  LoadConfig{Mode: LoadModeRow},
			wantErr: true,
		},
		{
			name:    "batch mode without batch size",
			config:  LoadConfig{Source: "tweets.txt", Mode: LoadModeBatch},
			wantErr: true,
		},
		{
			name:    "negative max records",
			config:  LoadConfig{Source: "tweets.txt", Mode: LoadModeRow, MaxRecords: -1},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			config:  LoadConfig{Source: "tweets.txt", Mode: LoadModeRow, Timeout: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected validation error, got nil")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("Expected ErrInvalidConfig, got: %v", err)
				}
			} else if err != nil {
				t.Fatalf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestParseLoadMode(t *testing.T) {
	tests := []struct {
		input   string
		want    LoadMode
		wantErr bool
	}{
		{"row", LoadModeRow, false},
		{"batch", LoadModeBatch, false},
		{"copy", LoadModeCopy, false},
		{"", 0, true},
		{"bulk", 0, true},
		{"Batch", 0, true},
	}

	for _, tt := range tests {
		t.Run("input="+tt.input, func(t *testing.T) {
			got, err := ParseLoadMode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tt.input)
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("Expected ErrInvalidConfig, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			if got.String() != tt.input {
				t.Fatalf("Round-trip mismatch: %v -> %q", got, got.String())
			}
		})
	}
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"invalid config", ErrInvalidConfig, ExitConfigError},
		{"wrapped invalid config", fmt.Errorf("Source is required: %w", ErrInvalidConfig), ExitConfigError},
		{"connection failed", ErrConnectionFailed, ExitConnectionError},
		{"fetch failed", ErrFetchFailed, ExitFetchError},
		{"execution failed", ErrExecutionFailed, ExitExecutionFailed},
		{"source missing", ErrSourceNotFound, ExitSourceMissing},
		{"unsupported auth", ErrUnsupportedAuthMethod, ExitConfigError},
		{"unknown flag", errors.New("unknown flag: --foo"), ExitUsageError},
		{"unknown shorthand flag", errors.New("unknown shorthand flag: 'x' in -x"), ExitUsageError},
		{"accepts args", errors.New("accepts at most 1 arg(s), received 2"), ExitUsageError},
		{"invalid argument", errors.New(`invalid argument "abc" for "--port"`), ExitUsageError},
		{"connection pattern", errors.New("dial tcp: connection refused"), ExitConnectionError},
		{"unknown", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeForError(tt.err); got != tt.want {
				t.Fatalf("Expected exit code %d, got %d", tt.want, got)
			}
		})
	}
}
