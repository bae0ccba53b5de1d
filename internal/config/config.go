package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// SourceConfig names the tweet sources used when the CLI flags leave them out.
type SourceConfig struct {
	URL  string `yaml:"url,omitempty"`
	File string `yaml:"file,omitempty"`
}

type LoadConfig struct {
	BatchSize int `yaml:"batch_size,omitempty"`
}

// BenchConfig drives the comparison matrix: record counts per load scenario
// and iteration counts for the timed query/scan runs.
type BenchConfig struct {
	Counts     []int `yaml:"counts,omitempty"`
	Iterations []int `yaml:"iterations,omitempty"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Source     SourceConfig     `yaml:"source"`
	Load       LoadConfig       `yaml:"load"`
	Bench      BenchConfig      `yaml:"bench"`
	Timeout    string           `yaml:"timeout"`
}

const ConfigFileName = "tweetbench.yaml"

func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
