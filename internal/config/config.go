// Package config handles loading and validation of cumulus.yaml project
// configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PostgresConfig holds database connection settings.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// IngestConfig holds SQS ingest settings.
type IngestConfig struct {
	QueueURL string `yaml:"queueUrl"`
	Region   string `yaml:"region,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

// Config represents the top-level cumulus.yaml configuration.
type Config struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Ingest   *IngestConfig  `yaml:"ingest,omitempty"`
}

// Load reads and parses cumulus.yaml from the given directory. The database
// DSN may be supplied via DATABASE_URL instead of the file.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "cumulus.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Postgres.DSN == "" {
		cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if cfg.Ingest != nil && cfg.Ingest.QueueURL == "" {
		return fmt.Errorf("ingest.queueUrl is required when ingest is configured")
	}
	return nil
}
