// Package config provides layered configuration for the ruledesc CLI:
// defaults, then ruledesc.yaml, then RULEDESC_* environment variables,
// then command-line flags.
package config

import (
	"fmt"

	"github.com/cvickery/rule-descriptions/internal/pgstore"
)

// Defaults.
const (
	DefaultDatabase   = "cuny_curriculum"
	DefaultSchema     = "public"
	DefaultStateFile  = ".ruledesc/state.db"
	DefaultAnomalyDir = "."
)

// Config holds all CLI configuration options.
type Config struct {
	// Database is the curriculum database connection.
	Database pgstore.Config `koanf:"database"`

	// Schema is the rule set to describe: public for the live rules, or
	// an archive schema name.
	Schema string `koanf:"schema"`

	// Workers bounds parallel description synthesis; 0 means one per CPU.
	Workers int `koanf:"workers"`

	// StatePath is the run-history SQLite database.
	StatePath string `koanf:"state_path"`

	// AnomalyDir is where per-run anomaly logs are written.
	AnomalyDir string `koanf:"anomaly_dir"`

	Verbose bool `koanf:"verbose"`
}

// Validate checks the decoded configuration.
func (c *Config) Validate() error {
	if c.Database.Database == "" {
		return fmt.Errorf("database name must not be empty")
	}
	if !pgstore.ValidSchemaName(c.Schema) {
		return fmt.Errorf("invalid schema name: %q", c.Schema)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}
