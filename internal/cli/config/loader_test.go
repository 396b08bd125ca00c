package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvickery/rule-descriptions/internal/pgstore"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabase, cfg.Database.Database)
	assert.Equal(t, DefaultSchema, cfg.Schema)
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.Equal(t, DefaultAnomalyDir, cfg.AnomalyDir)
	assert.Zero(t, cfg.Workers)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ruledesc.yaml")
	content := `
database:
  host: db.example.com
  port: 5433
  user: reader
schema: rules_2024_08_01
workers: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "reader", cfg.Database.User)
	assert.Equal(t, "rules_2024_08_01", cfg.Schema)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, path, GetConfigFileUsed())

	// File leaves untouched keys at their defaults.
	assert.Equal(t, DefaultDatabase, cfg.Database.Database)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ruledesc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schema: public\n"), 0o644))

	t.Setenv("RULEDESC_SCHEMA", "rules_2023_02_01")
	t.Setenv("RULEDESC_DATABASE__HOST", "env-host")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "rules_2023_02_01", cfg.Schema)
	assert.Equal(t, "env-host", cfg.Database.Host)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("RULEDESC_SCHEMA", "rules_2023_02_01")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("schema", DefaultSchema, "")
	flags.String("db-host", "", "")
	flags.Int("workers", 0, "")
	require.NoError(t, flags.Parse([]string{"--schema=rules_2024_08_01", "--db-host=flag-host"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "rules_2024_08_01", cfg.Schema)
	assert.Equal(t, "flag-host", cfg.Database.Host)
	// Unchanged flags do not clobber lower layers.
	assert.Zero(t, cfg.Workers)
}

func TestLoadExpandsEnvReferences(t *testing.T) {
	t.Setenv("CURRICULUM_PASSWORD", "s3cret")

	dir := t.TempDir()
	path := filepath.Join(dir, "ruledesc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  password: ${CURRICULUM_PASSWORD}\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Password)
}

func TestLoadInvalidSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ruledesc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schema: \"Bad;Schema\"\n"), 0o644))

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schema name")
}

func TestFlagKey(t *testing.T) {
	tests := []struct {
		flag string
		key  string
	}{
		{"db-host", "database.host"},
		{"db-port", "database.port"},
		{"db-name", "database.name"},
		{"db-user", "database.user"},
		{"db-sslmode", "database.sslmode"},
		{"state", "state_path"},
		{"anomaly-dir", "anomaly_dir"},
		{"schema", "schema"},
		{"verbose", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.key, flagKey(tt.flag))
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database: pgstore.Config{Database: DefaultDatabase},
			Schema:   "public",
		}
	}

	t.Run("valid", func(t *testing.T) {
		cfg := base()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing database name", func(t *testing.T) {
		cfg := base()
		cfg.Database.Database = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative workers", func(t *testing.T) {
		cfg := base()
		cfg.Workers = -1
		assert.Error(t, cfg.Validate())
	})
}
