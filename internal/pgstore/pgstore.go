// Package pgstore holds the PostgreSQL plumbing around the description
// engine: connecting to the curriculum database, maintaining the helper
// views the rule queries read, and bulk-loading generated descriptions.
package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver
)

// Config holds the PostgreSQL connection settings.
type Config struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"name"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	SSLMode  string `koanf:"sslmode"`
}

// identRe accepts plain SQL identifiers. Schema names are interpolated into
// DDL, so anything else is rejected up front.
var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidSchemaName reports whether name is safe to use as a schema name.
func ValidSchemaName(name string) bool {
	return identRe.MatchString(name)
}

// BuildDSN constructs a key=value PostgreSQL connection string.
func BuildDSN(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", host, port, cfg.Database, sslmode)
	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	return dsn
}

// Store wraps the database handle used by the loaders and writers.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Connect opens and pings a connection to the curriculum database.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	logger.Debug("connecting to postgres",
		slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", BuildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// NewWithDB wraps an existing handle. Used by tests.
func NewWithDB(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{db: db, logger: logger}
}

// DB exposes the underlying handle for the catalog and rule loaders.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SchemaExists reports whether the named schema exists. The description run
// treats a missing schema as fatal before doing any work.
func (s *Store) SchemaExists(ctx context.Context, schema string) (bool, error) {
	const q = `SELECT 1 FROM information_schema.schemata WHERE schema_name = $1`
	var one int
	err := s.db.QueryRowContext(ctx, q, schema).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check schema %s: %w", schema, err)
	}
	return true, nil
}

// TableExists reports whether a table exists in a schema. Used by doctor.
func (s *Store) TableExists(ctx context.Context, schema, table string) (bool, error) {
	const q = `SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2`
	var one int
	err := s.db.QueryRowContext(ctx, q, schema, table).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check table %s.%s: %w", schema, table, err)
	}
	return true, nil
}

// EnsureUnifiedViews (re)creates the source_courses_u and
// destination_courses_u views the rule queries read. The public schema
// keys its course tables by rule_id and needs a join through
// transfer_rules; archive schemas carry rule_key directly.
func (s *Store) EnsureUnifiedViews(ctx context.Context, schema string) error {
	if !ValidSchemaName(schema) {
		return fmt.Errorf("invalid schema name: %q", schema)
	}

	var ddl string
	if schema == "public" {
		ddl = `
		create or replace view public.source_courses_u as
		  select tr.rule_key,
		         sc.course_id, sc.offer_nbr, sc.max_credits, sc.min_gpa
		  from   public.source_courses sc
		  join   public.transfer_rules tr on tr.id = sc.rule_id;

		create or replace view public.destination_courses_u as
		  select tr.rule_key,
		         dc.course_id, dc.offer_nbr
		  from   public.destination_courses dc
		  join   public.transfer_rules tr on tr.id = dc.rule_id;
		`
	} else {
		ddl = fmt.Sprintf(`
		create or replace view %[1]s.source_courses_u as
		  select rule_key, course_id, offer_nbr, max_credits, min_gpa
		  from   %[1]s.source_courses;

		create or replace view %[1]s.destination_courses_u as
		  select rule_key, course_id, offer_nbr
		  from   %[1]s.destination_courses;
		`, schema)
	}

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create unified views in %s: %w", schema, err)
	}
	s.logger.Debug("unified views ready", slog.String("schema", schema))
	return nil
}
