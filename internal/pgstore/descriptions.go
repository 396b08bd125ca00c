package pgstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/cvickery/rule-descriptions/internal/rules"
)

// ReplaceDescriptionsTable drops and recreates <schema>.rule_descriptions.
// The table is fully derived, so every run rebuilds it from scratch.
func (s *Store) ReplaceDescriptionsTable(ctx context.Context, schema string) error {
	if !ValidSchemaName(schema) {
		return fmt.Errorf("invalid schema name: %q", schema)
	}

	ddl := fmt.Sprintf(`
	drop table if exists %[1]s.rule_descriptions;
	create table %[1]s.rule_descriptions (
	  rule_key       text primary key,
	  effective_date text,
	  description    text
	)`, schema)

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to recreate %s.rule_descriptions: %w", schema, err)
	}
	return nil
}

// CopyDescriptions bulk-loads descriptions into <schema>.rule_descriptions
// using COPY FROM STDIN through the raw pgx connection.
func (s *Store) CopyDescriptions(ctx context.Context, schema string, descs []rules.Description) error {
	if !ValidSchemaName(schema) {
		return fmt.Errorf("invalid schema name: %q", schema)
	}

	buf, err := encodeDescriptions(descs)
	if err != nil {
		return err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	copySQL := fmt.Sprintf(
		"COPY %s.rule_descriptions (rule_key, effective_date, description) FROM STDIN WITH (FORMAT csv)",
		schema)

	err = conn.Raw(func(driverConn any) error {
		pgxConn := driverConn.(*stdlib.Conn).Conn()
		_, err := pgxConn.PgConn().CopyFrom(ctx, bytes.NewReader(buf.Bytes()), copySQL)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to copy descriptions into %s: %w", schema, err)
	}

	s.logger.Debug("descriptions loaded",
		slog.String("schema", schema), slog.Int("count", len(descs)))
	return nil
}

// encodeDescriptions renders descriptions as the CSV stream COPY consumes.
func encodeDescriptions(descs []rules.Description) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, d := range descs {
		if err := w.Write([]string{d.RuleKey, d.EffectiveDate, d.Text}); err != nil {
			return nil, fmt.Errorf("failed to encode description %s: %w", d.RuleKey, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to encode descriptions: %w", err)
	}
	return &buf, nil
}

// TouchUpdates stamps the public updates table so downstream consumers can
// see when rule_descriptions was last rebuilt. Only meaningful for the
// public schema.
func (s *Store) TouchUpdates(ctx context.Context, day time.Time) error {
	const q = `update updates set update_date = $1 where table_name = 'rule_descriptions'`
	if _, err := s.db.ExecContext(ctx, q, day.Format("2006-01-02")); err != nil {
		return fmt.Errorf("failed to stamp updates table: %w", err)
	}
	return nil
}
