package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
)

// schemaRe accepts plain SQL identifiers. The schema name is interpolated
// into the rule query, so anything else is rejected up front.
var schemaRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// rulesQueryFmt aggregates each rule's references into ordered jsonb arrays.
// The ORDER BY clauses inside jsonb_agg fix the phrase order of the
// generated descriptions, so they must not be loosened to an arbitrary
// stable order. Reads the *_u views created by pgstore.EnsureUnifiedViews.
const rulesQueryFmt = `
WITH
sc AS (
  SELECT rule_key,
         jsonb_agg(
           jsonb_build_object(
             'course_id', course_id,
             'offer_nbr', offer_nbr,
             'min_gpa',   min_gpa
           )
           ORDER BY course_id, offer_nbr, coalesce(min_gpa, 0.0)
         ) AS source_courses
    FROM %[1]s.source_courses_u
   GROUP BY rule_key
),
dc AS (
  SELECT rule_key,
         jsonb_agg(
           jsonb_build_object(
             'course_id', course_id,
             'offer_nbr', offer_nbr
           )
           ORDER BY course_id, offer_nbr
         ) AS destination_courses
    FROM %[1]s.destination_courses_u
   GROUP BY rule_key
)
SELECT r.rule_key,
       r.effective_date::text,
       coalesce(sc.source_courses, '[]'::jsonb)      AS source_courses,
       coalesce(dc.destination_courses, '[]'::jsonb) AS destination_courses
  FROM %[1]s.transfer_rules r
  LEFT JOIN sc USING (rule_key)
  LEFT JOIN dc USING (rule_key)
 ORDER BY r.rule_key`

// Load reads every transfer rule in the schema, with reference lists in
// canonical order. A duplicate rule key is an input-contract violation and
// fails the load; rule keys are assumed unique.
func Load(ctx context.Context, db *sql.DB, schema string, logger *slog.Logger) ([]Rule, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if !schemaRe.MatchString(schema) {
		return nil, fmt.Errorf("invalid schema name: %q", schema)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(rulesQueryFmt, schema))
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		all  []Rule
		seen = make(map[string]struct{})
	)
	for rows.Next() {
		var (
			r                Rule
			srcJSON, dstJSON []byte
		)
		if err := rows.Scan(&r.Key, &r.EffectiveDate, &srcJSON, &dstJSON); err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		if _, dup := seen[r.Key]; dup {
			return nil, fmt.Errorf("duplicate rule key %q in rule stream", r.Key)
		}
		seen[r.Key] = struct{}{}

		if err := json.Unmarshal(srcJSON, &r.Sources); err != nil {
			return nil, fmt.Errorf("rule %s: failed to decode source courses: %w", r.Key, err)
		}
		if err := json.Unmarshal(dstJSON, &r.Destinations); err != nil {
			return nil, fmt.Errorf("rule %s: failed to decode destination courses: %w", r.Key, err)
		}

		// The query already orders references; guard against drift in the
		// view definitions.
		r.SortRefs()
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule rows: %w", err)
	}

	logger.Debug("rules loaded", slog.String("schema", schema), slog.Int("count", len(all)))
	return all, nil
}
