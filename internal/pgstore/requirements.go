package pgstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cvickery/rule-descriptions/internal/catalog"
)

// plansSep separates aggregated plan names; the unit separator cannot
// appear in a plan name.
const plansSep = "\x1f"

// requirementSourcesQuery pulls, for every active undergraduate offering,
// the raw attributes a RequirementProfile is derived from, plus the
// academic plans that reference the offering in dgw.courses.
const requirementSourcesQuery = `
SELECT
  c.course_id,
  c.offer_nbr,
  coalesce(c.designation, ''),
  coalesce(c.attributes, ''),
  coalesce(
    array_to_string(
      array_agg(DISTINCT dc.plan ORDER BY dc.plan) FILTER (WHERE dc.plan IS NOT NULL),
      chr(31)),
    '') AS plans
FROM cuny_courses AS c
LEFT JOIN dgw.courses AS dc
  ON c.course_id = split_part(dc.course_id, ':', 1)::int
 AND c.offer_nbr = split_part(dc.course_id, ':', 2)::int
WHERE c.career = 'UGRD'
  AND c.course_status = 'A'
GROUP BY c.course_id, c.offer_nbr, c.designation, c.attributes`

// EnsureRequirementsColumn adds the json requirements column to
// cuny_courses if it is missing.
func (s *Store) EnsureRequirementsColumn(ctx context.Context) error {
	const ddl = `alter table cuny_courses add column if not exists requirements json`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to add requirements column: %w", err)
	}
	return nil
}

// RefreshRequirements derives a RequirementProfile for every active
// undergraduate offering and writes it back to the requirements column.
// Returns the number of offerings updated.
func (s *Store) RefreshRequirements(ctx context.Context) (int, error) {
	if err := s.EnsureRequirementsColumn(ctx); err != nil {
		return 0, err
	}

	rows, err := s.db.QueryContext(ctx, requirementSourcesQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to query requirement sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type update struct {
		courseID, offerNbr int
		profile            []byte
	}
	var updates []update

	for rows.Next() {
		var (
			courseID, offerNbr              int
			designation, attributes, plansS string
		)
		if err := rows.Scan(&courseID, &offerNbr, &designation, &attributes, &plansS); err != nil {
			return 0, fmt.Errorf("failed to scan requirement source row: %w", err)
		}

		var plans []string
		if plansS != "" {
			plans = strings.Split(plansS, plansSep)
		} else {
			plans = []string{}
		}

		profile := catalog.DeriveProfile(designation, attributes, plans)
		encoded, err := json.Marshal(profile)
		if err != nil {
			return 0, fmt.Errorf("failed to encode profile for %06d:%d: %w", courseID, offerNbr, err)
		}
		updates = append(updates, update{courseID, offerNbr, encoded})
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating requirement sources: %w", err)
	}

	const updateSQL = `update cuny_courses set requirements = $1
	  where course_id = $2 and offer_nbr = $3`
	for _, u := range updates {
		if _, err := s.db.ExecContext(ctx, updateSQL, u.profile, u.courseID, u.offerNbr); err != nil {
			return 0, fmt.Errorf("failed to update requirements for %06d:%d: %w",
				u.courseID, u.offerNbr, err)
		}
	}

	s.logger.Debug("requirements refreshed", slog.Int("offerings", len(updates)))
	return len(updates), nil
}
