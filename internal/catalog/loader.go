package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// offeringsQuery pulls the current snapshot of every catalog offering.
// Message-only and blanket-credit status are derived in SQL from the
// designation and attributes columns.
const offeringsQuery = `
SELECT institution, course_id, offer_nbr,
       discipline||' '||catalog_number AS course,
       min_credits, max_credits,
       designation IN ('MLA', 'MNL') AS is_mesg,
       attributes ~* 'bkcr' AS is_bkcr,
       course_status, career,
       requirements
  FROM cuny_courses`

// Load builds a Catalog from the current cuny_courses snapshot.
//
// Descriptions generated from this snapshot always reflect current course
// attributes, so text for archived rule sets is only approximately accurate.
// That is a documented property of the system, not something Load corrects.
func Load(ctx context.Context, db *sql.DB, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rows, err := db.QueryContext(ctx, offeringsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query course catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var offerings []Offering
	for rows.Next() {
		var (
			o                      Offering
			minCredits, maxCredits float64
			reqJSON                []byte
		)
		if err := rows.Scan(&o.Institution, &o.CourseID, &o.OfferNbr, &o.Course,
			&minCredits, &maxCredits, &o.IsMessage, &o.IsBlanket,
			&o.Status, &o.Career, &reqJSON); err != nil {
			return nil, fmt.Errorf("failed to scan course row: %w", err)
		}

		o.Credits = Credits{Value: maxCredits, Varies: minCredits != maxCredits}
		o.Requirements = decodeProfile(reqJSON, o, logger)
		offerings = append(offerings, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}

	cat := New(offerings)
	logger.Debug("catalog loaded",
		slog.Int("offerings", cat.Len()),
		slog.Int("courses", cat.Courses()))
	return cat, nil
}

// decodeProfile parses the json requirements column. NULL and malformed
// values both degrade to an absent profile.
func decodeProfile(raw []byte, o Offering, logger *slog.Logger) *RequirementProfile {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var p RequirementProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		logger.Debug("malformed requirements profile",
			slog.String("course", o.Key()), slog.String("error", err.Error()))
		return nil
	}
	return &p
}
