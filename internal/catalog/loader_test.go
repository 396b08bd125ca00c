package catalog

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvickery/rule-descriptions/internal/testutil"
)

var loaderColumns = []string{
	"institution", "course_id", "offer_nbr", "course",
	"min_credits", "max_credits", "is_mesg", "is_bkcr",
	"course_status", "career", "requirements",
}

func TestLoad(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows(loaderColumns).
		AddRow("QNS01", 100, 1, "ENGL 101", 3.0, 3.0, false, false, "A", "UGRD",
			[]byte(`{"pways":"EC","copt":false,"equiv":[],"plans":["BA-ENGL"]}`)).
		AddRow("QNS01", 100, 2, "ENGL 101H", 3.0, 3.0, false, false, "A", "UGRD", nil).
		AddRow("QNS01", 200, 1, "BIOL 999", 1.0, 6.0, true, true, "A", "UGRD",
			[]byte(`null`))

	mock.ExpectQuery("SELECT institution, course_id, offer_nbr").WillReturnRows(rows)

	cat, err := Load(context.Background(), db, testutil.NewTestLogger(t))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 3, cat.Len())
	assert.Equal(t, 2, cat.Courses())

	res := cat.Resolve(100, 1)
	require.True(t, res.Found())
	assert.Equal(t, "ENGL 101", res.Offering.Course)
	require.NotNil(t, res.Offering.Requirements)
	assert.Equal(t, "EC", res.Offering.Requirements.Pathways)
	assert.Equal(t, []string{"BA-ENGL"}, res.Offering.Requirements.Plans)
	assert.Equal(t, "3", res.Offering.Credits.String())

	// NULL and json-null requirements both mean an absent profile.
	assert.Nil(t, cat.Resolve(100, 2).Offering.Requirements)
	assert.Nil(t, cat.Resolve(200, 1).Offering.Requirements)

	varies := cat.Resolve(200, 1).Offering
	assert.True(t, varies.IsMessage)
	assert.True(t, varies.IsBlanket)
	assert.Equal(t, "varies", varies.Credits.String())
}

func TestLoadMalformedProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows(loaderColumns).
		AddRow("QNS01", 100, 1, "ENGL 101", 3.0, 3.0, false, false, "A", "UGRD",
			[]byte(`{not json`))
	mock.ExpectQuery("SELECT institution").WillReturnRows(rows)

	cat, err := Load(context.Background(), db, testutil.NewTestLogger(t))
	require.NoError(t, err)

	// Malformed profiles degrade to absent, they do not fail the load.
	assert.Nil(t, cat.Resolve(100, 1).Offering.Requirements)
}

func TestLoadQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT institution").WillReturnError(assert.AnError)

	_, err = Load(context.Background(), db, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query course catalog")
}
