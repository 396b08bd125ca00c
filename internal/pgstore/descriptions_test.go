package pgstore

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvickery/rule-descriptions/internal/rules"
)

func TestEncodeDescriptions(t *testing.T) {
	descs := []rules.Description{
		{
			RuleKey:       "BAR01-QNS01-AAS-1",
			EffectiveDate: "2018-01-01",
			Text:          "ENGL 101 C [EC:--:--:001] => ENGL 101H -- [--:--:--:000]",
		},
		{
			RuleKey:       "BAR01-QNS01-AAS-2",
			EffectiveDate: "2018-01-01",
			Text:          `AFPR 201 "Special, Topics" P [--:--:--:000] => No course P [--:--:--:---]`,
		},
	}

	buf, err := encodeDescriptions(descs)
	require.NoError(t, err)

	expected := "BAR01-QNS01-AAS-1,2018-01-01,ENGL 101 C [EC:--:--:001] => ENGL 101H -- [--:--:--:000]\n" +
		"BAR01-QNS01-AAS-2,2018-01-01,\"AFPR 201 \"\"Special, Topics\"\" P [--:--:--:000] => No course P [--:--:--:---]\"\n"
	assert.Equal(t, expected, buf.String())
}

func TestEncodeDescriptionsEmpty(t *testing.T) {
	buf, err := encodeDescriptions(nil)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestReplaceDescriptionsTable(t *testing.T) {
	t.Run("recreates table", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("drop table if exists rules_2024_08_01.rule_descriptions").
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, s.ReplaceDescriptionsTable(context.Background(), "rules_2024_08_01"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects invalid schema name", func(t *testing.T) {
		s, _ := newMockStore(t)
		err := s.ReplaceDescriptionsTable(context.Background(), "1bad")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid schema name")
	})
}

func TestTouchUpdates(t *testing.T) {
	s, mock := newMockStore(t)
	day := time.Date(2024, 8, 1, 15, 4, 5, 0, time.UTC)
	mock.ExpectExec("update updates set update_date").
		WithArgs("2024-08-01").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.TouchUpdates(context.Background(), day))
	require.NoError(t, mock.ExpectationsWereMet())
}
