package cassandra

import (
	"context"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertStatement(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		stmt, values, err := insertStatement("sunbird_courses", "user_external_enrolments", map[string]any{
			"userid":   "u1",
			"courseid": "c1",
			"progress": 0,
		})

		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO sunbird_courses.user_external_enrolments (courseid,progress,userid) VALUES (?,?,?)", strings.TrimSpace(stmt))
		assert.Equal(t, []any{"c1", 0, "u1"}, values)
	})

	t.Run("failure_empty_record", func(t *testing.T) {
		_, _, err := insertStatement("sunbird_courses", "user_external_enrolments", map[string]any{})
		assert.True(t, errors.Is(err, ErrEmptyRecord))
	})
}

func TestSelectStatement(t *testing.T) {
	t.Run("projection_and_filters", func(t *testing.T) {
		stmt, values, err := selectStatement(
			"sunbird_courses", "user_external_enrolments",
			map[string]any{"userid": "u1", "courseid": "c1"},
			[]string{"userid", "courseid", "progress"},
		)

		require.NoError(t, err)
		assert.Equal(t, "SELECT userid,courseid,progress FROM sunbird_courses.user_external_enrolments WHERE courseid=? AND userid=?", strings.TrimSpace(stmt))
		assert.Equal(t, []any{"c1", "u1"}, values)
	})

	t.Run("all_columns_and_in", func(t *testing.T) {
		stmt, values, err := selectStatement(
			"sunbird_courses", "user_external_enrolments",
			map[string]any{"userid": []string{"u1", "u2"}},
			nil,
		)

		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM sunbird_courses.user_external_enrolments WHERE userid IN ?", strings.TrimSpace(stmt))
		assert.Equal(t, []any{[]string{"u1", "u2"}}, values)
	})

	t.Run("values_follow_markers", func(t *testing.T) {
		stmt, values, err := selectStatement(
			"ks", "enrolments",
			map[string]any{"userid": "u1", "courseid": []string{"c1", "c2"}},
			[]string{"progress"},
		)

		require.NoError(t, err)
		assert.Equal(t, "SELECT progress FROM ks.enrolments WHERE courseid IN ? AND userid=?", strings.TrimSpace(stmt))
		assert.Equal(t, []any{[]string{"c1", "c2"}, "u1"}, values)
	})

	t.Run("failure_no_properties", func(t *testing.T) {
		_, _, err := selectStatement("sunbird_courses", "user_external_enrolments", nil, nil)
		assert.True(t, errors.Is(err, ErrNoProperties))
	})
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory().WithPrimaryKey("ks", "enrolments", "userid", "courseid")

	require.NoError(t, m.InsertRecord(ctx, "ks", "enrolments", map[string]any{"userid": "u1", "courseid": "c1", "progress": 0}))
	require.NoError(t, m.InsertRecord(ctx, "ks", "enrolments", map[string]any{"userid": "u1", "courseid": "c2", "progress": 0}))
	require.NoError(t, m.InsertRecord(ctx, "ks", "enrolments", map[string]any{"userid": "u2", "courseid": "c1", "progress": 0}))
	// upsert on the same key
	require.NoError(t, m.InsertRecord(ctx, "ks", "enrolments", map[string]any{"userid": "u1", "courseid": "c1", "progress": 50}))

	rows, err := m.GetRecordsByProperties(ctx, "ks", "enrolments", map[string]any{"userid": "u1"}, []string{"courseid", "progress"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []map[string]any{
		{"courseid": "c1", "progress": 50},
		{"courseid": "c2", "progress": 0},
	}, rows)

	rows, err = m.GetRecordsByProperties(ctx, "ks", "enrolments", map[string]any{"courseid": []string{"c2", "c3"}}, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	assert.Equal(t, 4, m.Inserts)
	assert.Equal(t, 2, m.Reads)

	m.Err = errors.New("unavailable")
	_, err = m.GetRecordsByProperties(ctx, "ks", "enrolments", map[string]any{"userid": "u1"}, nil)
	assert.Error(t, err)
}

func TestCreateKeyspaceStatement(t *testing.T) {
	stmt, err := createKeyspaceStatement("sunbird_courses", 3)
	require.NoError(t, err)
	assert.Equal(t, "CREATE KEYSPACE IF NOT EXISTS sunbird_courses WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 3}", stmt)

	stmt, err = createKeyspaceStatement("sunbird_courses", 0)
	require.NoError(t, err)
	assert.Contains(t, stmt, "'replication_factor': 1}")

	_, err = createKeyspaceStatement("drop table x;", 1)
	assert.True(t, errors.Is(err, ErrInvalidIdentifier))
}
