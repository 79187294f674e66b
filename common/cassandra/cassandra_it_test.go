//go:build integration

package cassandra

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/config"
)

func TestOperation_Integration(t *testing.T) {
	ctx := context.Background()
	c := config.CassandraConfig{Hosts: []string{"localhost"}, Keyspace: "enrollment_it", Consistency: "ONE", ReplicationFactor: 1}

	bootstrap, err := NewSession(config.CassandraConfig{Hosts: c.Hosts, Consistency: c.Consistency})
	require.NoError(t, err)
	require.NoError(t, CreateKeyspace(bootstrap, c.Keyspace, c.ReplicationFactor))
	require.NoError(t, bootstrap.Query(`CREATE TABLE IF NOT EXISTS enrollment_it.enrolments (
		userid text, courseid text, progress int, updatedon timestamp,
		PRIMARY KEY (userid, courseid))`).Exec())
	require.NoError(t, bootstrap.Query(`TRUNCATE enrollment_it.enrolments`).Exec())
	bootstrap.Close()

	session, err := NewSession(c)
	require.NoError(t, err)
	t.Cleanup(session.Close)

	op := NewOperation(session)
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, op.InsertRecord(ctx, c.Keyspace, "enrolments", map[string]any{"userid": "u1", "courseid": "c1", "progress": 0, "updatedon": now}))
	require.NoError(t, op.InsertRecord(ctx, c.Keyspace, "enrolments", map[string]any{"userid": "u1", "courseid": "c1", "progress": 30, "updatedon": now}))
	require.NoError(t, op.InsertRecord(ctx, c.Keyspace, "enrolments", map[string]any{"userid": "u1", "courseid": "c2", "progress": 0, "updatedon": now}))

	rows, err := op.GetRecordsByProperties(ctx, c.Keyspace, "enrolments", map[string]any{"userid": "u1"}, []string{"courseid", "progress", "updatedon"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "c1", rows[0]["courseid"])
	assert.Equal(t, 30, rows[0]["progress"])
	assert.True(t, now.Equal(rows[0]["updatedon"].(time.Time)))

	rows, err = op.GetRecordsByProperties(ctx, c.Keyspace, "enrolments", map[string]any{"userid": "u1", "courseid": []string{"c2", "c9"}}, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
