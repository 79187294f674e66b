package cassandra

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/juju/errors"
	"github.com/scylladb/gocqlx/v2/qb"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/config"
)

var (
	ErrInvalidIdentifier = errors.New("cassandra: invalid keyspace name")
	ErrEmptyRecord       = errors.New("cassandra: record has no columns")
	ErrNoProperties      = errors.New("cassandra: at least one filter property is required")
)

// keyspaceRE guards the one statement the query builder cannot produce.
var keyspaceRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Operation is the generic row access used on the wide-column store. Rows are
// plain column -> value maps.
type Operation interface {
	InsertRecord(ctx context.Context, keyspace, table string, record map[string]any) error
	// GetRecordsByProperties returns the rows matching every property. A
	// property holding a slice is matched with IN. An empty fields list
	// selects every column.
	GetRecordsByProperties(ctx context.Context, keyspace, table string, properties map[string]any, fields []string) ([]map[string]any, error)
}

func NewSession(c config.CassandraConfig) (*gocql.Session, error) {
	consistency, err := gocql.ParseConsistencyWrapper(c.Consistency)
	if err != nil {
		return nil, errors.Annotatef(err, "cassandra: consistency %q", c.Consistency)
	}

	cluster := gocql.NewCluster(c.Hosts...)
	cluster.Consistency = consistency
	cluster.Timeout = 5 * time.Second
	cluster.ConnectTimeout = 5 * time.Second

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, errors.Annotatef(err, "cassandra: connecting to %s", strings.Join(c.Hosts, ","))
	}

	return session, nil
}

// CreateKeyspace creates keyspace with SimpleStrategy replication when it
// does not exist yet.
func CreateKeyspace(session *gocql.Session, keyspace string, replicationFactor int) error {
	stmt, err := createKeyspaceStatement(keyspace, replicationFactor)
	if err != nil {
		return errors.Trace(err)
	}

	if err := session.Query(stmt).Exec(); err != nil {
		return errors.Annotatef(err, "cassandra: creating keyspace %s", keyspace)
	}

	return nil
}

type operation struct {
	session *gocql.Session
}

func NewOperation(session *gocql.Session) Operation {
	return &operation{session: session}
}

func (o *operation) InsertRecord(ctx context.Context, keyspace, table string, record map[string]any) error {
	stmt, values, err := insertStatement(keyspace, table, record)
	if err != nil {
		return errors.Trace(err)
	}

	if err := o.session.Query(stmt, values...).WithContext(ctx).Exec(); err != nil {
		return errors.Annotatef(err, "cassandra: inserting into %s.%s", keyspace, table)
	}

	return nil
}

func (o *operation) GetRecordsByProperties(ctx context.Context, keyspace, table string, properties map[string]any, fields []string) ([]map[string]any, error) {
	stmt, values, err := selectStatement(keyspace, table, properties, fields)
	if err != nil {
		return nil, errors.Trace(err)
	}

	iter := o.session.Query(stmt, values...).WithContext(ctx).Iter()

	var out []map[string]any
	for {
		row := make(map[string]any)
		if !iter.MapScan(row) {
			break
		}

		out = append(out, row)
	}

	if err := iter.Close(); err != nil {
		return nil, errors.Annotatef(err, "cassandra: reading from %s.%s", keyspace, table)
	}

	return out, nil
}

func createKeyspaceStatement(keyspace string, replicationFactor int) (string, error) {
	if !keyspaceRE.MatchString(keyspace) {
		return "", errors.Annotatef(ErrInvalidIdentifier, "%q", keyspace)
	}

	if replicationFactor < 1 {
		replicationFactor = 1
	}

	return fmt.Sprintf(
		"CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}",
		keyspace, replicationFactor,
	), nil
}

func insertStatement(keyspace, table string, record map[string]any) (string, []any, error) {
	if len(record) == 0 {
		return "", nil, errors.Trace(ErrEmptyRecord)
	}

	stmt, names := qb.Insert(keyspace + "." + table).Columns(sortedKeys(record)...).ToCql()

	return stmt, bind(names, record), nil
}

func selectStatement(keyspace, table string, properties map[string]any, fields []string) (string, []any, error) {
	if len(properties) == 0 {
		return "", nil, errors.Trace(ErrNoProperties)
	}

	columns := sortedKeys(properties)
	where := make([]qb.Cmp, len(columns))
	for i, c := range columns {
		if isList(properties[c]) {
			where[i] = qb.In(c)
		} else {
			where[i] = qb.Eq(c)
		}
	}

	stmt, names := qb.Select(keyspace + "." + table).Columns(fields...).Where(where...).ToCql()

	return stmt, bind(names, properties), nil
}

// bind orders values the way the builder named their markers.
func bind(names []string, values map[string]any) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = values[n]
	}

	return out
}

func isList(v any) bool {
	switch v.(type) {
	case []string, []any, []int:
		return true
	}

	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
