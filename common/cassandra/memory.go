package cassandra

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Memory is an in-process Operation for tests. Rows are upserted on the
// configured primary key columns and every call is counted.
type Memory struct {
	mu         sync.Mutex
	primaryKey map[string][]string
	tables     map[string][]map[string]any

	Inserts int
	Reads   int
	Err     error
}

func NewMemory() *Memory {
	return &Memory{
		primaryKey: make(map[string][]string),
		tables:     make(map[string][]map[string]any),
	}
}

// WithPrimaryKey declares the key columns of keyspace.table so inserts
// replace rows with the same key.
func (m *Memory) WithPrimaryKey(keyspace, table string, columns ...string) *Memory {
	m.primaryKey[keyspace+"."+table] = columns

	return m
}

func (m *Memory) InsertRecord(_ context.Context, keyspace, table string, record map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Inserts++
	if m.Err != nil {
		return m.Err
	}

	if _, _, err := insertStatement(keyspace, table, record); err != nil {
		return err
	}

	name := keyspace + "." + table
	row := copyRow(record, nil)

	rows := m.tables[name]
	for i, existing := range rows {
		if m.sameKey(name, existing, row) {
			rows[i] = row
			return nil
		}
	}

	m.tables[name] = append(rows, row)

	return nil
}

func (m *Memory) GetRecordsByProperties(_ context.Context, keyspace, table string, properties map[string]any, fields []string) ([]map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Reads++
	if m.Err != nil {
		return nil, m.Err
	}

	if _, _, err := selectStatement(keyspace, table, properties, fields); err != nil {
		return nil, err
	}

	var out []map[string]any
	for _, row := range m.tables[keyspace+"."+table] {
		if matches(row, properties) {
			out = append(out, copyRow(row, fields))
		}
	}

	return out, nil
}

func (m *Memory) sameKey(table string, a, b map[string]any) bool {
	key := m.primaryKey[table]
	if len(key) == 0 {
		return false
	}

	for _, c := range key {
		if fmt.Sprint(a[c]) != fmt.Sprint(b[c]) {
			return false
		}
	}

	return true
}

func matches(row, properties map[string]any) bool {
	for column, want := range properties {
		got := row[column]

		if isList(want) {
			found := false
			v := reflect.ValueOf(want)
			for i := 0; i < v.Len(); i++ {
				if reflect.DeepEqual(v.Index(i).Interface(), got) {
					found = true
					break
				}
			}
			if !found {
				return false
			}

			continue
		}

		if !reflect.DeepEqual(want, got) {
			return false
		}
	}

	return true
}

func copyRow(row map[string]any, fields []string) map[string]any {
	out := make(map[string]any)
	if len(fields) == 0 {
		for k, v := range row {
			out[k] = v
		}

		return out
	}

	for _, f := range fields {
		out[f] = row[f]
	}

	return out
}
