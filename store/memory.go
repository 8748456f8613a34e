package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type row map[string]any

// MemoryStore keeps tables in process. It backs local development
// (STORE_DRIVER=memory) and tests; rows round-trip through JSON exactly like
// rows coming back from PostgREST.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]row
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]row)}
}

func (m *MemoryStore) Select(ctx context.Context, table string, q Query, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	matched := make([]row, 0)
	for _, r := range m.tables[table] {
		if matches(r, q.Filters) {
			matched = append(matched, project(r, q.columns()))
		}
	}
	m.mu.RUnlock()

	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			c := compareValues(matched[i][q.OrderBy], matched[j][q.OrderBy])
			if q.Ascending {
				return c < 0
			}
			return c > 0
		})
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	data, err := json.Marshal(matched)
	if err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", table, err)
	}
	return nil
}

func (m *MemoryStore) Insert(ctx context.Context, table string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, err := toRows(value)
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		if id, ok := r["id"]; ok && id != nil && m.indexOf(table, []string{"id"}, r) >= 0 {
			return fmt.Errorf("insert %s: duplicate key id=%v", table, id)
		}
	}
	m.tables[table] = append(m.tables[table], rows...)
	return nil
}

func (m *MemoryStore) Upsert(ctx context.Context, table string, value any, onConflict string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, err := toRows(value)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	keys := splitColumns(onConflict)
	if len(keys) == 0 {
		keys = []string{"id"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		if i := m.indexOf(table, keys, r); i >= 0 {
			existing := m.tables[table][i]
			for k, v := range r {
				if k == "id" && existing["id"] != nil {
					continue
				}
				existing[k] = v
			}
			continue
		}
		m.tables[table] = append(m.tables[table], r)
	}
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, table string, values map[string]any, filters ...Filter) error {
	if len(filters) == 0 {
		return ErrMissingFilter
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	normalized, err := toRows(values)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.tables[table] {
		if !matches(r, filters) {
			continue
		}
		for k, v := range normalized[0] {
			r[k] = v
		}
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, table string, filters ...Filter) error {
	if len(filters) == 0 {
		return ErrMissingFilter
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.tables[table][:0]
	for _, r := range m.tables[table] {
		if !matches(r, filters) {
			kept = append(kept, r)
		}
	}
	m.tables[table] = kept
	return nil
}

func (m *MemoryStore) Count(ctx context.Context, table string, filters ...Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, r := range m.tables[table] {
		if matches(r, filters) {
			n++
		}
	}
	return n, nil
}

// indexOf must be called with m.mu held.
func (m *MemoryStore) indexOf(table string, keys []string, candidate row) int {
	for i, r := range m.tables[table] {
		same := true
		for _, k := range keys {
			if filterString(r[k]) != filterString(candidate[k]) {
				same = false
				break
			}
		}
		if same {
			return i
		}
	}
	return -1
}

func toRows(value any) ([]row, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) > 0 && data[0] == '[' {
		var rows []row
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}
	var r row
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return []row{r}, nil
}

func matches(r row, filters []Filter) bool {
	for _, f := range filters {
		v, present := r[f.Column]
		switch f.Op {
		case FilterEq:
			if !present || v == nil || filterString(v) != filterString(f.Value) {
				return false
			}
		case FilterIn:
			found := false
			for _, want := range f.Values {
				if present && v != nil && filterString(v) == filterString(want) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case FilterIsNull:
			if present && v != nil {
				return false
			}
		}
	}
	return true
}

func project(r row, columns string) row {
	out := make(row, len(r))
	if columns == "*" {
		for k, v := range r {
			out[k] = v
		}
		return out
	}
	for _, c := range splitColumns(columns) {
		if v, ok := r[c]; ok {
			out[c] = v
		}
	}
	return out
}

// compareValues orders like Postgres: numbers numerically, timestamps
// chronologically, NULL after everything else.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	if fa, ok := a.(float64); ok {
		if fb, ok := b.(float64); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}

	sa, sb := filterString(a), filterString(b)
	if ta, err := time.Parse(time.RFC3339Nano, sa); err == nil {
		if tb, err := time.Parse(time.RFC3339Nano, sb); err == nil {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(sa, sb)
}
