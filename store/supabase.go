package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

// SupabaseStore talks to the PostgREST endpoint of a Supabase project.
// postgrest-go has no context support, so ctx is only checked before the call.
type SupabaseStore struct {
	client *supa.Client
}

func NewSupabaseStore(client *supa.Client) *SupabaseStore {
	return &SupabaseStore{client: client}
}

func (s *SupabaseStore) Select(ctx context.Context, table string, q Query, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	query := applyPostgrestFilters(s.client.From(table).Select(q.columns(), "", false), q.Filters)
	if q.OrderBy != "" {
		query = query.Order(q.OrderBy, &postgrest.OrderOpts{Ascending: q.Ascending})
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit, "")
	}

	data, _, err := query.Execute()
	if err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", table, err)
	}
	return nil
}

func (s *SupabaseStore) Insert(ctx context.Context, table string, row any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := s.client.From(table).Insert(row, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (s *SupabaseStore) Upsert(ctx context.Context, table string, row any, onConflict string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := s.client.From(table).Upsert(row, onConflict, "minimal", "").Execute(); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

func (s *SupabaseStore) Update(ctx context.Context, table string, values map[string]any, filters ...Filter) error {
	if len(filters) == 0 {
		return ErrMissingFilter
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	query := applyPostgrestFilters(s.client.From(table).Update(values, "minimal", ""), filters)
	if _, _, err := query.Execute(); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

func (s *SupabaseStore) Delete(ctx context.Context, table string, filters ...Filter) error {
	if len(filters) == 0 {
		return ErrMissingFilter
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	query := applyPostgrestFilters(s.client.From(table).Delete("minimal", ""), filters)
	if _, _, err := query.Execute(); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func (s *SupabaseStore) Count(ctx context.Context, table string, filters ...Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	query := applyPostgrestFilters(s.client.From(table).Select("id", "exact", true), filters)
	_, count, err := query.Execute()
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}

func applyPostgrestFilters(query *postgrest.FilterBuilder, filters []Filter) *postgrest.FilterBuilder {
	for _, f := range filters {
		switch f.Op {
		case FilterEq:
			query = query.Eq(f.Column, filterString(f.Value))
		case FilterIn:
			values := make([]string, len(f.Values))
			for i, v := range f.Values {
				values[i] = filterString(v)
			}
			query = query.In(f.Column, values)
		case FilterIsNull:
			query = query.Is(f.Column, "null")
		}
	}
	return query
}

// filterString renders a filter value the way PostgREST and the in-memory
// driver compare it.
func filterString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
