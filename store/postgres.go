package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStore runs the same table operations against a self-hosted
// Postgres through gorm.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Select(ctx context.Context, table string, q Query, dest any) error {
	tx := s.db.WithContext(ctx).Table(table)
	if cols := q.columns(); cols != "*" {
		tx = tx.Select(splitColumns(cols))
	}
	if exprs := gormConditions(q.Filters); len(exprs) > 0 {
		tx = tx.Where(clause.And(exprs...))
	}
	if q.OrderBy != "" {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.OrderBy}, Desc: !q.Ascending})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if err := tx.Find(dest).Error; err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, table string, row any) error {
	if err := s.db.WithContext(ctx).Table(table).Create(row).Error; err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, table string, row any, onConflict string) error {
	cols := make([]clause.Column, 0)
	for _, name := range splitColumns(onConflict) {
		cols = append(cols, clause.Column{Name: name})
	}
	err := s.db.WithContext(ctx).Table(table).
		Clauses(clause.OnConflict{Columns: cols, UpdateAll: true}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, table string, values map[string]any, filters ...Filter) error {
	if len(filters) == 0 {
		return ErrMissingFilter
	}
	err := s.db.WithContext(ctx).Table(table).
		Where(clause.And(gormConditions(filters)...)).
		Updates(values).Error
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, table string, filters ...Filter) error {
	if len(filters) == 0 {
		return ErrMissingFilter
	}
	err := s.db.WithContext(ctx).Table(table).
		Where(clause.And(gormConditions(filters)...)).
		Delete(map[string]any{}).Error
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context, table string, filters ...Filter) (int64, error) {
	var n int64
	tx := s.db.WithContext(ctx).Table(table)
	if exprs := gormConditions(filters); len(exprs) > 0 {
		tx = tx.Where(clause.And(exprs...))
	}
	if err := tx.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func gormConditions(filters []Filter) []clause.Expression {
	exprs := make([]clause.Expression, 0, len(filters))
	for _, f := range filters {
		col := clause.Column{Name: f.Column}
		switch f.Op {
		case FilterEq:
			exprs = append(exprs, clause.Eq{Column: col, Value: f.Value})
		case FilterIn:
			exprs = append(exprs, clause.IN{Column: col, Values: f.Values})
		case FilterIsNull:
			exprs = append(exprs, clause.Eq{Column: col, Value: nil})
		}
	}
	return exprs
}

func splitColumns(cols string) []string {
	parts := strings.Split(cols, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
