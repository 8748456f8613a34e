// Package store is the table-level boundary to the hosted relational store.
//
// Every driver exposes the same small surface (select with filter, order and
// limit; insert; update; upsert on a conflict target; delete; count) and
// decodes rows into the json-tagged structs from the models package.
package store

import (
	"context"
	"errors"
)

const (
	TableProfiles                = "profiles"
	TablePatients                = "patients"
	TableDoctorPatients          = "doctor_patients"
	TablePatientOrgAccess        = "patient_organization_access"
	TableMedicalRecords          = "medical_records"
	TableAppointments            = "appointments"
	TableAccessLogs              = "medical_record_access_logs"
	TableDoctorProfiles          = "doctor_profiles"
	TableAcademicRecords         = "academic_records"
	TableHealthcareOrganizations = "healthcare_organizations"
	TablePatientProfiles         = "patient_profiles"
	TablePatientEmergency        = "patient_emergency_details"
)

var ErrMissingFilter = errors.New("store: update and delete require at least one filter")

type FilterOp string

const (
	FilterEq     FilterOp = "eq"
	FilterIn     FilterOp = "in"
	FilterIsNull FilterOp = "is_null"
)

type Filter struct {
	Column string
	Op     FilterOp
	Value  any
	Values []any
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: FilterEq, Value: value}
}

func In[T any](column string, values []T) Filter {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Filter{Column: column, Op: FilterIn, Values: vs}
}

func IsNull(column string) Filter {
	return Filter{Column: column, Op: FilterIsNull}
}

type Query struct {
	Columns   string
	Filters   []Filter
	OrderBy   string
	Ascending bool
	Limit     int
}

func (q Query) columns() string {
	if q.Columns == "" {
		return "*"
	}
	return q.Columns
}

type Store interface {
	// Select decodes matching rows into dest, a pointer to a slice.
	Select(ctx context.Context, table string, q Query, dest any) error
	Insert(ctx context.Context, table string, row any) error
	// Upsert inserts row or, when a row with the same onConflict columns
	// (comma separated) exists, overwrites it.
	Upsert(ctx context.Context, table string, row any, onConflict string) error
	Update(ctx context.Context, table string, values map[string]any, filters ...Filter) error
	Delete(ctx context.Context, table string, filters ...Filter) error
	Count(ctx context.Context, table string, filters ...Filter) (int64, error)
}

func SelectAll[T any](ctx context.Context, s Store, table string, q Query) ([]T, error) {
	rows := []T{}
	if err := s.Select(ctx, table, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SelectOne returns the first matching row, or nil when there is none.
func SelectOne[T any](ctx context.Context, s Store, table string, q Query) (*T, error) {
	q.Limit = 1
	rows, err := SelectAll[T](ctx, s, table, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
