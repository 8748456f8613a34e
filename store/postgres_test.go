package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Byte-Craftsman-Alpha/Paranox/models"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return mock, NewPostgresStore(gdb)
}

func TestPostgresSelect(t *testing.T) {
	mock, s := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "patient_id", "title", "record_date", "record_type"}).
		AddRow("r2", "p1", "Bloods", "2024-03-01", "lab_report").
		AddRow("r3", "p1", "X-ray", "2024-02-15", "imaging")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "medical_records" WHERE "patient_id" = $1 ORDER BY "record_date" DESC`)).
		WillReturnRows(rows)

	recs, err := SelectAll[models.MedicalRecord](context.Background(), s, TableMedicalRecords, Query{
		Filters: []Filter{Eq("patient_id", "p1")},
		OrderBy: "record_date",
		Limit:   20,
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "r2", recs[0].ID)
	assert.Equal(t, models.RecordImaging, recs[1].RecordType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate(t *testing.T) {
	mock, s := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "appointments" SET "status"=$1`)).
		WithArgs("completed", "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Update(context.Background(), TableAppointments, map[string]any{"status": "completed"}, Eq("id", "a1"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDelete(t *testing.T) {
	mock, s := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "patients" WHERE`)).
		WithArgs("dir-1", "doctor-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Delete(context.Background(), TablePatients, Eq("id", "dir-1"), Eq("created_by", "doctor-1"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCount(t *testing.T) {
	mock, s := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "medical_record_access_logs" WHERE "accessed_by" = $1`)).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := s.Count(context.Background(), TableAccessLogs, Eq("accessed_by", "org-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRequiresFilterForWrites(t *testing.T) {
	_, s := setupMockDB(t)
	assert.ErrorIs(t, s.Update(context.Background(), TableAppointments, map[string]any{"status": "x"}), ErrMissingFilter)
	assert.ErrorIs(t, s.Delete(context.Background(), TableAppointments), ErrMissingFilter)
}
