package database

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestModelsHaveTableNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Models() {
		tabler, ok := m.(interface{ TableName() string })
		require.True(t, ok, "%T has no TableName", m)
		assert.False(t, seen[tabler.TableName()], "duplicate table %s", tabler.TableName())
		seen[tabler.TableName()] = true
	}
	assert.Len(t, seen, 12)
}

func TestCreateIndexes(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS")).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, createIndexes(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIndexesStopsOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_medical_records_patient_date")).
		WillReturnError(errors.New("permission denied for table medical_records"))

	err = createIndexes(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idx_medical_records_patient_date")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormConfigUsesUTC(t *testing.T) {
	cfg := gormConfig()
	assert.True(t, cfg.TranslateError)
	assert.Equal(t, time.UTC, cfg.NowFunc().Location())
}
