// Package database opens the direct Postgres connection used by the
// postgres store driver and owns its schema migration.
package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Byte-Craftsman-Alpha/Paranox/config"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
)

// Connect opens the pool behind the postgres store driver. Timestamps gorm
// fills in are UTC, matching what the other drivers write.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: cfg.DSN()}), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(min(cfg.MaxIdleConns, cfg.MaxOpenConns))
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging %s on %s: %w", cfg.Name, cfg.Host, err)
	}
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:    true,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// Models lists every table the API reads or writes.
func Models() []any {
	return []any{
		&models.Profile{},
		&models.PatientRecord{},
		&models.DoctorPatientLink{},
		&models.PatientOrganizationAccess{},
		&models.MedicalRecord{},
		&models.MedicalRecordAccessLog{},
		&models.Appointment{},
		&models.DoctorProfile{},
		&models.AcademicRecord{},
		&models.HealthcareOrganization{},
		&models.PatientProfile{},
		&models.PatientEmergencyDetails{},
	}
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_medical_records_patient_date ON medical_records (patient_id, record_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_patient_date ON appointments (patient_id, appointment_date)`,
		`CREATE INDEX IF NOT EXISTS idx_doctor_patients_pair ON doctor_patients (doctor_id, patient_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_access_logs_record_time ON medical_record_access_logs (medical_record_id, accessed_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_creator ON appointments (created_by, appointment_date)`,
		`CREATE INDEX IF NOT EXISTS idx_org_access_open ON patient_organization_access (organization_id) WHERE has_access`,
	}
	for _, q := range indexes {
		if err := db.Exec(q).Error; err != nil {
			return fmt.Errorf("%s: %w", q, err)
		}
	}
	return nil
}
