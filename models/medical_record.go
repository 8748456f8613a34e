package models

import "time"

type RecordType string

const (
	RecordGeneral      RecordType = "general"
	RecordDiagnosis    RecordType = "diagnosis"
	RecordPrescription RecordType = "prescription"
	RecordLabReport    RecordType = "lab_report"
	RecordImaging      RecordType = "imaging"
	RecordReferral     RecordType = "referral"
)

type MedicalRecord struct {
	ID          string     `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	PatientID   string     `json:"patient_id" db:"patient_id" gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID    *string    `json:"doctor_id" db:"doctor_id" gorm:"column:doctor_id;type:uuid"`
	Title       string     `json:"title" db:"title" gorm:"column:title;type:text;not null"`
	Description *string    `json:"description,omitempty" db:"description" gorm:"column:description;type:text"`
	RecordDate  string     `json:"record_date" db:"record_date" gorm:"column:record_date;type:date;not null;index"`
	RecordType  RecordType `json:"record_type" db:"record_type" gorm:"column:record_type;type:varchar(40);not null;default:'general'"`
	FileURL     *string    `json:"file_url,omitempty" db:"file_url" gorm:"column:file_url;type:text"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (MedicalRecord) TableName() string { return "medical_records" }

// CreateMedicalRecordRequest accepts either a ready description or the
// labeled sections it is composed from.
type CreateMedicalRecordRequest struct {
	PatientID       string     `json:"patient_id" form:"patient_id"`
	Title           string     `json:"title" form:"title" binding:"required"`
	RecordDate      string     `json:"record_date" form:"record_date" binding:"required"`
	RecordType      RecordType `json:"record_type" form:"record_type"`
	Description     string     `json:"description" form:"description"`
	IssuingHospital string     `json:"issuing_hospital" form:"issuing_hospital"`
	Objective       string     `json:"objective" form:"objective"`
	Diagnosis       string     `json:"diagnosis" form:"diagnosis"`
	Prescriptions   string     `json:"prescriptions" form:"prescriptions"`
	Medicines       string     `json:"medicines" form:"medicines"`
	Tests           string     `json:"tests" form:"tests"`
	FollowUp        string     `json:"follow_up" form:"follow_up"`
	Notes           string     `json:"notes" form:"notes"`
}

type MedicalRecordAccessLog struct {
	ID              string    `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	MedicalRecordID string    `json:"medical_record_id" db:"medical_record_id" gorm:"column:medical_record_id;type:uuid;not null;index"`
	AccessedBy      string    `json:"accessed_by" db:"accessed_by" gorm:"column:accessed_by;type:uuid;not null"`
	AccessedByRole  Role      `json:"accessed_by_role" db:"accessed_by_role" gorm:"column:accessed_by_role;type:varchar(40);not null"`
	AccessType      string    `json:"access_type" db:"access_type" gorm:"column:access_type;type:varchar(40);not null"`
	Context         *string   `json:"context,omitempty" db:"context" gorm:"column:context;type:text"`
	AccessedAt      time.Time `json:"accessed_at" db:"accessed_at" gorm:"column:accessed_at;index"`
}

func (MedicalRecordAccessLog) TableName() string { return "medical_record_access_logs" }

type AccessLogWithAccessor struct {
	MedicalRecordAccessLog
	AccessorName string `json:"accessor_name,omitempty"`
	RecordTitle  string `json:"record_title,omitempty"`
}
