package models

import "time"

// PatientRecord is a private directory entry kept by a doctor or
// organization. It is unrelated to the patient's own account.
type PatientRecord struct {
	ID          string    `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	FullName    string    `json:"full_name" db:"full_name" gorm:"column:full_name;type:text;not null"`
	DateOfBirth string    `json:"date_of_birth" db:"date_of_birth" gorm:"column:date_of_birth;type:date"`
	Phone       *string   `json:"phone,omitempty" db:"phone" gorm:"column:phone;type:text"`
	Email       *string   `json:"email,omitempty" db:"email" gorm:"column:email;type:text"`
	Notes       *string   `json:"notes,omitempty" db:"notes" gorm:"column:notes;type:text"`
	CreatedBy   string    `json:"created_by" db:"created_by" gorm:"column:created_by;type:uuid;not null;index"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (PatientRecord) TableName() string { return "patients" }

type PatientRecordRequest struct {
	FullName    string  `json:"full_name" binding:"required"`
	DateOfBirth string  `json:"date_of_birth" binding:"required"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

type PatientProfile struct {
	UserID      string    `json:"user_id" db:"user_id" gorm:"column:user_id;type:uuid;primaryKey"`
	Phone       *string   `json:"phone,omitempty" db:"phone" gorm:"column:phone;type:text"`
	Address     *string   `json:"address,omitempty" db:"address" gorm:"column:address;type:text"`
	DateOfBirth *string   `json:"date_of_birth,omitempty" db:"date_of_birth" gorm:"column:date_of_birth;type:date"`
	BloodGroup  *string   `json:"blood_group,omitempty" db:"blood_group" gorm:"column:blood_group;type:varchar(5)"`
	InsuranceID *string   `json:"insurance_id,omitempty" db:"insurance_id" gorm:"column:insurance_id;type:text"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (PatientProfile) TableName() string { return "patient_profiles" }

type PatientEmergencyDetails struct {
	UserID                       string    `json:"user_id" db:"user_id" gorm:"column:user_id;type:uuid;primaryKey"`
	EmergencyContactName         *string   `json:"emergency_contact_name,omitempty" db:"emergency_contact_name" gorm:"column:emergency_contact_name;type:text"`
	EmergencyContactPhone        *string   `json:"emergency_contact_phone,omitempty" db:"emergency_contact_phone" gorm:"column:emergency_contact_phone;type:text"`
	EmergencyContactRelationship *string   `json:"emergency_contact_relationship,omitempty" db:"emergency_contact_relationship" gorm:"column:emergency_contact_relationship;type:text"`
	Allergies                    *string   `json:"allergies,omitempty" db:"allergies" gorm:"column:allergies;type:text"`
	ChronicConditions            *string   `json:"chronic_conditions,omitempty" db:"chronic_conditions" gorm:"column:chronic_conditions;type:text"`
	CreatedAt                    time.Time `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt                    time.Time `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (PatientEmergencyDetails) TableName() string { return "patient_emergency_details" }

// PatientHealthProfile pairs the two patient-owned descriptive rows. Either
// may be nil when the patient has not filled it in yet.
type PatientHealthProfile struct {
	Profile   *PatientProfile          `json:"profile"`
	Emergency *PatientEmergencyDetails `json:"emergency_details"`
}

type SavePatientHealthProfileRequest struct {
	Profile   PatientProfile          `json:"profile"`
	Emergency PatientEmergencyDetails `json:"emergency_details"`
}
