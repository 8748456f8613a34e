package models

import "time"

type DoctorProfile struct {
	ID                       string    `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	UserID                   string    `json:"user_id" db:"user_id" gorm:"column:user_id;type:uuid;uniqueIndex;not null"`
	Specialization           *string   `json:"specialization,omitempty" db:"specialization" gorm:"column:specialization;type:text"`
	YearsOfExperience        *int      `json:"years_of_experience,omitempty" db:"years_of_experience" gorm:"column:years_of_experience"`
	Bio                      *string   `json:"bio,omitempty" db:"bio" gorm:"column:bio;type:text"`
	HealthcareOrganizationID *string   `json:"healthcare_organization_id,omitempty" db:"healthcare_organization_id" gorm:"column:healthcare_organization_id;type:uuid"`
	CreatedAt                time.Time `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt                time.Time `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (DoctorProfile) TableName() string { return "doctor_profiles" }

type AcademicRecord struct {
	ID             string    `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	DoctorID       string    `json:"doctor_id" db:"doctor_id" gorm:"column:doctor_id;type:uuid;not null;index"`
	DegreeName     string    `json:"degree_name" db:"degree_name" gorm:"column:degree_name;type:text;not null"`
	Institution    string    `json:"institution" db:"institution" gorm:"column:institution;type:text;not null"`
	YearObtained   int       `json:"year_obtained" db:"year_obtained" gorm:"column:year_obtained;not null"`
	CertificateURL *string   `json:"certificate_url,omitempty" db:"certificate_url" gorm:"column:certificate_url;type:text"`
	CreatedAt      time.Time `json:"created_at" db:"created_at" gorm:"column:created_at"`
}

func (AcademicRecord) TableName() string { return "academic_records" }

type HealthcareOrganization struct {
	ID          string    `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `json:"name" db:"name" gorm:"column:name;type:text;not null"`
	Address     *string   `json:"address,omitempty" db:"address" gorm:"column:address;type:text"`
	ContactInfo *string   `json:"contact_info,omitempty" db:"contact_info" gorm:"column:contact_info;type:text"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (HealthcareOrganization) TableName() string { return "healthcare_organizations" }

// DoctorDirectoryEntry is the public view of a doctor: profile, name,
// organization and qualifications.
type DoctorDirectoryEntry struct {
	DoctorProfile
	FullName         string           `json:"full_name"`
	OrganizationName *string          `json:"organization_name,omitempty"`
	AcademicRecords  []AcademicRecord `json:"academic_records"`
}

type UpdateDoctorProfileRequest struct {
	Specialization           *string `json:"specialization,omitempty"`
	YearsOfExperience        *int    `json:"years_of_experience,omitempty"`
	Bio                      *string `json:"bio,omitempty"`
	HealthcareOrganizationID *string `json:"healthcare_organization_id,omitempty"`
}

type CreateAcademicRecordRequest struct {
	DegreeName     string  `json:"degree_name" binding:"required"`
	Institution    string  `json:"institution" binding:"required"`
	YearObtained   int     `json:"year_obtained" binding:"required"`
	CertificateURL *string `json:"certificate_url,omitempty"`
}
