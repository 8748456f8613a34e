package models

import "time"

type LinkStatus string

const (
	LinkPending    LinkStatus = "pending"
	LinkActive     LinkStatus = "active"
	LinkApproved   LinkStatus = "approved"
	LinkDischarged LinkStatus = "discharged"
)

// GrantsWrite reports whether a link in this status lets the provider
// author records for the patient.
func (s LinkStatus) GrantsWrite() bool {
	return s == LinkActive || s == LinkApproved
}

// DoctorPatientLink is a care relationship between a provider account
// (doctor, or an organization acting as one) and a patient.
type DoctorPatientLink struct {
	ID            string     `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	DoctorID      string     `json:"doctor_id" db:"doctor_id" gorm:"column:doctor_id;type:uuid;not null;index"`
	PatientID     string     `json:"patient_id" db:"patient_id" gorm:"column:patient_id;type:uuid;not null;index"`
	Status        LinkStatus `json:"status" db:"status" gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	AdmissionDate string     `json:"admission_date" db:"admission_date" gorm:"column:admission_date;type:date"`
	DischargeDate *string    `json:"discharge_date,omitempty" db:"discharge_date" gorm:"column:discharge_date;type:date"`
	Notes         *string    `json:"notes,omitempty" db:"notes" gorm:"column:notes;type:text"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (DoctorPatientLink) TableName() string { return "doctor_patients" }

type LinkWithNames struct {
	DoctorPatientLink
	DoctorName        string  `json:"doctor_name,omitempty"`
	PatientName       string  `json:"patient_name,omitempty"`
	Specialization    *string `json:"specialization,omitempty"`
	YearsOfExperience *int    `json:"years_of_experience,omitempty"`
}

type CreateLinkRequest struct {
	PatientID     string  `json:"patient_id" binding:"required"`
	AdmissionDate string  `json:"admission_date"`
	Notes         *string `json:"notes,omitempty"`
}

// PatientOrganizationAccess is the patient-controlled read grant for an
// organization. Revocation flips HasAccess and stamps RevokedAt; the row is
// never deleted.
type PatientOrganizationAccess struct {
	ID             string     `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	PatientID      string     `json:"patient_id" db:"patient_id" gorm:"column:patient_id;type:uuid;not null;uniqueIndex:idx_patient_org"`
	OrganizationID string     `json:"organization_id" db:"organization_id" gorm:"column:organization_id;type:uuid;not null;uniqueIndex:idx_patient_org"`
	HasAccess      bool       `json:"has_access" db:"has_access" gorm:"column:has_access;not null"`
	GrantedAt      time.Time  `json:"granted_at" db:"granted_at" gorm:"column:granted_at"`
	RevokedAt      *time.Time `json:"revoked_at" db:"revoked_at" gorm:"column:revoked_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (PatientOrganizationAccess) TableName() string { return "patient_organization_access" }

type GrantWithNames struct {
	PatientOrganizationAccess
	OrganizationName string `json:"organization_name,omitempty"`
	PatientName      string `json:"patient_name,omitempty"`
}

type GrantAccessRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
}
