package models

import "time"

type Role string

const (
	RoleDoctor                 Role = "doctor"
	RolePatient                Role = "patient"
	RoleHealthcareOrganization Role = "healthcare_organization"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleDoctor, RolePatient, RoleHealthcareOrganization:
		return true
	}
	return false
}

// Profile is the one row per authenticated account. Its role never changes
// after creation.
type Profile struct {
	ID        string    `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	FullName  string    `json:"full_name" db:"full_name" gorm:"column:full_name;type:text"`
	Role      Role      `json:"role" db:"role" gorm:"column:role;type:varchar(40);not null"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (Profile) TableName() string { return "profiles" }

type CreateProfileRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Role     Role   `json:"role" binding:"required"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Role     *Role  `json:"role,omitempty"`
}
