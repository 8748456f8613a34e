package models

import (
	"errors"
	"time"
)

var ErrInvalidStatusTransition = errors.New("invalid appointment status transition")

// AppointmentStatus lifecycle:
//
//	booked → completed
//	booked → cancelled
type AppointmentStatus string

const (
	AppointmentBooked    AppointmentStatus = "booked"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentBooked:    {AppointmentCompleted, AppointmentCancelled},
	AppointmentCompleted: {},
	AppointmentCancelled: {},
}

func (s AppointmentStatus) IsValid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentCompleted || s == AppointmentCancelled
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID              string            `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	PatientID       string            `json:"patient_id" db:"patient_id" gorm:"column:patient_id;type:uuid;not null;index"`
	AppointmentDate time.Time         `json:"appointment_date" db:"appointment_date" gorm:"column:appointment_date;not null;index"`
	Status          AppointmentStatus `json:"status" db:"status" gorm:"column:status;type:varchar(20);not null;default:'booked'"`
	Notes           *string           `json:"notes,omitempty" db:"notes" gorm:"column:notes;type:text"`
	CreatedBy       string            `json:"created_by" db:"created_by" gorm:"column:created_by;type:uuid;not null"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at" gorm:"column:updated_at"`
}

func (Appointment) TableName() string { return "appointments" }

type AppointmentWithDetails struct {
	Appointment
	PatientName  string         `json:"patient_name,omitempty"`
	CreatorName  string         `json:"creator_name,omitempty"`
	LinkedRecord *MedicalRecord `json:"linked_record,omitempty"`
}

// AppointmentDay is one calendar day of appointments, in display order.
type AppointmentDay struct {
	Date         string        `json:"date"`
	Appointments []Appointment `json:"appointments"`
}

type CreateAppointmentRequest struct {
	PatientID       string    `json:"patient_id"`
	AppointmentDate time.Time `json:"appointment_date" binding:"required"`
	Notes           *string   `json:"notes,omitempty"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required"`
}
