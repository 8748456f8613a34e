package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/access"
	"github.com/Byte-Craftsman-Alpha/Paranox/config"
	"github.com/Byte-Craftsman-Alpha/Paranox/metrics"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/store"
)

type AppointmentService struct {
	store         store.Store
	gate          *gate
	records       *MedicalRecordService
	profiles      *ProfileService
	strictRecheck bool
	metrics       *metrics.Collector
	log           *zap.Logger
}

func NewAppointmentService(
	st store.Store,
	g *gate,
	recordSvc *MedicalRecordService,
	profiles *ProfileService,
	cfg config.AccessConfig,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		store:         st,
		gate:          g,
		records:       recordSvc,
		profiles:      profiles,
		strictRecheck: cfg.StrictRecheck,
		metrics:       m,
		log:           log,
	}
}

func (s *AppointmentService) Create(ctx context.Context, actor access.Actor, req *models.CreateAppointmentRequest) (*models.Appointment, error) {
	ctx, end := withSpan(ctx, "AppointmentService.Create")
	defer end()

	patientID, err := patientScope(actor, req.PatientID)
	if err != nil {
		return nil, err
	}
	if req.AppointmentDate.IsZero() {
		return nil, invalid("appointment_date is required")
	}
	if _, err := s.gate.authorize(ctx, access.OpWrite, actor, patientID, access.ResourceAppointment); err != nil {
		return nil, err
	}

	ts := now()
	appt := &models.Appointment{
		ID:              uuid.NewString(),
		PatientID:       patientID,
		AppointmentDate: req.AppointmentDate.UTC(),
		Status:          models.AppointmentBooked,
		Notes:           req.Notes,
		CreatedBy:       actor.ID,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	if err := s.store.Insert(ctx, store.TableAppointments, appt); err != nil {
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AppointmentsTotal.WithLabelValues(string(appt.Status)).Inc()
	}
	s.log.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("patient_id", patientID),
		zap.String("created_by", actor.ID),
	)
	return appt, nil
}

// List returns appointments in chronological order.
//
// Patients see their own. Doctors see the ones they booked, or all of a
// patient's appointments while they hold a writable link. Organizations see
// the appointments of patients that currently grant them access.
func (s *AppointmentService) List(ctx context.Context, actor access.Actor, patientID string) ([]models.Appointment, error) {
	q := store.Query{OrderBy: "appointment_date", Ascending: true}

	switch actor.Role {
	case models.RolePatient:
		if patientID != "" && patientID != actor.ID {
			return nil, s.gate.check(access.OpRead, actor, patientID, access.ResourceAppointment, access.Relationship{})
		}
		q.Filters = []store.Filter{store.Eq("patient_id", actor.ID)}

	case models.RoleDoctor:
		if patientID == "" {
			q.Filters = []store.Filter{store.Eq("created_by", actor.ID)}
			break
		}
		rel, err := s.gate.relationship(ctx, actor, patientID)
		if err != nil {
			return nil, err
		}
		q.Filters = []store.Filter{store.Eq("patient_id", patientID)}
		if !access.CanRead(actor, patientID, access.ResourceAppointment, rel) {
			q.Filters = append(q.Filters, store.Eq("created_by", actor.ID))
		}

	case models.RoleHealthcareOrganization:
		if patientID != "" {
			if _, err := s.gate.authorize(ctx, access.OpRead, actor, patientID, access.ResourceAppointment); err != nil {
				return nil, err
			}
			q.Filters = []store.Filter{store.Eq("patient_id", patientID)}
			break
		}
		patients, err := s.grantedPatients(ctx, actor)
		if err != nil {
			return nil, err
		}
		if len(patients) == 0 {
			return []models.Appointment{}, nil
		}
		q.Filters = []store.Filter{store.In("patient_id", patients)}

	default:
		return nil, s.gate.check(access.OpRead, actor, patientID, access.ResourceAppointment, access.Relationship{})
	}

	appts, err := store.SelectAll[models.Appointment](ctx, s.store, store.TableAppointments, q)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return appts, nil
}

func (s *AppointmentService) grantedPatients(ctx context.Context, actor access.Actor) ([]string, error) {
	grants, err := store.SelectAll[models.PatientOrganizationAccess](ctx, s.store, store.TablePatientOrgAccess, store.Query{
		Columns: "patient_id",
		Filters: []store.Filter{store.Eq("organization_id", actor.ID), store.Eq("has_access", true)},
	})
	if err != nil {
		return nil, fmt.Errorf("loading organization access: %w", err)
	}
	ids := make([]string, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.PatientID)
	}
	return uniqueStrings(ids), nil
}

// Details loads one appointment with names and, when the viewer may read
// the patient's records, the record linked to it by date.
func (s *AppointmentService) Details(ctx context.Context, actor access.Actor, id string) (*models.AppointmentWithDetails, error) {
	ctx, end := withSpan(ctx, "AppointmentService.Details")
	defer end()

	appt, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	rel, err := s.gate.relationship(ctx, actor, appt.PatientID)
	if err != nil {
		return nil, err
	}
	rel.Owner = appt.CreatedBy
	if err := s.gate.check(access.OpRead, actor, appt.PatientID, access.ResourceAppointment, rel); err != nil {
		return nil, err
	}

	out := &models.AppointmentWithDetails{Appointment: *appt}
	if names, err := s.profiles.Names(ctx, []string{appt.PatientID, appt.CreatedBy}); err == nil {
		out.PatientName = names[appt.PatientID]
		out.CreatorName = names[appt.CreatedBy]
	} else {
		s.log.Warn("failed to load appointment names", zap.String("appointment_id", id), zap.Error(err))
	}

	if access.CanRead(actor, appt.PatientID, access.ResourceMedicalRecord, rel) {
		linked, err := s.records.LinkedRecord(ctx, actor, appt)
		if err != nil {
			return nil, err
		}
		out.LinkedRecord = linked
	}
	return out, nil
}

// Transition moves an appointment along booked → completed | cancelled.
// The caller must be the appointment's creator or able to read it. Strict
// recheck additionally requires write access under the current relationship.
func (s *AppointmentService) Transition(ctx context.Context, actor access.Actor, id string, next models.AppointmentStatus) (*models.Appointment, error) {
	ctx, end := withSpan(ctx, "AppointmentService.Transition")
	defer end()

	if actor.IsZero() {
		return nil, &access.PermissionError{Op: access.OpWrite, Resource: access.ResourceAppointment, Reason: "unauthenticated actor"}
	}
	if !next.IsValid() {
		return nil, invalid("status must be one of booked, completed, cancelled")
	}

	appt, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	rel, err := s.gate.relationship(ctx, actor, appt.PatientID)
	if err != nil {
		return nil, err
	}
	rel.Owner = appt.CreatedBy
	if rel.Owner != actor.ID {
		if err := s.gate.check(access.OpRead, actor, appt.PatientID, access.ResourceAppointment, rel); err != nil {
			return nil, err
		}
	}
	if s.strictRecheck {
		if err := s.gate.check(access.OpWrite, actor, appt.PatientID, access.ResourceAppointment, rel); err != nil {
			return nil, err
		}
	}

	if !appt.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%s → %s: %w", appt.Status, next, models.ErrInvalidStatusTransition)
	}

	appt.Status = next
	appt.UpdatedAt = now()
	err = s.store.Update(ctx, store.TableAppointments, map[string]any{
		"status":     appt.Status,
		"updated_at": appt.UpdatedAt,
	}, store.Eq("id", appt.ID))
	if err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AppointmentsTotal.WithLabelValues(string(next)).Inc()
	}
	s.log.Info("appointment status changed",
		zap.String("appointment_id", appt.ID),
		zap.String("status", string(next)),
		zap.String("changed_by", actor.ID),
	)
	return appt, nil
}

func (s *AppointmentService) get(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := store.SelectOne[models.Appointment](ctx, s.store, store.TableAppointments, store.Query{
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil {
		return nil, fmt.Errorf("loading appointment: %w", err)
	}
	if appt == nil {
		return nil, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	return appt, nil
}
