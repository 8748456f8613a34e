// Package services holds the use cases of the records backend. Every
// operation takes the calling access.Actor explicitly, loads the
// relationship rows it needs, asks the access package for a decision and
// only then touches the store.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/access"
	"github.com/Byte-Craftsman-Alpha/Paranox/config"
	"github.com/Byte-Craftsman-Alpha/Paranox/metrics"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/storage"
	"github.com/Byte-Craftsman-Alpha/Paranox/store"
)

var tracer = otel.Tracer("github.com/Byte-Craftsman-Alpha/Paranox/services")

type Services struct {
	Profiles        *ProfileService
	Directory       *DirectoryService
	Links           *LinkService
	Grants          *GrantService
	MedicalRecords  *MedicalRecordService
	Appointments    *AppointmentService
	AccessLogs      *AccessLogService
	Recorder        *AccessLogRecorder
	Doctors         *DoctorService
	Organizations   *OrganizationService
	PatientProfiles *PatientProfileService
}

func New(st store.Store, objects storage.ObjectStore, cfg *config.Config, m *metrics.Collector, log *zap.Logger) *Services {
	gate := newGate(st, m, log)
	profiles := NewProfileService(st, log)
	recorder := NewAccessLogRecorder(st, m, log)
	medicalRecords := NewMedicalRecordService(st, objects, gate, recorder, cfg.Storage, cfg.Access, m, log)

	return &Services{
		Profiles:        profiles,
		Directory:       NewDirectoryService(st, gate, log),
		Links:           NewLinkService(st, gate, profiles, log),
		Grants:          NewGrantService(st, gate, profiles, log),
		MedicalRecords:  medicalRecords,
		Appointments:    NewAppointmentService(st, gate, medicalRecords, profiles, cfg.Access, m, log),
		AccessLogs:      NewAccessLogService(st, profiles, cfg.Access, log),
		Recorder:        recorder,
		Doctors:         NewDoctorService(st, log),
		Organizations:   NewOrganizationService(st, profiles),
		PatientProfiles: NewPatientProfileService(st, gate, log),
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func today() string {
	return now().Format("2006-01-02")
}

func isProvider(actor access.Actor) bool {
	return actor.Role == models.RoleDoctor || actor.Role == models.RoleHealthcareOrganization
}

// patientScope resolves which patient an operation is about: patients
// always act on themselves, providers must name the patient.
func patientScope(actor access.Actor, patientID string) (string, error) {
	if !isProvider(actor) {
		if patientID == "" {
			return actor.ID, nil
		}
		return patientID, nil
	}
	if patientID == "" {
		return "", invalid("patient_id is required")
	}
	return patientID, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func withSpan(ctx context.Context, name string) (context.Context, func()) {
	ctx, span := tracer.Start(ctx, name)
	return ctx, func() { span.End() }
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
