package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/access"
	"github.com/Byte-Craftsman-Alpha/Paranox/config"
	"github.com/Byte-Craftsman-Alpha/Paranox/metrics"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/records"
	"github.com/Byte-Craftsman-Alpha/Paranox/storage"
	"github.com/Byte-Craftsman-Alpha/Paranox/store"
)

// Attachment is a file uploaded together with a new medical record.
type Attachment struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type MedicalRecordService struct {
	store      store.Store
	objects    storage.ObjectStore
	gate       *gate
	recorder   *AccessLogRecorder
	storage    config.StorageConfig
	candidates int
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewMedicalRecordService(
	st store.Store,
	objects storage.ObjectStore,
	g *gate,
	recorder *AccessLogRecorder,
	storageCfg config.StorageConfig,
	accessCfg config.AccessConfig,
	m *metrics.Collector,
	log *zap.Logger,
) *MedicalRecordService {
	candidates := accessCfg.LinkageCandidates
	if candidates <= 0 {
		candidates = records.MaxLinkageCandidates
	}
	return &MedicalRecordService{
		store:      st,
		objects:    objects,
		gate:       g,
		recorder:   recorder,
		storage:    storageCfg,
		candidates: candidates,
		metrics:    m,
		log:        log,
	}
}

// Create authorizes the write, uploads the optional attachment and then
// inserts the record. The two steps are not atomic: if the insert fails
// the uploaded object stays behind unless orphan compensation is enabled.
func (s *MedicalRecordService) Create(ctx context.Context, actor access.Actor, req *models.CreateMedicalRecordRequest, file *Attachment) (*models.MedicalRecord, error) {
	ctx, span := tracer.Start(ctx, "MedicalRecordService.Create")
	defer span.End()

	patientID, err := patientScope(actor, req.PatientID)
	if err != nil {
		return nil, err
	}
	if err := validateRecordRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.gate.authorize(ctx, access.OpWrite, actor, patientID, access.ResourceMedicalRecord); err != nil {
		return nil, err
	}

	ts := now()
	rec := &models.MedicalRecord{
		ID:         uuid.NewString(),
		PatientID:  patientID,
		Title:      strings.TrimSpace(req.Title),
		RecordDate: req.RecordDate,
		RecordType: req.RecordType,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if rec.RecordType == "" {
		rec.RecordType = models.RecordGeneral
	}
	if isProvider(actor) {
		rec.DoctorID = &actor.ID
	}
	if desc := describe(req); desc != "" {
		rec.Description = &desc
	}

	var uploaded string
	if file != nil {
		uploaded = storage.ObjectPath(patientID, file.Name, ts)
		if err := s.objects.Upload(ctx, uploaded, file.Body, file.ContentType); err != nil {
			return nil, fmt.Errorf("uploading attachment: %w", err)
		}
		rec.FileURL = &uploaded
	}

	if err := s.store.Insert(ctx, store.TableMedicalRecords, rec); err != nil {
		if uploaded != "" {
			s.handleOrphan(ctx, uploaded, err)
		}
		return nil, fmt.Errorf("creating medical record: %w", err)
	}

	span.SetAttributes(attribute.String("record.id", rec.ID), attribute.String("record.type", string(rec.RecordType)))
	if s.metrics != nil {
		s.metrics.RecordsCreated.WithLabelValues(string(rec.RecordType)).Inc()
	}
	s.log.Info("medical record created",
		zap.String("record_id", rec.ID),
		zap.String("patient_id", patientID),
		zap.String("author_id", actor.ID),
		zap.Bool("attachment", uploaded != ""),
	)
	return rec, nil
}

func (s *MedicalRecordService) handleOrphan(ctx context.Context, objectPath string, insertErr error) {
	if !s.storage.CompensateOrphans {
		if s.metrics != nil {
			s.metrics.OrphanedUploads.Inc()
		}
		s.log.Warn("medical record insert failed, attachment left in storage",
			zap.String("object_path", objectPath),
			zap.Error(insertErr),
		)
		return
	}

	if err := s.objects.Remove(ctx, objectPath); err != nil {
		if s.metrics != nil {
			s.metrics.OrphanedUploads.Inc()
		}
		s.log.Error("failed to remove orphaned attachment", zap.String("object_path", objectPath), zap.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.CompensatedUploads.Inc()
	}
}

// History lists a patient's records, newest first. Each record a provider
// sees is written to the access log.
func (s *MedicalRecordService) History(ctx context.Context, actor access.Actor, patientID string) ([]models.MedicalRecord, error) {
	ctx, span := tracer.Start(ctx, "MedicalRecordService.History")
	defer span.End()

	patientID, err := patientScope(actor, patientID)
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.authorize(ctx, access.OpRead, actor, patientID, access.ResourceMedicalRecord); err != nil {
		return nil, err
	}

	recs, err := store.SelectAll[models.MedicalRecord](ctx, s.store, store.TableMedicalRecords, store.Query{
		Filters: []store.Filter{store.Eq("patient_id", patientID)},
		OrderBy: "record_date",
	})
	if err != nil {
		return nil, fmt.Errorf("listing medical records: %w", err)
	}

	if isProvider(actor) {
		for _, r := range recs {
			s.recorder.Record(ctx, actor, r.ID, AccessViewHistory, "patient:"+patientID)
		}
	}
	span.SetAttributes(attribute.Int("records.count", len(recs)))
	return recs, nil
}

// AttachmentURL resolves the public URL of a record's stored attachment.
func (s *MedicalRecordService) AttachmentURL(ctx context.Context, actor access.Actor, recordID string) (string, error) {
	rec, err := store.SelectOne[models.MedicalRecord](ctx, s.store, store.TableMedicalRecords, store.Query{
		Filters: []store.Filter{store.Eq("id", recordID)},
	})
	if err != nil {
		return "", fmt.Errorf("loading medical record: %w", err)
	}
	if rec == nil {
		return "", fmt.Errorf("medical record %s: %w", recordID, ErrNotFound)
	}
	if _, err := s.gate.authorize(ctx, access.OpRead, actor, rec.PatientID, access.ResourceMedicalRecord); err != nil {
		return "", err
	}
	if rec.FileURL == nil || *rec.FileURL == "" {
		return "", fmt.Errorf("attachment of medical record %s: %w", recordID, ErrNotFound)
	}
	return s.objects.PublicURL(*rec.FileURL), nil
}

// LinkedRecord finds the record dated closest to the appointment among the
// patient's most recent records. When a provider views it, exactly one
// access log row referencing the appointment is written.
func (s *MedicalRecordService) LinkedRecord(ctx context.Context, actor access.Actor, appt *models.Appointment) (*models.MedicalRecord, error) {
	ctx, span := tracer.Start(ctx, "MedicalRecordService.LinkedRecord", trace.WithAttributes(attribute.String("appointment.id", appt.ID)))
	defer span.End()

	recent, err := store.SelectAll[models.MedicalRecord](ctx, s.store, store.TableMedicalRecords, store.Query{
		Filters: []store.Filter{store.Eq("patient_id", appt.PatientID)},
		OrderBy: "record_date",
		Limit:   s.candidates,
	})
	if err != nil {
		return nil, fmt.Errorf("loading recent medical records: %w", err)
	}

	linked := records.NearestRecord(recent, appt.AppointmentDate)
	if linked == nil {
		return nil, nil
	}
	if isProvider(actor) {
		s.recorder.Record(ctx, actor, linked.ID, AccessViewLinkedRecord, "appointment:"+appt.ID)
	}
	return linked, nil
}

func describe(req *models.CreateMedicalRecordRequest) string {
	if d := strings.TrimSpace(req.Description); d != "" {
		return d
	}
	return records.ComposeDescription(records.Sections{
		IssuingHospital: req.IssuingHospital,
		Objective:       req.Objective,
		Diagnosis:       req.Diagnosis,
		Prescriptions:   req.Prescriptions,
		Medicines:       req.Medicines,
		Tests:           req.Tests,
		FollowUp:        req.FollowUp,
		Notes:           req.Notes,
	})
}

func validateRecordRequest(req *models.CreateMedicalRecordRequest) error {
	var fields []string
	if strings.TrimSpace(req.Title) == "" {
		fields = append(fields, "title is required")
	}
	if req.RecordDate == "" {
		fields = append(fields, "record_date is required")
	} else if _, err := parseDate(req.RecordDate); err != nil {
		fields = append(fields, "record_date must be YYYY-MM-DD")
	}
	if len(fields) > 0 {
		return invalid(fields...)
	}
	return nil
}
