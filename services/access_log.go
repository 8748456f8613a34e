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

const (
	AccessViewHistory      = "view_history"
	AccessViewLinkedRecord = "view_linked_record"
)

// AccessLogRecorder appends medical record access log rows. Writing a row
// is best effort: failures are logged and counted, never returned, so the
// read that triggered them always completes.
type AccessLogRecorder struct {
	store   store.Store
	metrics *metrics.Collector
	log     *zap.Logger
}

func NewAccessLogRecorder(st store.Store, m *metrics.Collector, log *zap.Logger) *AccessLogRecorder {
	return &AccessLogRecorder{store: st, metrics: m, log: log}
}

func (r *AccessLogRecorder) Record(ctx context.Context, actor access.Actor, recordID, accessType, logContext string) {
	entry := &models.MedicalRecordAccessLog{
		ID:              uuid.NewString(),
		MedicalRecordID: recordID,
		AccessedBy:      actor.ID,
		AccessedByRole:  actor.Role,
		AccessType:      accessType,
		AccessedAt:      now(),
	}
	if logContext != "" {
		entry.Context = &logContext
	}

	if err := r.store.Insert(ctx, store.TableAccessLogs, entry); err != nil {
		r.log.Warn("failed to write medical record access log",
			zap.String("medical_record_id", recordID),
			zap.String("accessed_by", actor.ID),
			zap.String("access_type", accessType),
			zap.Error(err),
		)
		if r.metrics != nil {
			r.metrics.AccessLogFailures.Inc()
		}
		return
	}
	if r.metrics != nil {
		r.metrics.AccessLogEntries.WithLabelValues(accessType).Inc()
	}
}

// AccessLogService lets a patient see who looked at their records.
type AccessLogService struct {
	store    store.Store
	profiles *ProfileService
	limit    int
	log      *zap.Logger
}

func NewAccessLogService(st store.Store, profiles *ProfileService, cfg config.AccessConfig, log *zap.Logger) *AccessLogService {
	limit := cfg.AccessLogLimit
	if limit <= 0 {
		limit = 50
	}
	return &AccessLogService{store: st, profiles: profiles, limit: limit, log: log}
}

func (s *AccessLogService) ListForPatient(ctx context.Context, actor access.Actor) ([]models.AccessLogWithAccessor, error) {
	if actor.Role != models.RolePatient {
		return nil, &access.PermissionError{Op: access.OpRead, Resource: access.ResourceMedicalRecord, Reason: "only patients can review their access log"}
	}

	recs, err := store.SelectAll[models.MedicalRecord](ctx, s.store, store.TableMedicalRecords, store.Query{
		Columns: "id,title",
		Filters: []store.Filter{store.Eq("patient_id", actor.ID)},
	})
	if err != nil {
		return nil, fmt.Errorf("loading patient records: %w", err)
	}
	if len(recs) == 0 {
		return []models.AccessLogWithAccessor{}, nil
	}

	titles := make(map[string]string, len(recs))
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		titles[r.ID] = r.Title
		ids = append(ids, r.ID)
	}

	logs, err := store.SelectAll[models.MedicalRecordAccessLog](ctx, s.store, store.TableAccessLogs, store.Query{
		Filters: []store.Filter{store.In("medical_record_id", ids)},
		OrderBy: "accessed_at",
		Limit:   s.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("loading access logs: %w", err)
	}

	accessorIDs := make([]string, 0, len(logs))
	for _, l := range logs {
		accessorIDs = append(accessorIDs, l.AccessedBy)
	}
	names, err := s.profiles.Names(ctx, accessorIDs)
	if err != nil {
		// Names are decoration; the log itself is still returned.
		s.log.Warn("failed to load accessor names", zap.Error(err))
		names = map[string]string{}
	}

	out := make([]models.AccessLogWithAccessor, 0, len(logs))
	for _, l := range logs {
		out = append(out, models.AccessLogWithAccessor{
			MedicalRecordAccessLog: l,
			AccessorName:           names[l.AccessedBy],
			RecordTitle:            titles[l.MedicalRecordID],
		})
	}
	return out, nil
}
