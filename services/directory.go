package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/access"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/store"
)

// DirectoryService manages the private patient lists doctors and
// organizations keep. Rows are only ever visible to their creator.
type DirectoryService struct {
	store store.Store
	gate  *gate
	log   *zap.Logger
}

func NewDirectoryService(st store.Store, g *gate, log *zap.Logger) *DirectoryService {
	return &DirectoryService{store: st, gate: g, log: log}
}

func (s *DirectoryService) List(ctx context.Context, actor access.Actor) ([]models.PatientRecord, error) {
	if err := s.gate.check(access.OpRead, actor, "", access.ResourceDirectoryPatient, access.Relationship{Owner: actor.ID}); err != nil {
		return nil, err
	}
	rows, err := store.SelectAll[models.PatientRecord](ctx, s.store, store.TablePatients, store.Query{
		Filters:   []store.Filter{store.Eq("created_by", actor.ID)},
		OrderBy:   "full_name",
		Ascending: true,
	})
	if err != nil {
		return nil, fmt.Errorf("listing directory patients: %w", err)
	}
	return rows, nil
}

func (s *DirectoryService) Create(ctx context.Context, actor access.Actor, req *models.PatientRecordRequest) (*models.PatientRecord, error) {
	if err := s.gate.check(access.OpWrite, actor, "", access.ResourceDirectoryPatient, access.Relationship{Owner: actor.ID}); err != nil {
		return nil, err
	}
	if err := validatePatientRecord(req); err != nil {
		return nil, err
	}

	ts := now()
	row := &models.PatientRecord{
		ID:          uuid.NewString(),
		FullName:    strings.TrimSpace(req.FullName),
		DateOfBirth: req.DateOfBirth,
		Phone:       req.Phone,
		Email:       req.Email,
		Notes:       req.Notes,
		CreatedBy:   actor.ID,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.store.Insert(ctx, store.TablePatients, row); err != nil {
		return nil, fmt.Errorf("creating directory patient: %w", err)
	}
	return row, nil
}

func (s *DirectoryService) Update(ctx context.Context, actor access.Actor, id string, req *models.PatientRecordRequest) (*models.PatientRecord, error) {
	row, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := validatePatientRecord(req); err != nil {
		return nil, err
	}

	row.FullName = strings.TrimSpace(req.FullName)
	row.DateOfBirth = req.DateOfBirth
	row.Phone = req.Phone
	row.Email = req.Email
	row.Notes = req.Notes
	row.UpdatedAt = now()

	err = s.store.Update(ctx, store.TablePatients, map[string]any{
		"full_name":     row.FullName,
		"date_of_birth": row.DateOfBirth,
		"phone":         row.Phone,
		"email":         row.Email,
		"notes":         row.Notes,
		"updated_at":    row.UpdatedAt,
	}, store.Eq("id", id), store.Eq("created_by", actor.ID))
	if err != nil {
		return nil, fmt.Errorf("updating directory patient: %w", err)
	}
	return row, nil
}

func (s *DirectoryService) Delete(ctx context.Context, actor access.Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, store.TablePatients, store.Eq("id", id), store.Eq("created_by", actor.ID)); err != nil {
		return fmt.Errorf("deleting directory patient: %w", err)
	}
	return nil
}

func (s *DirectoryService) owned(ctx context.Context, actor access.Actor, id string) (*models.PatientRecord, error) {
	row, err := store.SelectOne[models.PatientRecord](ctx, s.store, store.TablePatients, store.Query{
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil {
		return nil, fmt.Errorf("loading directory patient: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("directory patient %s: %w", id, ErrNotFound)
	}
	if err := s.gate.check(access.OpWrite, actor, "", access.ResourceDirectoryPatient, access.Relationship{Owner: row.CreatedBy}); err != nil {
		return nil, err
	}
	return row, nil
}

func validatePatientRecord(req *models.PatientRecordRequest) error {
	var fields []string
	if strings.TrimSpace(req.FullName) == "" {
		fields = append(fields, "full_name is required")
	}
	if req.DateOfBirth == "" {
		fields = append(fields, "date_of_birth is required")
	} else if _, err := parseDate(req.DateOfBirth); err != nil {
		fields = append(fields, "date_of_birth must be YYYY-MM-DD")
	}
	if len(fields) > 0 {
		return invalid(fields...)
	}
	return nil
}
