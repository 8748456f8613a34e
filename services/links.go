package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/access"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/store"
)

type LinkService struct {
	store    store.Store
	gate     *gate
	profiles *ProfileService
	log      *zap.Logger
}

func NewLinkService(st store.Store, g *gate, profiles *ProfileService, log *zap.Logger) *LinkService {
	return &LinkService{store: st, gate: g, profiles: profiles, log: log}
}

// Request records a provider's request to care for a patient. The link
// always starts pending and needs the patient's approval before it lets the
// provider author records.
func (s *LinkService) Request(ctx context.Context, actor access.Actor, req *models.CreateLinkRequest) (*models.DoctorPatientLink, error) {
	ctx, end := withSpan(ctx, "LinkService.Request")
	defer end()

	if req.PatientID == "" {
		return nil, invalid("patient_id is required")
	}
	admission := req.AdmissionDate
	if admission == "" {
		admission = today()
	} else if _, err := parseDate(admission); err != nil {
		return nil, invalid("admission_date must be YYYY-MM-DD")
	}

	ts := now()
	link := &models.DoctorPatientLink{
		ID:            uuid.NewString(),
		DoctorID:      actor.ID,
		PatientID:     req.PatientID,
		Status:        models.LinkPending,
		AdmissionDate: admission,
		Notes:         req.Notes,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	if err := s.gate.check(access.OpWrite, actor, req.PatientID, access.ResourceLink, access.Relationship{Link: link}); err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, store.TableDoctorPatients, link); err != nil {
		return nil, fmt.Errorf("creating doctor-patient link: %w", err)
	}

	s.log.Info("doctor-patient link requested",
		zap.String("link_id", link.ID),
		zap.String("doctor_id", actor.ID),
		zap.String("patient_id", req.PatientID),
	)
	return link, nil
}

// List returns the caller's links: a provider sees its patients, a patient
// sees the providers caring for them.
func (s *LinkService) List(ctx context.Context, actor access.Actor) ([]models.LinkWithNames, error) {
	column := "doctor_id"
	if !isProvider(actor) {
		column = "patient_id"
	}
	links, err := store.SelectAll[models.DoctorPatientLink](ctx, s.store, store.TableDoctorPatients, store.Query{
		Filters: []store.Filter{store.Eq(column, actor.ID)},
		OrderBy: "admission_date",
	})
	if err != nil {
		return nil, fmt.Errorf("listing doctor-patient links: %w", err)
	}

	ids := make([]string, 0, len(links)*2)
	doctorIDs := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.DoctorID, l.PatientID)
		doctorIDs = append(doctorIDs, l.DoctorID)
	}
	names, err := s.profiles.Names(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := map[string]models.DoctorProfile{}
	if !isProvider(actor) && len(doctorIDs) > 0 {
		dps, err := store.SelectAll[models.DoctorProfile](ctx, s.store, store.TableDoctorProfiles, store.Query{
			Filters: []store.Filter{store.In("user_id", uniqueStrings(doctorIDs))},
		})
		if err != nil {
			return nil, fmt.Errorf("loading doctor profiles: %w", err)
		}
		for _, dp := range dps {
			details[dp.UserID] = dp
		}
	}

	out := make([]models.LinkWithNames, 0, len(links))
	for _, l := range links {
		item := models.LinkWithNames{
			DoctorPatientLink: l,
			DoctorName:        names[l.DoctorID],
			PatientName:       names[l.PatientID],
		}
		if dp, ok := details[l.DoctorID]; ok {
			item.Specialization = dp.Specialization
			item.YearsOfExperience = dp.YearsOfExperience
		}
		out = append(out, item)
	}
	return out, nil
}

// Approve is the patient's consent to a pending link.
func (s *LinkService) Approve(ctx context.Context, actor access.Actor, linkID string) (*models.DoctorPatientLink, error) {
	link, err := s.get(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RolePatient {
		return nil, &access.PermissionError{Op: access.OpWrite, Resource: access.ResourceLink, Reason: "only the patient can approve a link"}
	}
	if err := s.gate.check(access.OpWrite, actor, link.PatientID, access.ResourceLink, access.Relationship{Link: link}); err != nil {
		return nil, err
	}
	if link.Status != models.LinkPending {
		return nil, fmt.Errorf("approve link in status %s: %w", link.Status, ErrInvalidLinkTransition)
	}

	link.Status = models.LinkApproved
	link.UpdatedAt = now()
	if err := s.setStatus(ctx, link, nil); err != nil {
		return nil, err
	}
	return link, nil
}

// Discharge ends the care relationship; the provider loses write access.
func (s *LinkService) Discharge(ctx context.Context, actor access.Actor, linkID string) (*models.DoctorPatientLink, error) {
	link, err := s.get(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.check(access.OpWrite, actor, link.PatientID, access.ResourceLink, access.Relationship{Link: link}); err != nil {
		return nil, err
	}
	if !isProvider(actor) {
		return nil, &access.PermissionError{Op: access.OpWrite, Resource: access.ResourceLink, Reason: "only the provider can discharge a patient"}
	}
	if link.Status == models.LinkDischarged {
		return nil, fmt.Errorf("discharge link in status %s: %w", link.Status, ErrInvalidLinkTransition)
	}

	discharged := today()
	link.Status = models.LinkDischarged
	link.DischargeDate = &discharged
	link.UpdatedAt = now()
	if err := s.setStatus(ctx, link, map[string]any{"discharge_date": discharged}); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *LinkService) get(ctx context.Context, id string) (*models.DoctorPatientLink, error) {
	link, err := store.SelectOne[models.DoctorPatientLink](ctx, s.store, store.TableDoctorPatients, store.Query{
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil {
		return nil, fmt.Errorf("loading doctor-patient link: %w", err)
	}
	if link == nil {
		return nil, fmt.Errorf("doctor-patient link %s: %w", id, ErrNotFound)
	}
	return link, nil
}

func (s *LinkService) setStatus(ctx context.Context, link *models.DoctorPatientLink, extra map[string]any) error {
	values := map[string]any{"status": link.Status, "updated_at": link.UpdatedAt}
	for k, v := range extra {
		values[k] = v
	}
	if err := s.store.Update(ctx, store.TableDoctorPatients, values, store.Eq("id", link.ID)); err != nil {
		return fmt.Errorf("updating doctor-patient link: %w", err)
	}
	s.log.Info("doctor-patient link status changed", zap.String("link_id", link.ID), zap.String("status", string(link.Status)))
	return nil
}
