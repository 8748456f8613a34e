package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Byte-Craftsman-Alpha/Paranox/access"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/store"
)

type PatientProfileService struct {
	store store.Store
	gate  *gate
	log   *zap.Logger
}

func NewPatientProfileService(st store.Store, g *gate, log *zap.Logger) *PatientProfileService {
	return &PatientProfileService{store: st, gate: g, log: log}
}

// Get loads the patient profile and emergency details concurrently. The
// emergency details are visible to any signed-in account; the profile only
// to callers allowed to read it, otherwise it is left nil.
func (s *PatientProfileService) Get(ctx context.Context, actor access.Actor, patientID string) (*models.PatientHealthProfile, error) {
	patientID, err := patientScope(actor, patientID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.check(access.OpRead, actor, patientID, access.ResourceEmergencyDetails, access.Relationship{}); err != nil {
		return nil, err
	}
	rel, err := s.gate.relationship(ctx, actor, patientID)
	if err != nil {
		return nil, err
	}
	canReadProfile := access.CanRead(actor, patientID, access.ResourcePatientProfile, rel)

	var out models.PatientHealthProfile
	g, gctx := errgroup.WithContext(ctx)
	if canReadProfile {
		g.Go(func() error {
			p, err := store.SelectOne[models.PatientProfile](gctx, s.store, store.TablePatientProfiles, store.Query{
				Filters: []store.Filter{store.Eq("user_id", patientID)},
			})
			if err != nil {
				return fmt.Errorf("loading patient profile: %w", err)
			}
			out.Profile = p
			return nil
		})
	}
	g.Go(func() error {
		e, err := store.SelectOne[models.PatientEmergencyDetails](gctx, s.store, store.TablePatientEmergency, store.Query{
			Filters: []store.Filter{store.Eq("user_id", patientID)},
		})
		if err != nil {
			return fmt.Errorf("loading emergency details: %w", err)
		}
		out.Emergency = e
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Save upserts both rows concurrently, keyed on the patient's user id.
func (s *PatientProfileService) Save(ctx context.Context, actor access.Actor, req *models.SavePatientHealthProfileRequest) (*models.PatientHealthProfile, error) {
	if err := s.gate.check(access.OpWrite, actor, actor.ID, access.ResourcePatientProfile, access.Relationship{}); err != nil {
		return nil, err
	}
	if err := s.gate.check(access.OpWrite, actor, actor.ID, access.ResourceEmergencyDetails, access.Relationship{}); err != nil {
		return nil, err
	}
	if req.Profile.DateOfBirth != nil && *req.Profile.DateOfBirth != "" {
		if _, err := parseDate(*req.Profile.DateOfBirth); err != nil {
			return nil, invalid("date_of_birth must be YYYY-MM-DD")
		}
	}

	ts := now()
	profile := req.Profile
	profile.UserID = actor.ID
	profile.UpdatedAt = ts
	emergency := req.Emergency
	emergency.UserID = actor.ID
	emergency.UpdatedAt = ts

	existing, err := s.Get(ctx, actor, actor.ID)
	if err != nil {
		return nil, err
	}
	profile.CreatedAt, emergency.CreatedAt = ts, ts
	if existing.Profile != nil {
		profile.CreatedAt = existing.Profile.CreatedAt
	}
	if existing.Emergency != nil {
		emergency.CreatedAt = existing.Emergency.CreatedAt
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.store.Upsert(gctx, store.TablePatientProfiles, &profile, "user_id"); err != nil {
			return fmt.Errorf("saving patient profile: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.store.Upsert(gctx, store.TablePatientEmergency, &emergency, "user_id"); err != nil {
			return fmt.Errorf("saving emergency details: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Info("patient profile saved", zap.String("user_id", actor.ID))
	return &models.PatientHealthProfile{Profile: &profile, Emergency: &emergency}, nil
}
