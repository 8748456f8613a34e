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

type GrantService struct {
	store    store.Store
	gate     *gate
	profiles *ProfileService
	log      *zap.Logger
}

func NewGrantService(st store.Store, g *gate, profiles *ProfileService, log *zap.Logger) *GrantService {
	return &GrantService{store: st, gate: g, profiles: profiles, log: log}
}

// Grant opens the patient's records to an organization. Granting again
// after a revocation reopens the same row.
func (s *GrantService) Grant(ctx context.Context, actor access.Actor, organizationID string) (*models.PatientOrganizationAccess, error) {
	ctx, end := withSpan(ctx, "GrantService.Grant")
	defer end()

	if err := s.checkPatient(actor, actor.ID); err != nil {
		return nil, err
	}
	if organizationID == "" {
		return nil, invalid("organization_id is required")
	}
	org, err := s.profiles.Get(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if org == nil || org.Role != models.RoleHealthcareOrganization {
		return nil, invalid("organization_id does not belong to a healthcare organization")
	}

	existing, err := s.gate.grant(ctx, organizationID, actor.ID)
	if err != nil {
		return nil, err
	}

	ts := now()
	grant := &models.PatientOrganizationAccess{
		ID:             uuid.NewString(),
		PatientID:      actor.ID,
		OrganizationID: organizationID,
		HasAccess:      true,
		GrantedAt:      ts,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	if existing != nil {
		grant.ID = existing.ID
		grant.CreatedAt = existing.CreatedAt
	}

	if err := s.store.Upsert(ctx, store.TablePatientOrgAccess, grant, "patient_id,organization_id"); err != nil {
		return nil, fmt.Errorf("granting organization access: %w", err)
	}

	s.log.Info("organization access granted",
		zap.String("patient_id", actor.ID),
		zap.String("organization_id", organizationID),
	)
	return grant, nil
}

// Revoke closes a grant. The row stays, with has_access false and
// revoked_at set.
func (s *GrantService) Revoke(ctx context.Context, actor access.Actor, grantID string) (*models.PatientOrganizationAccess, error) {
	ctx, end := withSpan(ctx, "GrantService.Revoke")
	defer end()

	grant, err := store.SelectOne[models.PatientOrganizationAccess](ctx, s.store, store.TablePatientOrgAccess, store.Query{
		Filters: []store.Filter{store.Eq("id", grantID)},
	})
	if err != nil {
		return nil, fmt.Errorf("loading organization access: %w", err)
	}
	if grant == nil {
		return nil, fmt.Errorf("organization access %s: %w", grantID, ErrNotFound)
	}
	if err := s.checkPatient(actor, grant.PatientID); err != nil {
		return nil, err
	}

	ts := now()
	grant.HasAccess = false
	grant.RevokedAt = &ts
	grant.UpdatedAt = ts
	err = s.store.Update(ctx, store.TablePatientOrgAccess, map[string]any{
		"has_access": false,
		"revoked_at": ts,
		"updated_at": ts,
	}, store.Eq("id", grant.ID))
	if err != nil {
		return nil, fmt.Errorf("revoking organization access: %w", err)
	}

	s.log.Info("organization access revoked",
		zap.String("patient_id", grant.PatientID),
		zap.String("organization_id", grant.OrganizationID),
	)
	return grant, nil
}

// List shows a patient their grants, and an organization the patients that
// currently share records with it.
func (s *GrantService) List(ctx context.Context, actor access.Actor) ([]models.GrantWithNames, error) {
	q := store.Query{OrderBy: "granted_at"}
	switch actor.Role {
	case models.RolePatient:
		q.Filters = []store.Filter{store.Eq("patient_id", actor.ID)}
	case models.RoleHealthcareOrganization:
		q.Filters = []store.Filter{store.Eq("organization_id", actor.ID), store.Eq("has_access", true)}
	default:
		return nil, &access.PermissionError{Op: access.OpRead, Resource: access.ResourceGrant, Reason: "role may not perform this operation"}
	}

	grants, err := store.SelectAll[models.PatientOrganizationAccess](ctx, s.store, store.TablePatientOrgAccess, q)
	if err != nil {
		return nil, fmt.Errorf("listing organization access: %w", err)
	}

	ids := make([]string, 0, len(grants)*2)
	for _, g := range grants {
		ids = append(ids, g.PatientID, g.OrganizationID)
	}
	names, err := s.profiles.Names(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.GrantWithNames, 0, len(grants))
	for _, g := range grants {
		out = append(out, models.GrantWithNames{
			PatientOrganizationAccess: g,
			OrganizationName:          names[g.OrganizationID],
			PatientName:               names[g.PatientID],
		})
	}
	return out, nil
}

func (s *GrantService) checkPatient(actor access.Actor, patientID string) error {
	if actor.Role != models.RolePatient {
		return &access.PermissionError{Op: access.OpWrite, Resource: access.ResourceGrant, Reason: "only patients control organization access"}
	}
	return s.gate.check(access.OpWrite, actor, patientID, access.ResourceGrant, access.Relationship{})
}
