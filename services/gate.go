package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/access"
	"github.com/Byte-Craftsman-Alpha/Paranox/metrics"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/store"
)

// gate loads the link and grant rows between an actor and a patient and
// runs the access rules over them.
type gate struct {
	store   store.Store
	metrics *metrics.Collector
	log     *zap.Logger
}

func newGate(st store.Store, m *metrics.Collector, log *zap.Logger) *gate {
	return &gate{store: st, metrics: m, log: log}
}

func (g *gate) relationship(ctx context.Context, actor access.Actor, patientID string) (access.Relationship, error) {
	var rel access.Relationship
	if !isProvider(actor) || patientID == "" {
		return rel, nil
	}

	link, err := g.link(ctx, actor.ID, patientID)
	if err != nil {
		return rel, err
	}
	rel.Link = link

	if actor.Role == models.RoleHealthcareOrganization {
		grant, err := g.grant(ctx, actor.ID, patientID)
		if err != nil {
			return rel, err
		}
		rel.Grant = grant
	}
	return rel, nil
}

// link returns the provider's link to the patient, preferring one that
// allows writing when several exist.
func (g *gate) link(ctx context.Context, providerID, patientID string) (*models.DoctorPatientLink, error) {
	links, err := store.SelectAll[models.DoctorPatientLink](ctx, g.store, store.TableDoctorPatients, store.Query{
		Filters: []store.Filter{store.Eq("doctor_id", providerID), store.Eq("patient_id", patientID)},
		OrderBy: "created_at",
	})
	if err != nil {
		return nil, fmt.Errorf("loading doctor-patient link: %w", err)
	}
	if len(links) == 0 {
		return nil, nil
	}
	for i := range links {
		if links[i].Status.GrantsWrite() {
			return &links[i], nil
		}
	}
	return &links[0], nil
}

func (g *gate) grant(ctx context.Context, organizationID, patientID string) (*models.PatientOrganizationAccess, error) {
	grant, err := store.SelectOne[models.PatientOrganizationAccess](ctx, g.store, store.TablePatientOrgAccess, store.Query{
		Filters: []store.Filter{store.Eq("patient_id", patientID), store.Eq("organization_id", organizationID)},
	})
	if err != nil {
		return nil, fmt.Errorf("loading organization access: %w", err)
	}
	return grant, nil
}

func (g *gate) check(op access.Op, actor access.Actor, patientID string, res access.Resource, rel access.Relationship) error {
	err := access.Authorize(op, actor, patientID, res, rel)
	outcome := "allow"
	if err != nil {
		outcome = "deny"
		g.log.Info("access denied",
			zap.String("actor_id", actor.ID),
			zap.String("role", string(actor.Role)),
			zap.String("op", string(op)),
			zap.String("resource", string(res)),
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
	}
	if g.metrics != nil {
		g.metrics.AccessDecisions.WithLabelValues(string(res), string(op), outcome).Inc()
	}
	return err
}

// authorize loads the relationship and checks it in one step.
func (g *gate) authorize(ctx context.Context, op access.Op, actor access.Actor, patientID string, res access.Resource) (access.Relationship, error) {
	rel, err := g.relationship(ctx, actor, patientID)
	if err != nil {
		return rel, err
	}
	return rel, g.check(op, actor, patientID, res, rel)
}
