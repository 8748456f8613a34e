package services

import (
	"context"
	"fmt"

	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/store"
)

type OrganizationService struct {
	store    store.Store
	profiles *ProfileService
}

func NewOrganizationService(st store.Store, profiles *ProfileService) *OrganizationService {
	return &OrganizationService{store: st, profiles: profiles}
}

func (s *OrganizationService) List(ctx context.Context) ([]models.HealthcareOrganization, error) {
	orgs, err := store.SelectAll[models.HealthcareOrganization](ctx, s.store, store.TableHealthcareOrganizations, store.Query{
		OrderBy:   "name",
		Ascending: true,
	})
	if err != nil {
		return nil, fmt.Errorf("listing healthcare organizations: %w", err)
	}
	return orgs, nil
}

// Accounts lists the organization accounts a patient can grant access to.
func (s *OrganizationService) Accounts(ctx context.Context) ([]models.Profile, error) {
	return s.profiles.ByRole(ctx, models.RoleHealthcareOrganization)
}
