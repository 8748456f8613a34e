package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/access"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/store"
)

type ProfileService struct {
	store store.Store
	log   *zap.Logger
}

func NewProfileService(st store.Store, log *zap.Logger) *ProfileService {
	return &ProfileService{store: st, log: log}
}

// Get returns nil without error when the user has no profile yet.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := store.SelectOne[models.Profile](ctx, s.store, store.TableProfiles, store.Query{
		Filters: []store.Filter{store.Eq("id", userID)},
	})
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return p, nil
}

func (s *ProfileService) Create(ctx context.Context, userID string, req *models.CreateProfileRequest) (*models.Profile, error) {
	var fields []string
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		fields = append(fields, "full_name is required")
	}
	if !req.Role.IsValid() {
		fields = append(fields, "role must be one of doctor, patient, healthcare_organization")
	}
	if len(fields) > 0 {
		return nil, invalid(fields...)
	}

	existing, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrProfileExists
	}

	ts := now()
	p := &models.Profile{ID: userID, FullName: name, Role: req.Role, CreatedAt: ts, UpdatedAt: ts}
	if err := s.store.Insert(ctx, store.TableProfiles, p); err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	s.log.Info("profile created", zap.String("user_id", userID), zap.String("role", string(p.Role)))
	return p, nil
}

func (s *ProfileService) Update(ctx context.Context, actor access.Actor, req *models.UpdateProfileRequest) (*models.Profile, error) {
	if req.Role != nil && *req.Role != actor.Role {
		return nil, ErrRoleImmutable
	}
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return nil, invalid("full_name is required")
	}

	p, err := s.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("profile %s: %w", actor.ID, ErrNotFound)
	}

	p.FullName = name
	p.UpdatedAt = now()
	err = s.store.Update(ctx, store.TableProfiles, map[string]any{
		"full_name":  p.FullName,
		"updated_at": p.UpdatedAt,
	}, store.Eq("id", actor.ID))
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return p, nil
}

// Names maps profile ids to full names. Unknown ids are left out.
func (s *ProfileService) Names(ctx context.Context, ids []string) (map[string]string, error) {
	profiles, err := s.byIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.FullName
	}
	return names, nil
}

func (s *ProfileService) byIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	ids = uniqueStrings(ids)
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	profiles, err := store.SelectAll[models.Profile](ctx, s.store, store.TableProfiles, store.Query{
		Columns: "id,full_name,role",
		Filters: []store.Filter{store.In("id", ids)},
	})
	if err != nil {
		return nil, fmt.Errorf("loading profiles: %w", err)
	}
	return profiles, nil
}

// ByRole lists accounts of one role ordered by name, e.g. the organizations
// a patient can grant access to.
func (s *ProfileService) ByRole(ctx context.Context, role models.Role) ([]models.Profile, error) {
	profiles, err := store.SelectAll[models.Profile](ctx, s.store, store.TableProfiles, store.Query{
		Columns:   "id,full_name,role",
		Filters:   []store.Filter{store.Eq("role", role)},
		OrderBy:   "full_name",
		Ascending: true,
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s profiles: %w", role, err)
	}
	return profiles, nil
}
