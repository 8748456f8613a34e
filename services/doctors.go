package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/access"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/store"
)

type DoctorService struct {
	store store.Store
	log   *zap.Logger
}

func NewDoctorService(st store.Store, log *zap.Logger) *DoctorService {
	return &DoctorService{store: st, log: log}
}

// Profile returns the doctor's professional profile, creating an empty one
// on first access.
func (s *DoctorService) Profile(ctx context.Context, actor access.Actor) (*models.DoctorProfile, error) {
	if err := requireRole(actor, models.RoleDoctor); err != nil {
		return nil, err
	}

	dp, err := s.profileByUser(ctx, actor.ID)
	if err != nil || dp != nil {
		return dp, err
	}

	ts := now()
	dp = &models.DoctorProfile{ID: uuid.NewString(), UserID: actor.ID, CreatedAt: ts, UpdatedAt: ts}
	if err := s.store.Insert(ctx, store.TableDoctorProfiles, dp); err != nil {
		return nil, fmt.Errorf("creating doctor profile: %w", err)
	}
	s.log.Info("doctor profile created", zap.String("user_id", actor.ID))
	return dp, nil
}

func (s *DoctorService) UpdateProfile(ctx context.Context, actor access.Actor, req *models.UpdateDoctorProfileRequest) (*models.DoctorProfile, error) {
	dp, err := s.Profile(ctx, actor)
	if err != nil {
		return nil, err
	}
	if req.YearsOfExperience != nil && (*req.YearsOfExperience < 0 || *req.YearsOfExperience > 80) {
		return nil, invalid("years_of_experience must be between 0 and 80")
	}

	values := map[string]any{}
	if req.Specialization != nil {
		dp.Specialization = req.Specialization
		values["specialization"] = *req.Specialization
	}
	if req.YearsOfExperience != nil {
		dp.YearsOfExperience = req.YearsOfExperience
		values["years_of_experience"] = *req.YearsOfExperience
	}
	if req.Bio != nil {
		dp.Bio = req.Bio
		values["bio"] = *req.Bio
	}
	if req.HealthcareOrganizationID != nil {
		orgID := *req.HealthcareOrganizationID
		if orgID == "" {
			dp.HealthcareOrganizationID = nil
			values["healthcare_organization_id"] = nil
		} else {
			dp.HealthcareOrganizationID = &orgID
			values["healthcare_organization_id"] = orgID
		}
	}
	if len(values) == 0 {
		return dp, nil
	}

	dp.UpdatedAt = now()
	values["updated_at"] = dp.UpdatedAt
	if err := s.store.Update(ctx, store.TableDoctorProfiles, values, store.Eq("id", dp.ID)); err != nil {
		return nil, fmt.Errorf("updating doctor profile: %w", err)
	}
	return dp, nil
}

func (s *DoctorService) AddAcademicRecord(ctx context.Context, actor access.Actor, req *models.CreateAcademicRecordRequest) (*models.AcademicRecord, error) {
	dp, err := s.Profile(ctx, actor)
	if err != nil {
		return nil, err
	}

	var fields []string
	if strings.TrimSpace(req.DegreeName) == "" {
		fields = append(fields, "degree_name is required")
	}
	if strings.TrimSpace(req.Institution) == "" {
		fields = append(fields, "institution is required")
	}
	if req.YearObtained < 1900 || req.YearObtained > time.Now().Year() {
		fields = append(fields, "year_obtained is out of range")
	}
	if len(fields) > 0 {
		return nil, invalid(fields...)
	}

	rec := &models.AcademicRecord{
		ID:             uuid.NewString(),
		DoctorID:       dp.ID,
		DegreeName:     strings.TrimSpace(req.DegreeName),
		Institution:    strings.TrimSpace(req.Institution),
		YearObtained:   req.YearObtained,
		CertificateURL: req.CertificateURL,
		CreatedAt:      now(),
	}
	if err := s.store.Insert(ctx, store.TableAcademicRecords, rec); err != nil {
		return nil, fmt.Errorf("creating academic record: %w", err)
	}
	return rec, nil
}

func (s *DoctorService) AcademicRecords(ctx context.Context, actor access.Actor) ([]models.AcademicRecord, error) {
	dp, err := s.Profile(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.academicRecords(ctx, []string{dp.ID})
}

// Directory is the public list of doctors with their organization and
// qualifications, ordered by name.
func (s *DoctorService) Directory(ctx context.Context) ([]models.DoctorDirectoryEntry, error) {
	profiles, err := store.SelectAll[models.DoctorProfile](ctx, s.store, store.TableDoctorProfiles, store.Query{})
	if err != nil {
		return nil, fmt.Errorf("listing doctor profiles: %w", err)
	}
	if len(profiles) == 0 {
		return []models.DoctorDirectoryEntry{}, nil
	}

	userIDs := make([]string, 0, len(profiles))
	profileIDs := make([]string, 0, len(profiles))
	orgIDs := make([]string, 0, len(profiles))
	for _, p := range profiles {
		userIDs = append(userIDs, p.UserID)
		profileIDs = append(profileIDs, p.ID)
		if p.HealthcareOrganizationID != nil {
			orgIDs = append(orgIDs, *p.HealthcareOrganizationID)
		}
	}

	accounts, err := store.SelectAll[models.Profile](ctx, s.store, store.TableProfiles, store.Query{
		Columns: "id,full_name,role",
		Filters: []store.Filter{store.In("id", uniqueStrings(userIDs))},
	})
	if err != nil {
		return nil, fmt.Errorf("loading doctor names: %w", err)
	}
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.FullName
	}

	orgNames := map[string]string{}
	if orgIDs = uniqueStrings(orgIDs); len(orgIDs) > 0 {
		orgs, err := store.SelectAll[models.HealthcareOrganization](ctx, s.store, store.TableHealthcareOrganizations, store.Query{
			Columns: "id,name",
			Filters: []store.Filter{store.In("id", orgIDs)},
		})
		if err != nil {
			return nil, fmt.Errorf("loading organizations: %w", err)
		}
		for _, o := range orgs {
			orgNames[o.ID] = o.Name
		}
	}

	academic, err := s.academicRecords(ctx, profileIDs)
	if err != nil {
		return nil, err
	}
	byDoctor := make(map[string][]models.AcademicRecord)
	for _, a := range academic {
		byDoctor[a.DoctorID] = append(byDoctor[a.DoctorID], a)
	}

	out := make([]models.DoctorDirectoryEntry, 0, len(profiles))
	for _, p := range profiles {
		entry := models.DoctorDirectoryEntry{
			DoctorProfile:   p,
			FullName:        names[p.UserID],
			AcademicRecords: byDoctor[p.ID],
		}
		if entry.AcademicRecords == nil {
			entry.AcademicRecords = []models.AcademicRecord{}
		}
		if p.HealthcareOrganizationID != nil {
			if name, ok := orgNames[*p.HealthcareOrganizationID]; ok {
				entry.OrganizationName = &name
			}
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (s *DoctorService) profileByUser(ctx context.Context, userID string) (*models.DoctorProfile, error) {
	dp, err := store.SelectOne[models.DoctorProfile](ctx, s.store, store.TableDoctorProfiles, store.Query{
		Filters: []store.Filter{store.Eq("user_id", userID)},
	})
	if err != nil {
		return nil, fmt.Errorf("loading doctor profile: %w", err)
	}
	return dp, nil
}

func (s *DoctorService) academicRecords(ctx context.Context, doctorIDs []string) ([]models.AcademicRecord, error) {
	recs, err := store.SelectAll[models.AcademicRecord](ctx, s.store, store.TableAcademicRecords, store.Query{
		Filters: []store.Filter{store.In("doctor_id", doctorIDs)},
		OrderBy: "year_obtained",
	})
	if err != nil {
		return nil, fmt.Errorf("loading academic records: %w", err)
	}
	return recs, nil
}

func requireRole(actor access.Actor, role models.Role) error {
	if actor.IsZero() || actor.Role != role {
		return &access.PermissionError{Op: access.OpWrite, Resource: access.Resource(role + "_profile"), Reason: "role may not perform this operation"}
	}
	return nil
}
