package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/access"
	"github.com/Byte-Craftsman-Alpha/Paranox/config"
	"github.com/Byte-Craftsman-Alpha/Paranox/metrics"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/storage"
	"github.com/Byte-Craftsman-Alpha/Paranox/store"
)

var (
	patient  = access.Actor{ID: "patient-1", Role: models.RolePatient}
	stranger = access.Actor{ID: "patient-2", Role: models.RolePatient}
	doctor   = access.Actor{ID: "doctor-1", Role: models.RoleDoctor}
	org      = access.Actor{ID: "org-1", Role: models.RoleHealthcareOrganization}
)

// failingStore fails every insert into one table.
type failingStore struct {
	store.Store
	table string
}

func (f *failingStore) Insert(ctx context.Context, table string, row any) error {
	if table == f.table {
		return errors.New("insert rejected")
	}
	return f.Store.Insert(ctx, table, row)
}

type testEnv struct {
	mem     *store.MemoryStore
	objects *storage.MemoryStorage
	metrics *metrics.Collector
	svcs    *Services
}

type envOption func(*config.Config, *store.Store)

func withStrictRecheck() envOption {
	return func(c *config.Config, _ *store.Store) { c.Access.StrictRecheck = true }
}

func withCompensation() envOption {
	return func(c *config.Config, _ *store.Store) { c.Storage.CompensateOrphans = true }
}

func failingInserts(table string) envOption {
	return func(_ *config.Config, st *store.Store) { *st = &failingStore{Store: *st, table: table} }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverMemory, Bucket: storage.DefaultBucket},
		Access:  config.AccessConfig{LinkageCandidates: 20, AccessLogLimit: 50},
	}
	mem := store.NewMemoryStore()
	var st store.Store = mem
	for _, opt := range opts {
		opt(cfg, &st)
	}

	env := &testEnv{
		mem:     mem,
		objects: storage.NewMemoryStorage("http://files.test"),
		metrics: metrics.NewCollector("test", prometheus.NewRegistry()),
	}
	env.svcs = New(st, env.objects, cfg, env.metrics, zap.NewNop())

	ctx := context.Background()
	for _, p := range []models.Profile{
		{ID: patient.ID, FullName: "Pat Patient", Role: models.RolePatient},
		{ID: stranger.ID, FullName: "Sam Stranger", Role: models.RolePatient},
		{ID: doctor.ID, FullName: "Dana Doctor", Role: models.RoleDoctor},
		{ID: org.ID, FullName: "City Hospital", Role: models.RoleHealthcareOrganization},
	} {
		require.NoError(t, mem.Insert(ctx, store.TableProfiles, &p))
	}
	return env
}

func (e *testEnv) seedLink(t *testing.T, providerID string, status models.LinkStatus) {
	t.Helper()
	require.NoError(t, e.mem.Insert(context.Background(), store.TableDoctorPatients, &models.DoctorPatientLink{
		ID:            "link-" + providerID,
		DoctorID:      providerID,
		PatientID:     patient.ID,
		Status:        status,
		AdmissionDate: "2024-01-01",
	}))
}

func (e *testEnv) seedRecords(t *testing.T, dates ...string) {
	t.Helper()
	for _, d := range dates {
		require.NoError(t, e.mem.Insert(context.Background(), store.TableMedicalRecords, &models.MedicalRecord{
			ID:         "rec-" + d,
			PatientID:  patient.ID,
			Title:      "Visit " + d,
			RecordDate: d,
			RecordType: models.RecordGeneral,
		}))
	}
}

func (e *testEnv) count(t *testing.T, table string, filters ...store.Filter) int64 {
	t.Helper()
	n, err := e.mem.Count(context.Background(), table, filters...)
	require.NoError(t, err)
	return n
}

func recordRequest() *models.CreateMedicalRecordRequest {
	return &models.CreateMedicalRecordRequest{
		PatientID:  patient.ID,
		Title:      "Follow-up",
		RecordDate: "2024-04-01",
		Diagnosis:  "Mild flu",
	}
}

func TestDoctorNeedsApprovedLinkToWriteRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	link, err := env.svcs.Links.Request(ctx, doctor, &models.CreateLinkRequest{PatientID: patient.ID})
	require.NoError(t, err)
	assert.Equal(t, models.LinkPending, link.Status)

	_, err = env.svcs.MedicalRecords.Create(ctx, doctor, recordRequest(), nil)
	require.ErrorIs(t, err, access.ErrPermissionDenied)
	assert.Zero(t, env.count(t, store.TableMedicalRecords))

	_, err = env.svcs.Links.Approve(ctx, stranger, link.ID)
	require.ErrorIs(t, err, access.ErrPermissionDenied)

	_, err = env.svcs.Links.Approve(ctx, patient, link.ID)
	require.NoError(t, err)

	rec, err := env.svcs.MedicalRecords.Create(ctx, doctor, recordRequest(), nil)
	require.NoError(t, err)
	require.NotNil(t, rec.DoctorID)
	assert.Equal(t, doctor.ID, *rec.DoctorID)
	require.NotNil(t, rec.Description)
	assert.Equal(t, "Diagnosis:\nMild flu", *rec.Description)

	_, err = env.svcs.Links.Approve(ctx, patient, link.ID)
	assert.ErrorIs(t, err, ErrInvalidLinkTransition)
}

func TestDischargeRevokesWriteAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedLink(t, doctor.ID, models.LinkActive)

	_, err := env.svcs.Links.Discharge(ctx, doctor, "link-"+doctor.ID)
	require.NoError(t, err)

	_, err = env.svcs.MedicalRecords.Create(ctx, doctor, recordRequest(), nil)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
}

func TestOrganizationReadFollowsGrant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedRecords(t, "2024-01-01")

	_, err := env.svcs.MedicalRecords.History(ctx, org, patient.ID)
	require.ErrorIs(t, err, access.ErrPermissionDenied)

	grant, err := env.svcs.Grants.Grant(ctx, patient, org.ID)
	require.NoError(t, err)

	recs, err := env.svcs.MedicalRecords.History(ctx, org, patient.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	// Read access alone does not allow authoring.
	_, err = env.svcs.MedicalRecords.Create(ctx, org, recordRequest(), nil)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)

	_, err = env.svcs.Grants.Revoke(ctx, org, grant.ID)
	require.ErrorIs(t, err, access.ErrPermissionDenied)

	revoked, err := env.svcs.Grants.Revoke(ctx, patient, grant.ID)
	require.NoError(t, err)
	assert.False(t, revoked.HasAccess)
	assert.NotNil(t, revoked.RevokedAt)
	assert.EqualValues(t, 1, env.count(t, store.TablePatientOrgAccess))

	_, err = env.svcs.MedicalRecords.History(ctx, org, patient.ID)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)

	regranted, err := env.svcs.Grants.Grant(ctx, patient, org.ID)
	require.NoError(t, err)
	assert.Equal(t, grant.ID, regranted.ID)
	assert.EqualValues(t, 1, env.count(t, store.TablePatientOrgAccess))
}

func TestGrantRequiresOrganizationAccount(t *testing.T) {
	env := newTestEnv(t)
	var verr *ValidationError
	_, err := env.svcs.Grants.Grant(context.Background(), patient, doctor.ID)
	assert.ErrorAs(t, err, &verr)
}

func TestHistoryLogsEachRecordForProviders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedLink(t, doctor.ID, models.LinkApproved)
	env.seedRecords(t, "2024-01-01", "2024-03-01", "2024-02-01")

	recs, err := env.svcs.MedicalRecords.History(ctx, doctor, patient.ID)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "2024-03-01", recs[0].RecordDate)
	assert.Equal(t, "2024-01-01", recs[2].RecordDate)
	assert.EqualValues(t, 3, env.count(t, store.TableAccessLogs, store.Eq("access_type", AccessViewHistory)))

	_, err = env.svcs.MedicalRecords.History(ctx, patient, "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, env.count(t, store.TableAccessLogs))
}

func TestHistorySurvivesAccessLogFailure(t *testing.T) {
	env := newTestEnv(t, failingInserts(store.TableAccessLogs))
	env.seedLink(t, doctor.ID, models.LinkApproved)
	env.seedRecords(t, "2024-01-01", "2024-02-01")

	recs, err := env.svcs.MedicalRecords.History(context.Background(), doctor, patient.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Zero(t, env.count(t, store.TableAccessLogs))
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.AccessLogFailures))
}

func bookAppointment(t *testing.T, env *testEnv, actor access.Actor, at time.Time) *models.Appointment {
	t.Helper()
	appt, err := env.svcs.Appointments.Create(context.Background(), actor, &models.CreateAppointmentRequest{
		PatientID:       patient.ID,
		AppointmentDate: at,
	})
	require.NoError(t, err)
	return appt
}

func TestAppointmentDetailsLinksNearestRecordOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedLink(t, doctor.ID, models.LinkApproved)
	env.seedRecords(t, "2024-01-01", "2024-02-01", "2024-03-01")

	appt := bookAppointment(t, env, doctor, time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, models.AppointmentBooked, appt.Status)

	details, err := env.svcs.Appointments.Details(ctx, doctor, appt.ID)
	require.NoError(t, err)
	require.NotNil(t, details.LinkedRecord)
	assert.Equal(t, "rec-2024-02-01", details.LinkedRecord.ID)
	assert.Equal(t, "Pat Patient", details.PatientName)
	assert.Equal(t, "Dana Doctor", details.CreatorName)

	logs, err := store.SelectAll[models.MedicalRecordAccessLog](ctx, env.mem, store.TableAccessLogs, store.Query{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, AccessViewLinkedRecord, logs[0].AccessType)
	assert.Equal(t, "rec-2024-02-01", logs[0].MedicalRecordID)
	require.NotNil(t, logs[0].Context)
	assert.Equal(t, "appointment:"+appt.ID, *logs[0].Context)

	// The patient's own view is not logged.
	_, err = env.svcs.Appointments.Details(ctx, patient, appt.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, env.count(t, store.TableAccessLogs))
}

func TestAppointmentDetailsWithoutRecords(t *testing.T) {
	env := newTestEnv(t)
	appt := bookAppointment(t, env, patient, time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC))

	details, err := env.svcs.Appointments.Details(context.Background(), patient, appt.ID)
	require.NoError(t, err)
	assert.Nil(t, details.LinkedRecord)

	_, err = env.svcs.Appointments.Details(context.Background(), stranger, appt.ID)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
}

func TestOrganizationHistoryIsLogged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedRecords(t, "2024-01-01", "2024-02-01")

	_, err := env.svcs.Grants.Grant(ctx, patient, org.ID)
	require.NoError(t, err)

	recs, err := env.svcs.MedicalRecords.History(ctx, org, patient.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	logs, err := store.SelectAll[models.MedicalRecordAccessLog](ctx, env.mem, store.TableAccessLogs, store.Query{})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	seen := map[string]bool{}
	for _, l := range logs {
		assert.Equal(t, AccessViewHistory, l.AccessType)
		assert.Equal(t, org.ID, l.AccessedBy)
		seen[l.MedicalRecordID] = true
	}
	assert.True(t, seen["rec-2024-01-01"])
	assert.True(t, seen["rec-2024-02-01"])
}

func TestOrganizationDetailsLogsLinkedRecordOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedRecords(t, "2024-01-01", "2024-03-01")
	appt := bookAppointment(t, env, patient, time.Date(2024, 2, 25, 9, 0, 0, 0, time.UTC))

	_, err := env.svcs.Grants.Grant(ctx, patient, org.ID)
	require.NoError(t, err)

	details, err := env.svcs.Appointments.Details(ctx, org, appt.ID)
	require.NoError(t, err)
	require.NotNil(t, details.LinkedRecord)
	assert.Equal(t, "rec-2024-03-01", details.LinkedRecord.ID)

	logs, err := store.SelectAll[models.MedicalRecordAccessLog](ctx, env.mem, store.TableAccessLogs, store.Query{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, AccessViewLinkedRecord, logs[0].AccessType)
	assert.Equal(t, org.ID, logs[0].AccessedBy)
	assert.Equal(t, "rec-2024-03-01", logs[0].MedicalRecordID)
}

func TestLinkedRecordOnlyConsidersRecentRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedLink(t, doctor.ID, models.LinkApproved)

	dates := []string{"2020-01-01"}
	for day := 12; day <= 31; day++ {
		dates = append(dates, time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
	}
	env.seedRecords(t, dates...)
	appt := bookAppointment(t, env, doctor, time.Date(2020, 1, 2, 9, 0, 0, 0, time.UTC))

	details, err := env.svcs.Appointments.Details(ctx, doctor, appt.ID)
	require.NoError(t, err)
	require.NotNil(t, details.LinkedRecord)
	assert.Equal(t, "rec-2024-01-12", details.LinkedRecord.ID)
	assert.EqualValues(t, 1, env.count(t, store.TableAccessLogs, store.Eq("access_type", AccessViewLinkedRecord)))

	recs, err := env.svcs.MedicalRecords.History(ctx, doctor, patient.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 21)
	assert.EqualValues(t, 21, env.count(t, store.TableAccessLogs, store.Eq("access_type", AccessViewHistory)))
}

func TestAppointmentTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appt := bookAppointment(t, env, doctor, time.Now())

	done, err := env.svcs.Appointments.Transition(ctx, doctor, appt.ID, models.AppointmentCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, done.Status)

	_, err = env.svcs.Appointments.Transition(ctx, doctor, appt.ID, models.AppointmentBooked)
	assert.ErrorIs(t, err, models.ErrInvalidStatusTransition)

	_, err = env.svcs.Appointments.Transition(ctx, doctor, appt.ID, models.AppointmentStatus("lost"))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = env.svcs.Appointments.Transition(ctx, doctor, "missing", models.AppointmentCancelled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitionSkipsRecheckByDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedLink(t, doctor.ID, models.LinkActive)
	appt := bookAppointment(t, env, doctor, time.Now())

	_, err := env.svcs.Links.Discharge(ctx, doctor, "link-"+doctor.ID)
	require.NoError(t, err)

	_, err = env.svcs.Appointments.Transition(ctx, stranger, appt.ID, models.AppointmentCancelled)
	require.ErrorIs(t, err, access.ErrPermissionDenied)

	_, err = env.svcs.Appointments.Transition(ctx, org, appt.ID, models.AppointmentCancelled)
	require.ErrorIs(t, err, access.ErrPermissionDenied)

	// The creator keeps control after discharge.
	done, err := env.svcs.Appointments.Transition(ctx, doctor, appt.ID, models.AppointmentCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, done.Status)

	stored, err := env.svcs.Appointments.Details(ctx, patient, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, stored.Status)
}

func TestTransitionByGrantedOrganization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	appt := bookAppointment(t, env, patient, time.Now())

	_, err := env.svcs.Grants.Grant(ctx, patient, org.ID)
	require.NoError(t, err)

	cancelled, err := env.svcs.Appointments.Transition(ctx, org, appt.ID, models.AppointmentCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCancelled, cancelled.Status)
}

func TestTransitionStrictRecheck(t *testing.T) {
	env := newTestEnv(t, withStrictRecheck())
	ctx := context.Background()
	appt := bookAppointment(t, env, patient, time.Now())

	_, err := env.svcs.Appointments.Transition(ctx, stranger, appt.ID, models.AppointmentCancelled)
	require.ErrorIs(t, err, access.ErrPermissionDenied)

	_, err = env.svcs.Appointments.Transition(ctx, org, appt.ID, models.AppointmentCancelled)
	require.ErrorIs(t, err, access.ErrPermissionDenied)

	// A read grant without an approved link is not enough once rechecked.
	_, err = env.svcs.Grants.Grant(ctx, patient, org.ID)
	require.NoError(t, err)
	_, err = env.svcs.Appointments.Transition(ctx, org, appt.ID, models.AppointmentCancelled)
	require.ErrorIs(t, err, access.ErrPermissionDenied)

	_, err = env.svcs.Appointments.Transition(ctx, patient, appt.ID, models.AppointmentCancelled)
	assert.NoError(t, err)
}

func TestAppointmentListScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bookAppointment(t, env, patient, time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC))
	bookAppointment(t, env, doctor, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))

	mine, err := env.svcs.Appointments.List(ctx, patient, "")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].AppointmentDate.Before(mine[1].AppointmentDate))

	booked, err := env.svcs.Appointments.List(ctx, doctor, patient.ID)
	require.NoError(t, err)
	assert.Len(t, booked, 1)

	_, err = env.svcs.Appointments.List(ctx, stranger, patient.ID)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)

	none, err := env.svcs.Appointments.List(ctx, org, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateRecordLeavesOrphanByDefault(t *testing.T) {
	env := newTestEnv(t, failingInserts(store.TableMedicalRecords))

	_, err := env.svcs.MedicalRecords.Create(context.Background(), patient, recordRequest(), &Attachment{
		Name:        "scan.pdf",
		ContentType: "application/pdf",
		Body:        strings.NewReader("%PDF"),
	})
	require.Error(t, err)
	assert.Equal(t, 1, env.objects.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.OrphanedUploads))
}

func TestCreateRecordCompensatesOrphan(t *testing.T) {
	env := newTestEnv(t, failingInserts(store.TableMedicalRecords), withCompensation())

	_, err := env.svcs.MedicalRecords.Create(context.Background(), patient, recordRequest(), &Attachment{
		Name:        "scan.pdf",
		ContentType: "application/pdf",
		Body:        strings.NewReader("%PDF"),
	})
	require.Error(t, err)
	assert.Zero(t, env.objects.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CompensatedUploads))
}

func TestCreateRecordStoresAttachment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec, err := env.svcs.MedicalRecords.Create(ctx, patient, recordRequest(), &Attachment{
		Name:        "scan.pdf",
		ContentType: "application/pdf",
		Body:        strings.NewReader("%PDF"),
	})
	require.NoError(t, err)
	require.NotNil(t, rec.FileURL)
	assert.True(t, strings.HasPrefix(*rec.FileURL, patient.ID+"/"))

	url, err := env.svcs.MedicalRecords.AttachmentURL(ctx, patient, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, env.objects.PublicURL(*rec.FileURL), url)

	_, err = env.svcs.MedicalRecords.AttachmentURL(ctx, doctor, rec.ID)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
}

func TestCreateRecordValidation(t *testing.T) {
	env := newTestEnv(t)
	req := recordRequest()
	req.Title = " "
	req.RecordDate = "01/04/2024"

	_, err := env.svcs.MedicalRecords.Create(context.Background(), patient, req, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestAccessLogListing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedLink(t, doctor.ID, models.LinkApproved)
	env.seedRecords(t, "2024-01-01")

	_, err := env.svcs.MedicalRecords.History(ctx, doctor, patient.ID)
	require.NoError(t, err)

	logs, err := env.svcs.AccessLogs.ListForPatient(ctx, patient)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Dana Doctor", logs[0].AccessorName)
	assert.Equal(t, "Visit 2024-01-01", logs[0].RecordTitle)

	_, err = env.svcs.AccessLogs.ListForPatient(ctx, doctor)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
}

func TestProfileRoleIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role := models.RoleDoctor
	_, err := env.svcs.Profiles.Update(ctx, patient, &models.UpdateProfileRequest{FullName: "Pat", Role: &role})
	assert.ErrorIs(t, err, ErrRoleImmutable)

	_, err = env.svcs.Profiles.Create(ctx, patient.ID, &models.CreateProfileRequest{FullName: "Pat", Role: models.RolePatient})
	assert.ErrorIs(t, err, ErrProfileExists)

	p, err := env.svcs.Profiles.Create(ctx, "new-user", &models.CreateProfileRequest{FullName: " New ", Role: models.RoleDoctor})
	require.NoError(t, err)
	assert.Equal(t, "New", p.FullName)
}

func TestPatientProfileVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	blood := "O+"
	contact := "Alex"
	_, err := env.svcs.PatientProfiles.Save(ctx, patient, &models.SavePatientHealthProfileRequest{
		Profile:   models.PatientProfile{BloodGroup: &blood},
		Emergency: models.PatientEmergencyDetails{EmergencyContactName: &contact},
	})
	require.NoError(t, err)

	_, err = env.svcs.PatientProfiles.Save(ctx, doctor, &models.SavePatientHealthProfileRequest{})
	require.ErrorIs(t, err, access.ErrPermissionDenied)

	got, err := env.svcs.PatientProfiles.Get(ctx, doctor, patient.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Profile)
	require.NotNil(t, got.Emergency)
	assert.Equal(t, "Alex", *got.Emergency.EmergencyContactName)

	env.seedLink(t, doctor.ID, models.LinkApproved)
	got, err = env.svcs.PatientProfiles.Get(ctx, doctor, patient.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "O+", *got.Profile.BloodGroup)
}

func TestDoctorDirectory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	specialization := "Cardiology"
	_, err := env.svcs.Doctors.UpdateProfile(ctx, doctor, &models.UpdateDoctorProfileRequest{Specialization: &specialization})
	require.NoError(t, err)
	_, err = env.svcs.Doctors.AddAcademicRecord(ctx, doctor, &models.CreateAcademicRecordRequest{
		DegreeName: "MD", Institution: "State University", YearObtained: 2010,
	})
	require.NoError(t, err)

	_, err = env.svcs.Doctors.Profile(ctx, patient)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)

	entries, err := env.svcs.Doctors.Directory(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Dana Doctor", entries[0].FullName)
	assert.Equal(t, "Cardiology", *entries[0].Specialization)
	require.Len(t, entries[0].AcademicRecords, 1)
	assert.Equal(t, "MD", entries[0].AcademicRecords[0].DegreeName)
}

func TestDirectoryPatientsScopedToCreator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec, err := env.svcs.Directory.Create(ctx, doctor, &models.PatientRecordRequest{FullName: "Walk In", DateOfBirth: "1990-01-01"})
	require.NoError(t, err)

	_, err = env.svcs.Directory.Update(ctx, org, rec.ID, &models.PatientRecordRequest{FullName: "X", DateOfBirth: "1990-01-01"})
	assert.Error(t, err)

	_, err = env.svcs.Directory.List(ctx, patient)
	assert.ErrorIs(t, err, access.ErrPermissionDenied)

	list, err := env.svcs.Directory.List(ctx, doctor)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, env.svcs.Directory.Delete(ctx, doctor, rec.ID))
	assert.Zero(t, env.count(t, store.TablePatients))
}
