package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Byte-Craftsman-Alpha/Paranox/models"
)

const (
	patientID = "patient-1"
	doctorID  = "doctor-1"
	orgID     = "org-1"
)

var (
	patient = Actor{ID: patientID, Role: models.RolePatient}
	doctor  = Actor{ID: doctorID, Role: models.RoleDoctor}
	org     = Actor{ID: orgID, Role: models.RoleHealthcareOrganization}
)

func link(providerID string, status models.LinkStatus) *models.DoctorPatientLink {
	return &models.DoctorPatientLink{ID: "link-1", DoctorID: providerID, PatientID: patientID, Status: status}
}

func grant(hasAccess bool) *models.PatientOrganizationAccess {
	g := &models.PatientOrganizationAccess{ID: "grant-1", PatientID: patientID, OrganizationID: orgID, HasAccess: hasAccess}
	if !hasAccess {
		now := time.Now()
		g.RevokedAt = &now
	}
	return g
}

func TestPatientOwnsOwnData(t *testing.T) {
	for _, res := range []Resource{ResourceMedicalRecord, ResourceAppointment, ResourcePatientProfile, ResourceEmergencyDetails, ResourceGrant} {
		assert.True(t, CanRead(patient, patientID, res, Relationship{}), res)
		assert.True(t, CanWrite(patient, patientID, res, Relationship{}), res)
		assert.False(t, CanWrite(patient, "someone-else", res, Relationship{}), res)
	}
	assert.False(t, CanRead(patient, "someone-else", ResourceMedicalRecord, Relationship{}))
}

func TestDoctorRecordWriteRequiresWritableLink(t *testing.T) {
	tests := []struct {
		name string
		rel  Relationship
		want bool
	}{
		{"no link", Relationship{}, false},
		{"pending", Relationship{Link: link(doctorID, models.LinkPending)}, false},
		{"discharged", Relationship{Link: link(doctorID, models.LinkDischarged)}, false},
		{"active", Relationship{Link: link(doctorID, models.LinkActive)}, true},
		{"approved", Relationship{Link: link(doctorID, models.LinkApproved)}, true},
		{"another doctor's link", Relationship{Link: link("doctor-2", models.LinkActive)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanWrite(doctor, patientID, ResourceMedicalRecord, tt.rel))
		})
	}
}

func TestDoctorMayAlwaysRequestLinkAndBookAppointment(t *testing.T) {
	pending := link(doctorID, models.LinkPending)
	assert.True(t, CanWrite(doctor, patientID, ResourceLink, Relationship{Link: pending}))
	assert.True(t, CanRead(doctor, patientID, ResourceLink, Relationship{Link: pending}))
	assert.True(t, CanWrite(doctor, patientID, ResourceAppointment, Relationship{}))
	assert.False(t, CanRead(doctor, patientID, ResourceMedicalRecord, Relationship{Link: pending}))
}

func TestOrganizationReadRequiresOpenGrant(t *testing.T) {
	for _, res := range []Resource{ResourceMedicalRecord, ResourceAppointment} {
		assert.False(t, CanRead(org, patientID, res, Relationship{}), "never granted")
		assert.False(t, CanRead(org, patientID, res, Relationship{Grant: grant(false)}), "revoked")
		assert.True(t, CanRead(org, patientID, res, Relationship{Grant: grant(true)}))
	}
}

func TestOrganizationWriteFollowsLinkRule(t *testing.T) {
	rel := Relationship{Grant: grant(true)}
	assert.False(t, CanWrite(org, patientID, ResourceMedicalRecord, rel))
	assert.False(t, CanWrite(org, patientID, ResourceAppointment, rel))

	rel.Link = link(orgID, models.LinkApproved)
	assert.True(t, CanWrite(org, patientID, ResourceMedicalRecord, rel))
	assert.True(t, CanWrite(org, patientID, ResourceAppointment, rel))
}

func TestDirectoryPatientScopedToCreator(t *testing.T) {
	assert.True(t, CanRead(doctor, "dir-1", ResourceDirectoryPatient, Relationship{Owner: doctorID}))
	assert.True(t, CanWrite(org, "dir-1", ResourceDirectoryPatient, Relationship{Owner: orgID}))
	assert.False(t, CanWrite(doctor, "dir-1", ResourceDirectoryPatient, Relationship{Owner: orgID}))
	assert.False(t, CanRead(patient, "dir-1", ResourceDirectoryPatient, Relationship{Owner: patientID}))
}

func TestEmergencyDetailsReadableByAnyAccount(t *testing.T) {
	assert.True(t, CanRead(doctor, patientID, ResourceEmergencyDetails, Relationship{}))
	assert.True(t, CanRead(org, patientID, ResourceEmergencyDetails, Relationship{}))
	assert.False(t, CanWrite(doctor, patientID, ResourceEmergencyDetails, Relationship{}))
	assert.False(t, CanRead(Actor{}, patientID, ResourceEmergencyDetails, Relationship{}))
}

func TestAuthorizeReturnsPermissionError(t *testing.T) {
	err := Authorize(OpWrite, doctor, patientID, ResourceMedicalRecord, Relationship{Link: link(doctorID, models.LinkPending)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	var permErr *PermissionError
	require.True(t, errors.As(err, &permErr))
	assert.Equal(t, OpWrite, permErr.Op)
	assert.Equal(t, ResourceMedicalRecord, permErr.Resource)
	assert.Equal(t, reasonNoLink, permErr.Reason)

	assert.NoError(t, Authorize(OpRead, patient, patientID, ResourceMedicalRecord, Relationship{}))
}

func TestActorContext(t *testing.T) {
	_, ok := ActorFrom(context.Background())
	assert.False(t, ok)

	ctx := WithActor(context.Background(), doctor)
	got, ok := ActorFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, doctor, got)

	_, ok = ActorFrom(WithActor(context.Background(), Actor{ID: "x", Role: "admin"}))
	assert.False(t, ok)
}
