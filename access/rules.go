// Package access decides who may read or write which patient data.
//
// The evaluator is pure: callers load the relationship rows relevant to the
// (actor, patient) pair and pass them in. Nothing here talks to the store.
package access

import (
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
)

type Op string

const (
	OpRead  Op = "read"
	OpWrite Op = "write"
)

type Resource string

const (
	ResourceMedicalRecord    Resource = "medical_record"
	ResourceAppointment      Resource = "appointment"
	ResourcePatientProfile   Resource = "patient_profile"
	ResourceEmergencyDetails Resource = "emergency_details"
	ResourceDirectoryPatient Resource = "directory_patient"
	ResourceLink             Resource = "doctor_patient_link"
	ResourceGrant            Resource = "organization_access"
)

// Relationship carries the rows that gate access between an actor and a
// patient. Owner is the created_by of owner-scoped rows (directory patients,
// appointments).
type Relationship struct {
	Link  *models.DoctorPatientLink
	Grant *models.PatientOrganizationAccess
	Owner string
}

const (
	reasonUnauthenticated = "unauthenticated actor"
	reasonNotOwner        = "not the owner of this row"
	reasonNotSelf         = "patients may only access their own data"
	reasonNoLink          = "no active or approved doctor-patient link"
	reasonNoGrant         = "no organization access grant"
	reasonRole            = "role may not perform this operation"
)

func CanRead(actor Actor, patientID string, res Resource, rel Relationship) bool {
	ok, _ := decide(OpRead, actor, patientID, res, rel)
	return ok
}

func CanWrite(actor Actor, patientID string, res Resource, rel Relationship) bool {
	ok, _ := decide(OpWrite, actor, patientID, res, rel)
	return ok
}

// Authorize returns a *PermissionError wrapping ErrPermissionDenied when the
// operation is not allowed.
func Authorize(op Op, actor Actor, patientID string, res Resource, rel Relationship) error {
	if ok, reason := decide(op, actor, patientID, res, rel); !ok {
		return &PermissionError{Op: op, Resource: res, Reason: reason}
	}
	return nil
}

func decide(op Op, actor Actor, patientID string, res Resource, rel Relationship) (bool, string) {
	if actor.IsZero() {
		return false, reasonUnauthenticated
	}

	// Emergency details stay readable to every signed-in account.
	if res == ResourceEmergencyDetails && op == OpRead {
		return true, ""
	}

	if res == ResourceDirectoryPatient {
		if actor.Role == models.RolePatient {
			return false, reasonRole
		}
		return allow(rel.Owner != "" && rel.Owner == actor.ID, reasonNotOwner)
	}

	switch actor.Role {
	case models.RolePatient:
		return decidePatient(op, actor, patientID, res, rel)
	case models.RoleDoctor:
		return decideDoctor(op, actor, patientID, res, rel)
	case models.RoleHealthcareOrganization:
		return decideOrganization(op, actor, patientID, res, rel)
	}
	return false, reasonRole
}

func decidePatient(op Op, actor Actor, patientID string, res Resource, rel Relationship) (bool, string) {
	if actor.ID != patientID {
		return false, reasonNotSelf
	}
	switch res {
	case ResourceMedicalRecord, ResourceAppointment, ResourcePatientProfile,
		ResourceEmergencyDetails, ResourceGrant:
		return true, ""
	case ResourceLink:
		// Patients see their links and approve them; they never create them.
		return allow(rel.Link != nil && rel.Link.PatientID == actor.ID, reasonNoLink)
	}
	return false, reasonRole
}

func decideDoctor(op Op, actor Actor, patientID string, res Resource, rel Relationship) (bool, string) {
	switch res {
	case ResourceLink:
		return allow(ownsLink(actor, patientID, rel.Link), reasonNoLink)
	case ResourceMedicalRecord:
		return allow(linkGrantsWrite(actor, patientID, rel.Link), reasonNoLink)
	case ResourcePatientProfile:
		if op == OpWrite {
			return false, reasonRole
		}
		return allow(linkGrantsWrite(actor, patientID, rel.Link), reasonNoLink)
	case ResourceAppointment:
		// Appointment creation is not gated on the link.
		if op == OpWrite {
			return true, ""
		}
		if rel.Owner == actor.ID {
			return true, ""
		}
		return allow(linkGrantsWrite(actor, patientID, rel.Link), reasonNoLink)
	}
	return false, reasonRole
}

func decideOrganization(op Op, actor Actor, patientID string, res Resource, rel Relationship) (bool, string) {
	switch res {
	case ResourceLink:
		return allow(ownsLink(actor, patientID, rel.Link), reasonNoLink)
	case ResourceGrant:
		if op == OpWrite {
			return false, reasonRole
		}
		return allow(rel.Grant != nil && rel.Grant.OrganizationID == actor.ID && rel.Grant.PatientID == patientID, reasonNoGrant)
	case ResourceMedicalRecord, ResourceAppointment:
		if op == OpWrite {
			return allow(linkGrantsWrite(actor, patientID, rel.Link), reasonNoLink)
		}
		return allow(grantOpen(actor, patientID, rel.Grant), reasonNoGrant)
	case ResourcePatientProfile:
		if op == OpWrite {
			return false, reasonRole
		}
		return allow(grantOpen(actor, patientID, rel.Grant), reasonNoGrant)
	}
	return false, reasonRole
}

func ownsLink(actor Actor, patientID string, link *models.DoctorPatientLink) bool {
	return link != nil && link.DoctorID == actor.ID && link.PatientID == patientID
}

func linkGrantsWrite(actor Actor, patientID string, link *models.DoctorPatientLink) bool {
	return ownsLink(actor, patientID, link) && link.Status.GrantsWrite()
}

func grantOpen(actor Actor, patientID string, grant *models.PatientOrganizationAccess) bool {
	return grant != nil &&
		grant.OrganizationID == actor.ID &&
		grant.PatientID == patientID &&
		grant.HasAccess
}

func allow(ok bool, reason string) (bool, string) {
	if ok {
		return true, ""
	}
	return false, reason
}
