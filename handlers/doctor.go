package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/middleware"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/services"
)

type DoctorHandler struct {
	doctors       *services.DoctorService
	organizations *services.OrganizationService
	log           *zap.Logger
}

func NewDoctorHandler(doctors *services.DoctorService, organizations *services.OrganizationService, log *zap.Logger) *DoctorHandler {
	return &DoctorHandler{
		doctors:       doctors,
		organizations: organizations,
		log:           log,
	}
}

func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	doctors, err := h.doctors.Directory(c.Request.Context())
	if err != nil {
		h.log.Error("failed to fetch doctors", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch doctors")
		return
	}
	respond(c, http.StatusOK, doctors)
}

func (h *DoctorHandler) GetOrganizations(c *gin.Context) {
	orgs, err := h.organizations.List(c.Request.Context())
	if err != nil {
		h.log.Error("failed to fetch organizations", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to fetch organizations")
		return
	}
	respond(c, http.StatusOK, orgs)
}

// GetOrganizationAccounts lists the organization accounts records can be
// shared with.
func (h *DoctorHandler) GetOrganizationAccounts(c *gin.Context) {
	accounts, err := h.organizations.Accounts(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, accounts)
}

func (h *DoctorHandler) GetProfile(c *gin.Context) {
	profile, err := h.doctors.Profile(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, profile)
}

func (h *DoctorHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateDoctorProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.doctors.UpdateProfile(c.Request.Context(), middleware.Actor(c), &req)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, profile, "Doctor profile updated")
}

func (h *DoctorHandler) GetAcademicRecords(c *gin.Context) {
	recs, err := h.doctors.AcademicRecords(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, recs)
}

func (h *DoctorHandler) AddAcademicRecord(c *gin.Context) {
	var req models.CreateAcademicRecordRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.doctors.AddAcademicRecord(c.Request.Context(), middleware.Actor(c), &req)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusCreated, rec, "Academic record added")
}
