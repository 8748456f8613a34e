package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/middleware"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/services"
)

type PatientProfileHandler struct {
	profiles *services.PatientProfileService
	log      *zap.Logger
}

func NewPatientProfileHandler(profiles *services.PatientProfileService, log *zap.Logger) *PatientProfileHandler {
	return &PatientProfileHandler{profiles: profiles, log: log}
}

func (h *PatientProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), middleware.Actor(c), c.Query("patient_id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, profile)
}

func (h *PatientProfileHandler) SaveProfile(c *gin.Context) {
	var req models.SavePatientHealthProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.profiles.Save(c.Request.Context(), middleware.Actor(c), &req)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, profile, "Patient profile saved")
}
