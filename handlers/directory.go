package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/middleware"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/services"
)

// DirectoryHandler serves the provider-private patient directory.
type DirectoryHandler struct {
	directory *services.DirectoryService
	log       *zap.Logger
}

func NewDirectoryHandler(directory *services.DirectoryService, log *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, log: log}
}

func (h *DirectoryHandler) ListPatients(c *gin.Context) {
	patients, err := h.directory.List(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, patients)
}

func (h *DirectoryHandler) CreatePatient(c *gin.Context) {
	var req models.PatientRecordRequest
	if !bindJSON(c, &req) {
		return
	}
	patient, err := h.directory.Create(c.Request.Context(), middleware.Actor(c), &req)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusCreated, patient, "Patient created")
}

func (h *DirectoryHandler) UpdatePatient(c *gin.Context) {
	var req models.PatientRecordRequest
	if !bindJSON(c, &req) {
		return
	}
	patient, err := h.directory.Update(c.Request.Context(), middleware.Actor(c), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, patient, "Patient updated")
}

func (h *DirectoryHandler) DeletePatient(c *gin.Context) {
	if err := h.directory.Delete(c.Request.Context(), middleware.Actor(c), c.Param("id")); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, http.StatusOK, nil, "Patient deleted")
}
